package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"welshStreet/internal/config"
	"welshStreet/internal/journal"
	"welshStreet/internal/model"
	"welshStreet/internal/stats"
	"welshStreet/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Decode the event journal",
		RunE:  runHistory,
	}
	cmd.Flags().StringSlice("event", nil, "event names to keep (Bootstrap, Swap, Liquidity, FeeUpdated, Transfer)")
	cmd.Flags().String("since", "", "skip events before this timestamp (unix seconds or RFC3339)")
	cmd.Flags().Uint64("from-seq", 0, "skip events below this sequence")
	cmd.Flags().String("out", "", "write typed events JSONL here instead of stdout")
	cmd.Flags().String("errors", "", "write decode errors JSONL here")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	fromSeq, _ := cmd.Flags().GetUint64("from-seq")
	out, _ := cmd.Flags().GetString("out")
	errorsPath, _ := cmd.Flags().GetString("errors")

	events, failures, err := decodeJournal(ctx, s, s.cfg.Events, fromSeq)
	if err != nil {
		return err
	}

	if errorsPath != "" {
		if err := storage.NewJsonlStorage(errorsPath).PutDecodeErrors(ctx, failures); err != nil {
			return err
		}
	}
	if out != "" {
		if err := storage.NewJsonlStorage(out).PutTypedEvents(ctx, events); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, event := range events {
			if err := enc.Encode(event); err != nil {
				return err
			}
		}
	}

	s.logger.Info("history complete",
		zap.String("journal", s.journal.Path()),
		zap.Int("decoded", len(events)),
		zap.Int("failed", len(failures)),
	)
	return nil
}

// decodeJournal reads the journal lines passing the event, since and
// sequence filters and decodes them. Undecodable lines are returned as
// DecodeErrors rather than failing the read.
func decodeJournal(ctx context.Context, s *session, events []string, fromSeq uint64) ([]model.TypedEvent, []model.DecodeError, error) {
	decoder, err := journal.NewDecoder(s.deployment.Meta())
	if err != nil {
		return nil, nil, err
	}
	filter, err := journal.NewFilter(decoder, events)
	if err != nil {
		return nil, nil, err
	}
	filter.MinSequence = fromSeq
	if filter.Since, err = config.ParseTimestamp(s.cfg.Since); err != nil {
		return nil, nil, fmt.Errorf("parse since: %w", err)
	}

	records, err := s.journal.ReadLogs(ctx, filter.Match)
	if err != nil {
		return nil, nil, err
	}

	typed := make([]model.TypedEvent, 0, len(records))
	var failures []model.DecodeError
	for _, record := range records {
		event, err := decoder.Decode(record)
		if err != nil {
			failures = append(failures, model.DecodeError{
				Sequence: record.Sequence,
				TxHash:   record.TxHash,
				LogIndex: record.LogIndex,
				Address:  record.Address,
				Topic0:   record.Topic0(),
				Error:    err.Error(),
			})
			continue
		}
		typed = append(typed, *event)
	}
	return typed, failures, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate swaps into fixed time windows",
		RunE:  runStats,
	}
	cmd.Flags().Duration("window", 0, "aggregation window (e.g. 1m, 5m, 1h)")
	cmd.Flags().String("since", "", "skip swaps before this timestamp (unix seconds or RFC3339)")
	cmd.Flags().String("in", "", "typed events JSONL written by history --out; defaults to decoding the journal")
	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	windowSeconds := uint64(s.cfg.Window.Seconds())
	if windowSeconds == 0 {
		return fmt.Errorf("window must be at least 1s")
	}
	since, err := config.ParseTimestamp(s.cfg.Since)
	if err != nil {
		return fmt.Errorf("parse since: %w", err)
	}

	var events []model.TypedEvent
	if in, _ := cmd.Flags().GetString("in"); in != "" {
		records, err := storage.NewJsonlStorage(in).ReadTypedEvents(ctx)
		if err != nil {
			return err
		}
		if events, err = stats.EventsFromRecords(records); err != nil {
			return err
		}
	} else {
		var failures []model.DecodeError
		events, failures, err = decodeJournal(ctx, s, []string{"Swap"}, 0)
		if err != nil {
			return err
		}
		if len(failures) > 0 {
			s.logger.Warn("skipped undecodable journal lines", zap.Int("count", len(failures)))
		}
	}

	var sink stats.MetricsSink
	if s.pg != nil {
		sink = s.pg
	}
	agg := stats.NewAggregator(stats.Config{
		WindowSeconds: windowSeconds,
		Since:         since,
		Exchange:      s.ex().Address().Hex(),
		Meta:          s.deployment.Meta(),
	}, sink, s.logger)

	metrics, err := agg.Run(ctx, events)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), metrics)
}
