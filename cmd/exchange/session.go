package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"welshStreet/internal/config"
	"welshStreet/internal/deployment"
	"welshStreet/internal/exchange"
	"welshStreet/internal/journal"
	"welshStreet/internal/model"
	"welshStreet/internal/storage"
	"welshStreet/internal/storage/postgres"
)

// session is one CLI invocation against the persisted deployment.
type session struct {
	cfg        config.Config
	logger     *zap.Logger
	deployment *deployment.Deployment
	encoder    *journal.Encoder
	journal    *storage.JsonlStorage
	sinks      []storage.Storage
	snapshots  storage.SnapshotStore
	retry      storage.RetryPolicy
	pg         *postgres.Store
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		logger:  logger,
		journal: storage.NewJsonlStorage(cfg.Journal),
		retry: storage.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
			MaxBackoff: 30 * time.Second,
			Logger:     logger,
		},
	}
	if err := s.open(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) open(ctx context.Context) error {
	owner, err := s.cfg.OwnerAddress()
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	var db []storage.Storage
	if s.cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, s.cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		s.pg = store
		if err := s.retry.Do(ctx, "migrate", store.Migrate); err != nil {
			return err
		}
		db = append(db, store)
		s.snapshots = &storage.DBSnapshotStore{Store: store, Name: s.cfg.StateName}
	} else {
		s.snapshots = &storage.FileSnapshotStore{Path: s.cfg.StateFile}
	}
	s.sinks = journalSinks(s.journal, db...)

	d, err := deployment.New(ctx, deployment.Config{
		Owner:       owner,
		FeeBps:      s.cfg.FeeBps,
		TaxShareBps: s.cfg.TaxShareBps,
		WelshSupply: s.cfg.WelshSupply,
		Decimals:    s.cfg.Decimals,
	}, s.logger)
	if err != nil {
		return err
	}
	s.deployment = d

	var (
		snap  model.DeploymentSnapshot
		found bool
	)
	err = s.retry.Do(ctx, "load snapshot", func(ctx context.Context) error {
		var err error
		snap, found, err = s.snapshots.Load(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var lastSeq uint64
	if found {
		if err := d.Restore(ctx, snap); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
		lastSeq = snap.Sequence
	}
	journalSeq, err := s.journal.LastSequence(ctx)
	if err != nil {
		return err
	}
	if journalSeq > lastSeq {
		s.logger.Warn("journal ahead of state",
			zap.Uint64("journal_sequence", journalSeq),
			zap.Uint64("state_sequence", lastSeq),
		)
		lastSeq = journalSeq
	}

	s.encoder, err = journal.NewEncoder(d.Exchange.Address(), lastSeq)
	if err != nil {
		return err
	}

	s.logger.Debug("session open",
		zap.String("owner", owner.Hex()),
		zap.String("exchange", d.Exchange.Address().Hex()),
		zap.Bool("restored", found),
		zap.Uint64("sequence", lastSeq),
	)
	return nil
}

func (s *session) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
	_ = s.logger.Sync()
}

func (s *session) ex() *exchange.Exchange {
	return s.deployment.Exchange
}

// journalSinks orders the journal writers. The local JSONL journal goes last
// so a failed database append leaves no local lines behind.
func journalSinks(jsonl *storage.JsonlStorage, db ...storage.Storage) []storage.Storage {
	sinks := make([]storage.Storage, 0, len(db)+1)
	sinks = append(sinks, db...)
	return append(sinks, jsonl)
}

// commit persists the deployment under the last assigned sequence and then
// journals records. The snapshot is the source of truth; a journal append
// that fails after it only leaves a gap in the journal.
func (s *session) commit(ctx context.Context, records ...model.LogRecord) error {
	snap := s.deployment.Snapshot(s.encoder.Sequence())
	err := s.retry.Do(ctx, "save snapshot", func(ctx context.Context) error {
		return s.snapshots.Save(ctx, snap)
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	for _, sink := range s.sinks {
		sink := sink
		err := s.retry.Do(ctx, "append journal", func(ctx context.Context) error {
			return sink.PutLogBatch(ctx, records)
		})
		if err != nil {
			return fmt.Errorf("append journal: %w", err)
		}
	}
	return nil
}

// rejected logs an operation the engine refused and returns it with the op
// name attached. The error text carries the numeric code.
func (s *session) rejected(op string, err error) error {
	s.logger.Warn("operation rejected",
		zap.String("op", op),
		zap.Uint32("code", exchange.Code(err)),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", op, err)
}

// caller resolves the acting principal. The exchange custody principal is
// never a valid caller.
func (s *session) caller() (common.Address, error) {
	caller, err := s.cfg.CallerAddress()
	if err != nil {
		return common.Address{}, err
	}
	if caller == s.ex().Address() {
		return common.Address{}, deployment.ErrCustodyPrincipal
	}
	return caller, nil
}
