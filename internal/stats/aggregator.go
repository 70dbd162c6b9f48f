package stats

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"go.uber.org/zap"

	"welshStreet/internal/model"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	// Since skips events with a timestamp before it (unix seconds).
	Since    uint64
	Exchange string
	Meta     model.ExchangeMeta
}

// MetricsSink receives completed window metrics.
type MetricsSink interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.WindowMetrics) error
}

// Aggregator buckets decoded swap events into fixed windows.
type Aggregator struct {
	cfg    Config
	sink   MetricsSink
	logger *zap.Logger
}

func NewAggregator(cfg Config, sink MetricsSink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{cfg: cfg, sink: sink, logger: logger}
}

// Run aggregates events and returns one metrics row per non-empty window,
// ordered by window start. Non-swap events are ignored. When a sink is set
// the rows are also written to it.
func (a *Aggregator) Run(ctx context.Context, events []model.TypedEvent) ([]model.WindowMetrics, error) {
	if a.cfg.WindowSeconds == 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}

	accumulators := make(map[uint64]*Accumulator)
	var total, swaps, skipped, failed int

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		total++
		swap, ok := event.Decoded.(model.SwapEventData)
		if !ok {
			continue
		}
		if event.Timestamp < a.cfg.Since {
			skipped++
			continue
		}

		start := windowStart(event.Timestamp, a.cfg.WindowSeconds)
		acc := accumulators[start]
		if acc == nil {
			acc = NewAccumulator(start, start+a.cfg.WindowSeconds)
			accumulators[start] = acc
		}
		if err := acc.AddSwap(event.Sequence, swap); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.Uint64("sequence", event.Sequence))
			continue
		}
		swaps++
	}

	metrics := make([]model.WindowMetrics, 0, len(accumulators))
	for _, acc := range accumulators {
		metrics = append(metrics, a.flush(acc))
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].WindowStart.Before(metrics[j].WindowStart)
	})

	if a.sink != nil && len(metrics) > 0 {
		if err := a.sink.UpsertWindowMetrics(ctx, metrics); err != nil {
			return nil, fmt.Errorf("write window metrics: %w", err)
		}
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("swaps", swaps),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("windows", len(metrics)),
	)
	return metrics, nil
}

func (a *Aggregator) flush(acc *Accumulator) model.WindowMetrics {
	decA := a.cfg.Meta.TokenA.Decimals
	decB := a.cfg.Meta.TokenB.Decimals

	var closePrice *string
	if price := SpotPrice(acc.LastReserveA, acc.LastReserveB, decA, decB); price != "" {
		closePrice = &price
	}

	return model.WindowMetrics{
		Exchange:       a.cfg.Exchange,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:      acc.SwapCount,
		VolumeA:        FormatTokenAmount(acc.VolumeA, decA),
		VolumeB:        FormatTokenAmount(acc.VolumeB, decB),
		FeeA:           FormatTokenAmount(acc.FeeA, decA),
		FeeB:           FormatTokenAmount(acc.FeeB, decB),
		TaxA:           FormatTokenAmount(acc.TaxA, decA),
		TaxB:           FormatTokenAmount(acc.TaxB, decB),
		RevenueA:       FormatTokenAmount(acc.RevenueA, decA),
		RevenueB:       FormatTokenAmount(acc.RevenueB, decB),
		ClosePrice:     closePrice,
		FeeRateA:       computeRate(acc.FeeA, inputVolume(acc, model.DirectionAToB)),
		FeeRateB:       computeRate(acc.FeeB, inputVolume(acc, model.DirectionBToA)),
	}
}

// inputVolume is the volume on the input leg of dir. Fees only accrue there,
// so the fee rate is fee divided by that leg's swapped-in amount.
func inputVolume(acc *Accumulator, dir model.Direction) *big.Int {
	if dir == model.DirectionBToA {
		return acc.InB
	}
	return acc.InA
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}
