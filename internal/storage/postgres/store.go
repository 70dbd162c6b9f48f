package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"welshStreet/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchange_state (
	name       TEXT PRIMARY KEY,
	sequence   BIGINT NOT NULL,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS exchange_events (
	sequence    BIGINT PRIMARY KEY,
	tx_hash     TEXT NOT NULL,
	log_index   BIGINT NOT NULL,
	address     TEXT NOT NULL,
	topic0      TEXT NOT NULL,
	topics      TEXT[] NOT NULL,
	data        TEXT NOT NULL,
	ts          BIGINT NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exchange_window_metrics (
	exchange            TEXT NOT NULL,
	window_size_seconds BIGINT NOT NULL,
	window_start_ts     TIMESTAMPTZ NOT NULL,
	window_end_ts       TIMESTAMPTZ NOT NULL,
	swap_count          BIGINT NOT NULL,
	volume_a            NUMERIC NOT NULL,
	volume_b            NUMERIC NOT NULL,
	fee_a               NUMERIC NOT NULL,
	fee_b               NUMERIC NOT NULL,
	tax_a               NUMERIC NOT NULL,
	tax_b               NUMERIC NOT NULL,
	revenue_a           NUMERIC NOT NULL,
	revenue_b           NUMERIC NOT NULL,
	close_price         NUMERIC,
	fee_rate_a          NUMERIC,
	fee_rate_b          NUMERIC,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (exchange, window_size_seconds, window_start_ts)
);
`

// Store provides Postgres persistence for deployment snapshots, the event
// journal and window metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables the store uses when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PutLogBatch inserts journal records. Records already stored under the same
// sequence are left untouched, so replays are idempotent.
func (s *Store) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range logs {
		batch.Queue(`
			INSERT INTO exchange_events (
				sequence, tx_hash, log_index, address, topic0, topics, data, ts, recorded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (sequence) DO NOTHING
		`,
			int64(record.Sequence),
			record.TxHash,
			int64(record.LogIndex),
			record.Address,
			record.Topic0(),
			record.Topics,
			record.Data,
			int64(record.Timestamp),
			record.RecordedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range logs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.WindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO exchange_window_metrics (
				exchange, window_size_seconds, window_start_ts, window_end_ts, swap_count,
				volume_a, volume_b, fee_a, fee_b, tax_a, tax_b, revenue_a, revenue_b,
				close_price, fee_rate_a, fee_rate_b, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
			ON CONFLICT (exchange, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				volume_a = EXCLUDED.volume_a,
				volume_b = EXCLUDED.volume_b,
				fee_a = EXCLUDED.fee_a,
				fee_b = EXCLUDED.fee_b,
				tax_a = EXCLUDED.tax_a,
				tax_b = EXCLUDED.tax_b,
				revenue_a = EXCLUDED.revenue_a,
				revenue_b = EXCLUDED.revenue_b,
				close_price = EXCLUDED.close_price,
				fee_rate_a = EXCLUDED.fee_rate_a,
				fee_rate_b = EXCLUDED.fee_rate_b,
				updated_at = now()
		`,
			m.Exchange,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			m.VolumeA,
			m.VolumeB,
			m.FeeA,
			m.FeeB,
			m.TaxA,
			m.TaxB,
			m.RevenueA,
			m.RevenueB,
			m.ClosePrice,
			m.FeeRateA,
			m.FeeRateB,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert window metrics: %w", err)
		}
	}
	return nil
}

// LoadSnapshot returns the deployment snapshot stored under name.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (model.DeploymentSnapshot, bool, error) {
	if name == "" {
		return model.DeploymentSnapshot{}, false, fmt.Errorf("state name required")
	}
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT snapshot FROM exchange_state WHERE name=$1`, name)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DeploymentSnapshot{}, false, nil
		}
		return model.DeploymentSnapshot{}, false, err
	}
	var snap model.DeploymentSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return model.DeploymentSnapshot{}, false, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, true, nil
}

// SaveSnapshot upserts the deployment snapshot under name. An older sequence
// never overwrites a newer one.
func (s *Store) SaveSnapshot(ctx context.Context, name string, snap model.DeploymentSnapshot) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO exchange_state (name, sequence, snapshot, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET sequence = EXCLUDED.sequence, snapshot = EXCLUDED.snapshot, updated_at = now()
		WHERE exchange_state.sequence <= EXCLUDED.sequence
	`, name, int64(snap.Sequence), raw)
	return err
}
