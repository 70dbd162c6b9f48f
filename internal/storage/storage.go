package storage

import (
	"context"

	"welshStreet/internal/model"
)

// Storage defines a sink for journal records.
type Storage interface {
	PutLogBatch(ctx context.Context, logs []model.LogRecord) error
}

// SnapshotStore persists the deployment snapshot between runs.
type SnapshotStore interface {
	Load(ctx context.Context) (model.DeploymentSnapshot, bool, error)
	Save(ctx context.Context, snap model.DeploymentSnapshot) error
}
