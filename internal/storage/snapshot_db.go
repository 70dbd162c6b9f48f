package storage

import (
	"context"

	"welshStreet/internal/model"
	"welshStreet/internal/storage/postgres"
)

// DBSnapshotStore stores the deployment snapshot in the exchange_state table.
type DBSnapshotStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBSnapshotStore) Load(ctx context.Context) (model.DeploymentSnapshot, bool, error) {
	if s == nil || s.Store == nil {
		return model.DeploymentSnapshot{}, false, nil
	}
	return s.Store.LoadSnapshot(ctx, s.Name)
}

func (s *DBSnapshotStore) Save(ctx context.Context, snap model.DeploymentSnapshot) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveSnapshot(ctx, s.Name, snap)
}
