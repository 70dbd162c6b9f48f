package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"welshStreet/internal/model"
)

// Snapshot converts the pool into its persisted form.
func (p Pool) Snapshot() model.PoolSnapshot {
	return model.PoolSnapshot{
		Initialized:    p.initialized(),
		Owner:          p.Owner.Hex(),
		ReserveA:       p.ReserveA,
		ReserveB:       p.ReserveB,
		LockedA:        p.LockedA,
		LockedB:        p.LockedB,
		FeeBps:         p.FeeBps,
		TaxShareBps:    p.TaxShareBps,
		TaxAccrued:     p.TaxAccrued,
		RevenueAccrued: p.RevenueAccrued,
	}
}

// PoolFromSnapshot parses a persisted pool. Invariants are checked when the
// pool is installed with Exchange.Restore.
func PoolFromSnapshot(snap model.PoolSnapshot) (Pool, error) {
	if !common.IsHexAddress(snap.Owner) {
		return Pool{}, fmt.Errorf("pool snapshot: invalid owner %q", snap.Owner)
	}
	phase := PhaseUninitialized
	if snap.Initialized {
		phase = PhaseInitialized
	}
	return Pool{
		Phase:          phase,
		Owner:          common.HexToAddress(snap.Owner),
		ReserveA:       snap.ReserveA,
		ReserveB:       snap.ReserveB,
		LockedA:        snap.LockedA,
		LockedB:        snap.LockedB,
		FeeBps:         snap.FeeBps,
		TaxShareBps:    snap.TaxShareBps,
		TaxAccrued:     snap.TaxAccrued,
		RevenueAccrued: snap.RevenueAccrued,
	}, nil
}
