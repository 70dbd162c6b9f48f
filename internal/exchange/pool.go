package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"welshStreet/internal/model"
)

// Phase is the bootstrap state of a pool. The only transition is
// Uninitialized -> Initialized.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Pool is the reserve ledger of the exchange.
type Pool struct {
	Phase          Phase
	Owner          common.Address
	ReserveA       uint64
	ReserveB       uint64
	LockedA        uint64
	LockedB        uint64
	FeeBps         uint64
	TaxShareBps    uint64
	TaxAccrued     uint64
	RevenueAccrued uint64
}

func (p Pool) initialized() bool {
	return p.Phase == PhaseInitialized
}

// AvailableA is the part of reserve A that prices swaps and backs LP shares.
func (p Pool) AvailableA() uint64 {
	return p.ReserveA - p.LockedA
}

// AvailableB is the part of reserve B that prices swaps and backs LP shares.
func (p Pool) AvailableB() uint64 {
	return p.ReserveB - p.LockedB
}

// Info returns the externally observed exchange snapshot.
func (p Pool) Info() model.ExchangeInfo {
	return model.ExchangeInfo{
		AvailA:   p.AvailableA(),
		AvailB:   p.AvailableB(),
		Fee:      p.FeeBps,
		LockedA:  p.LockedA,
		LockedB:  p.LockedB,
		ReserveA: p.ReserveA,
		ReserveB: p.ReserveB,
		Revenue:  p.RevenueAccrued,
		Tax:      p.TaxAccrued,
	}
}

// check verifies the invariants that must hold between operations.
// lpSupply is the LP ledger's total supply.
func (p Pool) check(lpSupply uint64) error {
	if p.LockedA > p.ReserveA || p.LockedB > p.ReserveB {
		return fmt.Errorf("pool invariant: locked exceeds reserve (a %d/%d, b %d/%d)",
			p.LockedA, p.ReserveA, p.LockedB, p.ReserveB)
	}
	if p.FeeBps > MaxFeeBps || p.TaxShareBps > BpsDenominator {
		return fmt.Errorf("pool invariant: fee policy out of range (fee %d, tax share %d)", p.FeeBps, p.TaxShareBps)
	}
	switch p.Phase {
	case PhaseUninitialized:
		if p.ReserveA != 0 || p.ReserveB != 0 || p.LockedA != 0 || p.LockedB != 0 ||
			p.TaxAccrued != 0 || p.RevenueAccrued != 0 || lpSupply != 0 {
			return fmt.Errorf("pool invariant: uninitialized pool holds state")
		}
	case PhaseInitialized:
	default:
		return fmt.Errorf("pool invariant: unknown phase %s", p.Phase)
	}
	return nil
}

// availableProduct returns availA * availB without overflow.
func (p Pool) availableProduct() *uint256.Int {
	a := uint256.NewInt(p.AvailableA())
	return a.Mul(a, uint256.NewInt(p.AvailableB()))
}
