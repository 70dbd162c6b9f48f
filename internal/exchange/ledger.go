package exchange

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the authoritative balance store of a single fungible token.
type Ledger interface {
	Transfer(ctx context.Context, from, to common.Address, amount uint64) error
	Mint(ctx context.Context, to common.Address, amount uint64) error
	Burn(ctx context.Context, from common.Address, amount uint64) error
	BalanceOf(ctx context.Context, principal common.Address) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
}

// Ledgers groups the three token ledgers the exchange operates on.
type Ledgers struct {
	A  Ledger
	B  Ledger
	LP Ledger
}

func (l Ledgers) validate() error {
	if l.A == nil || l.B == nil || l.LP == nil {
		return fmt.Errorf("ledgers: token a, token b and lp ledgers are required")
	}
	return nil
}

// effects applies ledger calls in order and remembers how to undo each one,
// so a failed operation can restore every ledger it already touched.
type effects struct {
	ctx  context.Context
	undo []func(context.Context) error
}

func newEffects(ctx context.Context) *effects {
	return &effects{ctx: ctx}
}

func (e *effects) transfer(ledger Ledger, from, to common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := ledger.Transfer(e.ctx, from, to, amount); err != nil {
		return err
	}
	e.undo = append(e.undo, func(ctx context.Context) error {
		return ledger.Transfer(ctx, to, from, amount)
	})
	return nil
}

func (e *effects) mint(ledger Ledger, to common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := ledger.Mint(e.ctx, to, amount); err != nil {
		return err
	}
	e.undo = append(e.undo, func(ctx context.Context) error {
		return ledger.Burn(ctx, to, amount)
	})
	return nil
}

func (e *effects) burn(ledger Ledger, from common.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := ledger.Burn(e.ctx, from, amount); err != nil {
		return err
	}
	e.undo = append(e.undo, func(ctx context.Context) error {
		return ledger.Mint(ctx, from, amount)
	})
	return nil
}

// rollback reverts applied effects newest first. Compensation runs on a
// context that ignores cancellation of the failed operation.
func (e *effects) rollback() error {
	ctx := context.WithoutCancel(e.ctx)
	var firstErr error
	for i := len(e.undo) - 1; i >= 0; i-- {
		if err := e.undo[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.undo = nil
	return firstErr
}
