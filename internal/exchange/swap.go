package exchange

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"

	"welshStreet/internal/model"
)

// SwapAForB sells amountIn of token A for token B.
func (e *Exchange) SwapAForB(ctx context.Context, caller common.Address, amountIn uint64) (model.SwapReceipt, error) {
	return e.swap(ctx, caller, model.DirectionAToB, amountIn)
}

// SwapBForA sells amountIn of token B for token A.
func (e *Exchange) SwapBForA(ctx context.Context, caller common.Address, amountIn uint64) (model.SwapReceipt, error) {
	return e.swap(ctx, caller, model.DirectionBToA, amountIn)
}

// QuoteAForB prices a swap-a-b against the current pool without executing it.
func (e *Exchange) QuoteAForB(amountIn uint64) (Quote, error) {
	return e.quote(model.DirectionAToB, amountIn)
}

// QuoteBForA prices a swap-b-a against the current pool without executing it.
func (e *Exchange) QuoteBForA(amountIn uint64) (Quote, error) {
	return e.quote(model.DirectionBToA, amountIn)
}

func (e *Exchange) quote(dir model.Direction, amountIn uint64) (Quote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pool.initialized() {
		return Quote{}, ErrNotInitialized
	}
	side := e.pool.side(dir)
	return QuoteSwap(amountIn, side.availIn, side.availOut, e.pool.FeeBps, e.pool.TaxShareBps)
}

// swapSide views the pool from the perspective of one swap direction, so
// both directions share a single code path.
type swapSide struct {
	availIn   uint64
	availOut  uint64
	ledgerIn  func(Ledgers) Ledger
	ledgerOut func(Ledgers) Ledger
}

func (p Pool) side(dir model.Direction) swapSide {
	if dir == model.DirectionBToA {
		return swapSide{
			availIn:   p.AvailableB(),
			availOut:  p.AvailableA(),
			ledgerIn:  func(l Ledgers) Ledger { return l.B },
			ledgerOut: func(l Ledgers) Ledger { return l.A },
		}
	}
	return swapSide{
		availIn:   p.AvailableA(),
		availOut:  p.AvailableB(),
		ledgerIn:  func(l Ledgers) Ledger { return l.A },
		ledgerOut: func(l Ledgers) Ledger { return l.B },
	}
}

// applySwap returns the pool after crediting amountIn to the input reserve,
// debiting amountOut from the output reserve and accruing the fee split.
func (p Pool) applySwap(dir model.Direction, amountIn uint64, q Quote) (Pool, error) {
	next := p
	in, out := &next.ReserveA, &next.ReserveB
	if dir == model.DirectionBToA {
		in, out = &next.ReserveB, &next.ReserveA
	}

	var overflow bool
	if *in, overflow = math.SafeAdd(*in, amountIn); overflow {
		return p, fmt.Errorf("swap: input reserve: %w", ErrInvalidAmount)
	}
	if *out, overflow = math.SafeSub(*out, q.AmountOut); overflow {
		return p, fmt.Errorf("swap: output reserve: %w", ErrInsufficientLiquidity)
	}
	if next.TaxAccrued, overflow = math.SafeAdd(p.TaxAccrued, q.FeeTax); overflow {
		return p, fmt.Errorf("swap: tax accrual: %w", ErrInvalidAmount)
	}
	if next.RevenueAccrued, overflow = math.SafeAdd(p.RevenueAccrued, q.FeeRevenue); overflow {
		return p, fmt.Errorf("swap: revenue accrual: %w", ErrInvalidAmount)
	}
	return next, nil
}

func (e *Exchange) swap(ctx context.Context, caller common.Address, dir model.Direction, amountIn uint64) (model.SwapReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pool.initialized() {
		return model.SwapReceipt{}, ErrNotInitialized
	}

	before := e.pool
	side := before.side(dir)
	q, err := QuoteSwap(amountIn, side.availIn, side.availOut, before.FeeBps, before.TaxShareBps)
	if err != nil {
		return model.SwapReceipt{}, err
	}
	if q.AmountOut == 0 {
		return model.SwapReceipt{}, fmt.Errorf("swap %s: output rounds to zero: %w", dir, ErrInsufficientLiquidity)
	}

	next, err := before.applySwap(dir, amountIn, q)
	if err != nil {
		return model.SwapReceipt{}, err
	}
	if next.availableProduct().Lt(before.availableProduct()) {
		return model.SwapReceipt{}, fmt.Errorf("swap %s: constant product decreased: %w", dir, ErrInsufficientLiquidity)
	}

	fx := newEffects(ctx)
	if err := fx.transfer(side.ledgerIn(e.ledgers), caller, e.address, amountIn); err != nil {
		e.logger.Warn("swap input transfer failed", zap.Stringer("caller", caller), zap.Stringer("direction", dir), zap.Error(err))
		return model.SwapReceipt{}, e.abort(fx, ledgerFailure("transfer input", err))
	}
	if err := fx.transfer(side.ledgerOut(e.ledgers), e.address, caller, q.AmountOut); err != nil {
		e.logger.Warn("swap output transfer failed", zap.Stringer("caller", caller), zap.Stringer("direction", dir), zap.Error(err))
		return model.SwapReceipt{}, e.abort(fx, ledgerFailure("transfer output", err))
	}
	if err := e.commit(ctx, fx, next); err != nil {
		return model.SwapReceipt{}, err
	}

	receipt := model.SwapReceipt{
		Direction: dir,
		AmountIn:  amountIn,
		AmountOut: q.AmountOut,
		Fee:       q.FeeTotal,
		Revenue:   q.FeeRevenue,
		Tax:       q.FeeTax,
		ResA:      before.AvailableA(),
		ResANew:   next.ReserveA,
		ResB:      before.AvailableB(),
		ResBNew:   next.ReserveB,
	}

	e.logger.Info("swap complete",
		zap.Stringer("caller", caller),
		zap.Stringer("direction", dir),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", q.AmountOut),
		zap.Uint64("fee", q.FeeTotal),
		zap.Uint64("tax", q.FeeTax),
		zap.Uint64("revenue", q.FeeRevenue),
	)

	return receipt, nil
}
