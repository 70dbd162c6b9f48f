package exchange

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"

	"welshStreet/internal/model"
)

// Bootstrap seeds the pool with its first liquidity and mints
// floor(sqrt(amountA*amountB)) LP credit to the owner. It succeeds at most once.
func (e *Exchange) Bootstrap(ctx context.Context, caller common.Address, amountA, amountB uint64) (model.BootstrapReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool.initialized() {
		return model.BootstrapReceipt{}, ErrAlreadyInitialized
	}
	if err := RequireOwner(caller, e.pool); err != nil {
		e.logger.Warn("bootstrap rejected", zap.Stringer("caller", caller), zap.Error(err))
		return model.BootstrapReceipt{}, err
	}
	if amountA == 0 || amountB == 0 {
		return model.BootstrapReceipt{}, ErrInvalidAmount
	}
	minted := Isqrt(amountA, amountB)

	fx := newEffects(ctx)
	if err := fx.transfer(e.ledgers.A, caller, e.address, amountA); err != nil {
		return model.BootstrapReceipt{}, e.abort(fx, ledgerFailure("transfer token a", err))
	}
	if err := fx.transfer(e.ledgers.B, caller, e.address, amountB); err != nil {
		return model.BootstrapReceipt{}, e.abort(fx, ledgerFailure("transfer token b", err))
	}
	if err := fx.mint(e.ledgers.LP, caller, minted); err != nil {
		return model.BootstrapReceipt{}, e.abort(fx, ledgerFailure("mint lp", err))
	}

	next := e.pool
	next.Phase = PhaseInitialized
	next.ReserveA = amountA
	next.ReserveB = amountB
	next.LockedA = 0
	next.LockedB = 0
	next.TaxAccrued = 0
	next.RevenueAccrued = 0
	if err := e.commit(ctx, fx, next); err != nil {
		return model.BootstrapReceipt{}, err
	}

	e.logger.Info("bootstrap complete",
		zap.Stringer("owner", caller),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
		zap.Uint64("minted_lp", minted),
	)

	return model.BootstrapReceipt{AddedA: amountA, AddedB: amountB, MintedLP: minted}, nil
}

// ProvideLiquidity deposits amountA of token A plus the matching amount of
// token B at the current available ratio and mints LP credit pro rata.
func (e *Exchange) ProvideLiquidity(ctx context.Context, caller common.Address, amountA uint64) (model.LiquidityReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	amountB, err := e.matchingDeposit(amountA)
	if err != nil {
		return model.LiquidityReceipt{}, err
	}
	supply, err := e.ledgers.LP.TotalSupply(ctx)
	if err != nil {
		return model.LiquidityReceipt{}, ledgerFailure("lp supply", err)
	}
	minted, ok := mulDiv(amountA, supply, e.pool.AvailableA())
	if !ok || minted == 0 {
		return model.LiquidityReceipt{}, ErrInvalidAmount
	}

	next, err := e.pool.deposit(amountA, amountB, false)
	if err != nil {
		return model.LiquidityReceipt{}, err
	}

	fx := newEffects(ctx)
	if err := fx.transfer(e.ledgers.A, caller, e.address, amountA); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token a", err))
	}
	if err := fx.transfer(e.ledgers.B, caller, e.address, amountB); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token b", err))
	}
	if err := fx.mint(e.ledgers.LP, caller, minted); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("mint lp", err))
	}
	if err := e.commit(ctx, fx, next); err != nil {
		return model.LiquidityReceipt{}, err
	}

	e.logger.Info("liquidity provided",
		zap.Stringer("caller", caller),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
		zap.Uint64("minted_lp", minted),
	)

	return model.LiquidityReceipt{AmountA: amountA, AmountB: amountB, MintedLP: minted}, nil
}

// LockLiquidity deposits amountA of token A plus the matching amount of token
// B as permanently locked reserves. No LP credit is minted.
func (e *Exchange) LockLiquidity(ctx context.Context, caller common.Address, amountA uint64) (model.LiquidityReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	amountB, err := e.matchingDeposit(amountA)
	if err != nil {
		return model.LiquidityReceipt{}, err
	}
	next, err := e.pool.deposit(amountA, amountB, true)
	if err != nil {
		return model.LiquidityReceipt{}, err
	}

	fx := newEffects(ctx)
	if err := fx.transfer(e.ledgers.A, caller, e.address, amountA); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token a", err))
	}
	if err := fx.transfer(e.ledgers.B, caller, e.address, amountB); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token b", err))
	}
	if err := e.commit(ctx, fx, next); err != nil {
		return model.LiquidityReceipt{}, err
	}

	e.logger.Info("liquidity locked",
		zap.Stringer("caller", caller),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB),
	)

	return model.LiquidityReceipt{AmountA: amountA, AmountB: amountB}, nil
}

// RemoveLiquidity burns lpAmount of the caller's LP credit and returns the
// pro rata share of both available reserves. A withdrawal may not empty a side.
func (e *Exchange) RemoveLiquidity(ctx context.Context, caller common.Address, lpAmount uint64) (model.LiquidityReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pool.initialized() {
		return model.LiquidityReceipt{}, ErrNotInitialized
	}
	if lpAmount == 0 {
		return model.LiquidityReceipt{}, ErrZeroInput
	}
	balance, err := e.ledgers.LP.BalanceOf(ctx, caller)
	if err != nil {
		return model.LiquidityReceipt{}, ledgerFailure("lp balance", err)
	}
	if balance < lpAmount {
		return model.LiquidityReceipt{}, ErrInsufficientShares
	}
	supply, err := e.ledgers.LP.TotalSupply(ctx)
	if err != nil {
		return model.LiquidityReceipt{}, ledgerFailure("lp supply", err)
	}

	availA, availB := e.pool.AvailableA(), e.pool.AvailableB()
	outA, okA := mulDiv(availA, lpAmount, supply)
	outB, okB := mulDiv(availB, lpAmount, supply)
	if !okA || !okB || (outA == 0 && outB == 0) {
		return model.LiquidityReceipt{}, ErrInvalidAmount
	}
	if outA >= availA || outB >= availB {
		return model.LiquidityReceipt{}, ErrInsufficientLiquidity
	}

	next := e.pool
	next.ReserveA -= outA
	next.ReserveB -= outB

	fx := newEffects(ctx)
	if err := fx.burn(e.ledgers.LP, caller, lpAmount); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("burn lp", err))
	}
	if err := fx.transfer(e.ledgers.A, e.address, caller, outA); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token a", err))
	}
	if err := fx.transfer(e.ledgers.B, e.address, caller, outB); err != nil {
		return model.LiquidityReceipt{}, e.abort(fx, ledgerFailure("transfer token b", err))
	}
	if err := e.commit(ctx, fx, next); err != nil {
		return model.LiquidityReceipt{}, err
	}

	e.logger.Info("liquidity removed",
		zap.Stringer("caller", caller),
		zap.Uint64("burned_lp", lpAmount),
		zap.Uint64("amount_a", outA),
		zap.Uint64("amount_b", outB),
	)

	return model.LiquidityReceipt{AmountA: outA, AmountB: outB, BurnedLP: lpAmount}, nil
}

// SetFee updates the fee policy. Owner only.
func (e *Exchange) SetFee(caller common.Address, feeBps, taxShareBps uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := RequireOwner(caller, e.pool); err != nil {
		return err
	}
	if feeBps > MaxFeeBps || taxShareBps > BpsDenominator {
		return ErrInvalidAmount
	}
	e.pool.FeeBps = feeBps
	e.pool.TaxShareBps = taxShareBps

	e.logger.Info("fee updated", zap.Uint64("fee_bps", feeBps), zap.Uint64("tax_share_bps", taxShareBps))
	return nil
}

// matchingDeposit returns the token B amount that keeps the available ratio
// for a deposit of amountA, rounded up in the pool's favour.
func (e *Exchange) matchingDeposit(amountA uint64) (uint64, error) {
	if !e.pool.initialized() {
		return 0, ErrNotInitialized
	}
	if amountA == 0 {
		return 0, ErrZeroInput
	}
	availA, availB := e.pool.AvailableA(), e.pool.AvailableB()
	if availA == 0 || availB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	amountB, ok := mulDivUp(amountA, availB, availA)
	if !ok || amountB == 0 {
		return 0, ErrInvalidAmount
	}
	return amountB, nil
}

// deposit returns the pool after adding both amounts, optionally as locked.
func (p Pool) deposit(amountA, amountB uint64, locked bool) (Pool, error) {
	next := p
	var overflowA, overflowB bool
	next.ReserveA, overflowA = math.SafeAdd(p.ReserveA, amountA)
	next.ReserveB, overflowB = math.SafeAdd(p.ReserveB, amountB)
	if overflowA || overflowB {
		return p, fmt.Errorf("deposit: %w", ErrInvalidAmount)
	}
	if locked {
		next.LockedA += amountA
		next.LockedB += amountB
	}
	return next, nil
}
