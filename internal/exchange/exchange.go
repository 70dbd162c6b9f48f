package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"welshStreet/internal/model"
)

// Config holds deployment-time exchange settings.
type Config struct {
	Owner       common.Address
	FeeBps      uint64
	TaxShareBps uint64
}

// Exchange is a single two-token constant-product pool. Every operation is
// serialised on one lock and either commits fully or leaves no trace.
type Exchange struct {
	mu      sync.Mutex
	pool    Pool
	address common.Address
	ledgers Ledgers
	logger  *zap.Logger
}

// New creates an uninitialized exchange. The owner is the only principal
// allowed to bootstrap it.
func New(cfg Config, ledgers Ledgers, logger *zap.Logger) (*Exchange, error) {
	if err := ledgers.validate(); err != nil {
		return nil, err
	}
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("owner is required")
	}
	if cfg.FeeBps > MaxFeeBps {
		return nil, fmt.Errorf("fee %d bps exceeds max %d", cfg.FeeBps, MaxFeeBps)
	}
	if cfg.TaxShareBps > BpsDenominator {
		return nil, fmt.Errorf("tax share %d bps exceeds %d", cfg.TaxShareBps, BpsDenominator)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Exchange{
		pool: Pool{
			Phase:       PhaseUninitialized,
			Owner:       cfg.Owner,
			FeeBps:      cfg.FeeBps,
			TaxShareBps: cfg.TaxShareBps,
		},
		address: CustodyAddress(cfg.Owner),
		ledgers: ledgers,
		logger:  logger,
	}, nil
}

// CustodyAddress derives the principal that holds the pool's tokens.
func CustodyAddress(owner common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("exchange"), owner.Bytes())[12:])
}

// Address returns the pool custody principal.
func (e *Exchange) Address() common.Address {
	return e.address
}

// Owner returns the principal allowed to bootstrap the pool.
func (e *Exchange) Owner() common.Address {
	return e.pool.Owner
}

// ExchangeInfo returns a read-only snapshot of the pool.
func (e *Exchange) ExchangeInfo() model.ExchangeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Info()
}

// Pool returns a copy of the reserve ledger.
func (e *Exchange) Pool() Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool
}

// LPBalance delegates to the LP ledger.
func (e *Exchange) LPBalance(ctx context.Context, principal common.Address) (uint64, error) {
	return e.ledgers.LP.BalanceOf(ctx, principal)
}

// LPTotalSupply delegates to the LP ledger.
func (e *Exchange) LPTotalSupply(ctx context.Context) (uint64, error) {
	return e.ledgers.LP.TotalSupply(ctx)
}

// Restore replaces the pool record, typically from a persisted snapshot.
// The restored record must satisfy the pool invariants.
func (e *Exchange) Restore(ctx context.Context, pool Pool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pool.Owner != e.pool.Owner {
		return fmt.Errorf("restore: owner mismatch %s != %s", pool.Owner, e.pool.Owner)
	}
	if e.pool.initialized() && !pool.initialized() {
		return fmt.Errorf("restore: %w", ErrAlreadyInitialized)
	}
	supply, err := e.ledgers.LP.TotalSupply(ctx)
	if err != nil {
		return fmt.Errorf("restore: lp supply: %w", err)
	}
	if err := pool.check(supply); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := e.checkCustody(ctx, pool); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	e.pool = pool
	return nil
}

// checkCustody requires the recorded reserves to equal what the custody
// principal holds on each token ledger.
func (e *Exchange) checkCustody(ctx context.Context, pool Pool) error {
	sides := []struct {
		name    string
		ledger  Ledger
		reserve uint64
	}{
		{"a", e.ledgers.A, pool.ReserveA},
		{"b", e.ledgers.B, pool.ReserveB},
	}
	for _, side := range sides {
		held, err := side.ledger.BalanceOf(ctx, e.address)
		if err != nil {
			return fmt.Errorf("custody balance %s: %w", side.name, err)
		}
		if held != side.reserve {
			return fmt.Errorf("pool invariant: reserve %s %d != custody balance %d", side.name, side.reserve, held)
		}
	}
	return nil
}

// commit validates next and installs it, or rolls back fx when validation fails.
// Callers must hold e.mu.
func (e *Exchange) commit(ctx context.Context, fx *effects, next Pool) error {
	supply, err := e.ledgers.LP.TotalSupply(ctx)
	if err == nil {
		err = next.check(supply)
	}
	if err != nil {
		return e.abort(fx, err)
	}
	e.pool = next
	return nil
}

// abort rolls back ledger effects and returns cause. Compensation failures
// are logged; the pool record is never mutated on this path.
func (e *Exchange) abort(fx *effects, cause error) error {
	if fx == nil {
		return cause
	}
	if err := fx.rollback(); err != nil {
		e.logger.Error("ledger rollback failed", zap.Error(err), zap.NamedError("cause", cause))
		return fmt.Errorf("%w (rollback: %v)", cause, err)
	}
	return cause
}
