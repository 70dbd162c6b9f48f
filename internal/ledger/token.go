package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"welshStreet/internal/model"
)

// Metadata describes a token for display purposes.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Token is an in-memory fungible token ledger. Total supply always equals the
// sum of all balances.
type Token struct {
	meta  Metadata
	owner common.Address

	mu       sync.RWMutex
	supply   uint64
	balances map[common.Address]uint64
}

// NewToken creates an empty token. owner may mint through OwnerMint.
func NewToken(meta Metadata, owner common.Address) *Token {
	return &Token{
		meta:     meta,
		owner:    owner,
		balances: make(map[common.Address]uint64),
	}
}

func (t *Token) Metadata() Metadata {
	return t.meta
}

func (t *Token) Owner() common.Address {
	return t.owner
}

// Transfer moves amount from one principal to another.
func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		return fmt.Errorf("%s transfer %d from %s: %w", t.meta.Symbol, amount, from, ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	if t.balances[from] == 0 {
		delete(t.balances, from)
	}
	return nil
}

// Mint creates amount new units for to.
func (t *Token) Mint(ctx context.Context, to common.Address, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	supply, overflow := math.SafeAdd(t.supply, amount)
	if overflow {
		return fmt.Errorf("%s mint %d: %w", t.meta.Symbol, amount, ErrSupplyOverflow)
	}
	t.supply = supply
	t.balances[to] += amount
	return nil
}

// Burn destroys amount units held by from.
func (t *Token) Burn(ctx context.Context, from common.Address, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		return fmt.Errorf("%s burn %d from %s: %w", t.meta.Symbol, amount, from, ErrInsufficientBalance)
	}
	t.balances[from] -= amount
	t.supply -= amount
	if t.balances[from] == 0 {
		delete(t.balances, from)
	}
	return nil
}

// OwnerMint mints amount to caller, which must be the token owner.
func (t *Token) OwnerMint(ctx context.Context, caller common.Address, amount uint64) error {
	if caller != t.owner {
		return ErrNotTokenOwner
	}
	return t.Mint(ctx, caller, amount)
}

func (t *Token) BalanceOf(ctx context.Context, principal common.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[principal], nil
}

func (t *Token) TotalSupply(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply, nil
}

// Holders returns every principal with a non-zero balance, sorted.
func (t *Token) Holders() []common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()

	holders := make([]common.Address, 0, len(t.balances))
	for addr := range t.balances {
		holders = append(holders, addr)
	}
	sort.Slice(holders, func(i, j int) bool {
		return holders[i].Cmp(holders[j]) < 0
	})
	return holders
}

// Snapshot captures the ledger for persistence.
func (t *Token) Snapshot() model.TokenSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	balances := make(map[string]uint64, len(t.balances))
	for addr, bal := range t.balances {
		balances[addr.Hex()] = bal
	}
	return model.TokenSnapshot{
		Name:     t.meta.Name,
		Symbol:   t.meta.Symbol,
		Decimals: t.meta.Decimals,
		Owner:    t.owner.Hex(),
		Supply:   t.supply,
		Balances: balances,
	}
}

// Restore replaces balances from a snapshot after checking that the
// snapshot's balances add up to its supply.
func (t *Token) Restore(snap model.TokenSnapshot) error {
	balances := make(map[common.Address]uint64, len(snap.Balances))
	var sum uint64
	for key, bal := range snap.Balances {
		if !common.IsHexAddress(key) {
			return fmt.Errorf("restore %s: invalid principal %q", t.meta.Symbol, key)
		}
		var overflow bool
		if sum, overflow = math.SafeAdd(sum, bal); overflow {
			return fmt.Errorf("restore %s: %w", t.meta.Symbol, ErrSupplyOverflow)
		}
		if bal > 0 {
			balances[common.HexToAddress(key)] = bal
		}
	}
	if sum != snap.Supply {
		return fmt.Errorf("restore %s: balances sum %d != supply %d", t.meta.Symbol, sum, snap.Supply)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances = balances
	t.supply = snap.Supply
	return nil
}
