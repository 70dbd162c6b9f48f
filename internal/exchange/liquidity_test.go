package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestProvideLiquidity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.ex.ProvideLiquidity(ctx, wallet1, 1_000); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	f.bootstrap(t)

	receipt, err := f.ex.ProvideLiquidity(ctx, wallet1, 1_000_000_000)
	if err != nil {
		t.Fatalf("provide: %v", err)
	}
	if receipt.AmountA != 1_000_000_000 || receipt.AmountB != 1_000_000_000 || receipt.MintedLP != 1_000_000_000 {
		t.Fatalf("receipt mismatch: %+v", receipt)
	}
	if got := balance(t, f.credit, wallet1); got != 1_000_000_000 {
		t.Fatalf("lp balance mismatch: %d", got)
	}
	info := f.ex.ExchangeInfo()
	if info.ReserveA != seedAmount+1_000_000_000 || info.AvailB != seedAmount+1_000_000_000 {
		t.Fatalf("reserves mismatch: %+v", info)
	}

	if _, err := f.ex.ProvideLiquidity(ctx, wallet1, 0); !errors.Is(err, ErrZeroInput) {
		t.Fatalf("expected zero input, got %v", err)
	}
}

func TestProvideLiquidityRoundsInPoolFavour(t *testing.T) {
	f := newFixture(t, nil)
	f.bootstrap(t)
	ctx := context.Background()

	if _, err := f.ex.SwapAForB(ctx, wallet2, 3_333_333_333); err != nil {
		t.Fatalf("swap: %v", err)
	}
	before := f.ex.Pool()
	supplyBefore, _ := f.credit.TotalSupply(ctx)

	receipt, err := f.ex.ProvideLiquidity(ctx, wallet1, 7_777_777)
	if err != nil {
		t.Fatalf("provide: %v", err)
	}
	// amountB/amountA must not undercut availB/availA
	lhs := new(uint256.Int).Mul(uint256.NewInt(receipt.AmountB), uint256.NewInt(before.AvailableA()))
	rhs := new(uint256.Int).Mul(uint256.NewInt(receipt.AmountA), uint256.NewInt(before.AvailableB()))
	if lhs.Lt(rhs) {
		t.Fatalf("deposit ratio favours depositor: %+v", receipt)
	}
	// minted share must not exceed the deposited share of reserve A
	if minted, _ := mulDivUp(receipt.AmountA, supplyBefore, before.AvailableA()); receipt.MintedLP > minted {
		t.Fatalf("minted %d exceeds share %d", receipt.MintedLP, minted)
	}
}

func TestRemoveLiquidity(t *testing.T) {
	f := newFixture(t, nil)
	f.bootstrap(t)
	ctx := context.Background()

	if _, err := f.ex.ProvideLiquidity(ctx, wallet1, 1_000_000_000); err != nil {
		t.Fatalf("provide: %v", err)
	}
	welshBefore := balance(t, f.welsh, wallet1)

	if _, err := f.ex.RemoveLiquidity(ctx, wallet1, 1_000_000_001); !errors.Is(err, ErrInsufficientShares) || Code(err) != 707 {
		t.Fatalf("expected insufficient shares, got %v", err)
	}
	if _, err := f.ex.RemoveLiquidity(ctx, wallet1, 0); !errors.Is(err, ErrZeroInput) {
		t.Fatalf("expected zero input, got %v", err)
	}

	receipt, err := f.ex.RemoveLiquidity(ctx, wallet1, 1_000_000_000)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if receipt.AmountA != 1_000_000_000 || receipt.AmountB != 1_000_000_000 || receipt.BurnedLP != 1_000_000_000 {
		t.Fatalf("receipt mismatch: %+v", receipt)
	}
	if got := balance(t, f.welsh, wallet1); got != welshBefore+1_000_000_000 {
		t.Fatalf("welsh not returned: %d", got)
	}
	if got := balance(t, f.credit, wallet1); got != 0 {
		t.Fatalf("lp not burned: %d", got)
	}
	info := f.ex.ExchangeInfo()
	if info.ReserveA != seedAmount || info.ReserveB != seedAmount {
		t.Fatalf("reserves mismatch: %+v", info)
	}
}

func TestRemoveLiquidityCannotDrainPool(t *testing.T) {
	f := newFixture(t, nil)
	f.bootstrap(t)
	ctx := context.Background()

	before := f.ex.ExchangeInfo()
	if _, err := f.ex.RemoveLiquidity(ctx, deployer, seedAmount); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
	if got := balance(t, f.credit, deployer); got != seedAmount {
		t.Fatalf("lp burned on rejected removal: %d", got)
	}
	if after := f.ex.ExchangeInfo(); after != before {
		t.Fatalf("state changed: %+v vs %+v", after, before)
	}
}

func TestLockLiquidity(t *testing.T) {
	f := newFixture(t, nil)
	f.bootstrap(t)
	ctx := context.Background()

	quoteBefore, err := f.ex.QuoteAForB(5_000_000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	supplyBefore, _ := f.credit.TotalSupply(ctx)

	receipt, err := f.ex.LockLiquidity(ctx, wallet1, 2_000_000_000)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if receipt.AmountA != 2_000_000_000 || receipt.AmountB != 2_000_000_000 || receipt.MintedLP != 0 {
		t.Fatalf("receipt mismatch: %+v", receipt)
	}

	info := f.ex.ExchangeInfo()
	if info.LockedA != 2_000_000_000 || info.LockedB != 2_000_000_000 {
		t.Fatalf("locked mismatch: %+v", info)
	}
	if info.AvailA != seedAmount || info.ReserveA != seedAmount+2_000_000_000 {
		t.Fatalf("available mismatch: %+v", info)
	}
	if supplyAfter, _ := f.credit.TotalSupply(ctx); supplyAfter != supplyBefore {
		t.Fatalf("lp minted on lock: %d", supplyAfter)
	}

	quoteAfter, err := f.ex.QuoteAForB(5_000_000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quoteAfter != quoteBefore {
		t.Fatalf("locked reserves changed pricing: %+v vs %+v", quoteAfter, quoteBefore)
	}
}

func TestSetFee(t *testing.T) {
	f := newFixture(t, nil)
	f.bootstrap(t)

	if err := f.ex.SetFee(wallet1, 30, 5_000); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if err := f.ex.SetFee(deployer, MaxFeeBps+1, 5_000); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := f.ex.SetFee(deployer, 100, BpsDenominator+1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := f.ex.SetFee(deployer, 30, 10_000); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	if info := f.ex.ExchangeInfo(); info.Fee != 30 {
		t.Fatalf("fee mismatch: %d", info.Fee)
	}

	receipt, err := f.ex.SwapAForB(context.Background(), wallet1, 1_000_000)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if receipt.Fee != 3_000 || receipt.Tax != 3_000 || receipt.Revenue != 0 {
		t.Fatalf("fee split mismatch: %+v", receipt)
	}
}
