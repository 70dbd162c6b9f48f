package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	owner  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	alice  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	street = Metadata{Name: "Street", Symbol: "STREET", Decimals: 6}
)

func TestOwnerMint(t *testing.T) {
	ctx := context.Background()
	token := NewToken(street, owner)

	if err := token.OwnerMint(ctx, owner, 1_000_000_000_000); err != nil {
		t.Fatalf("owner mint: %v", err)
	}
	bal, _ := token.BalanceOf(ctx, owner)
	if bal != 1_000_000_000_000 {
		t.Fatalf("balance mismatch: %d", bal)
	}

	err := token.OwnerMint(ctx, alice, 1_000_000_000)
	if !errors.Is(err, ErrNotTokenOwner) {
		t.Fatalf("expected not token owner, got %v", err)
	}
	var coded *Error
	if !errors.As(err, &coded) || coded.Code() != 901 {
		t.Fatalf("expected code 901, got %v", err)
	}
	supply, _ := token.TotalSupply(ctx)
	if supply != 1_000_000_000_000 {
		t.Fatalf("supply changed on failed mint: %d", supply)
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	token := NewToken(street, owner)
	if err := token.Mint(ctx, owner, 5_000); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := token.Transfer(ctx, owner, alice, 1_000); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	ownerBal, _ := token.BalanceOf(ctx, owner)
	aliceBal, _ := token.BalanceOf(ctx, alice)
	if ownerBal != 4_000 || aliceBal != 1_000 {
		t.Fatalf("balances mismatch: owner=%d alice=%d", ownerBal, aliceBal)
	}

	if err := token.Transfer(ctx, alice, owner, 1_001); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := token.Transfer(ctx, alice, owner, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestBurn(t *testing.T) {
	ctx := context.Background()
	token := NewToken(street, owner)
	if err := token.Mint(ctx, alice, 300); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := token.Burn(ctx, alice, 400); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := token.Burn(ctx, alice, 300); err != nil {
		t.Fatalf("burn: %v", err)
	}
	supply, _ := token.TotalSupply(ctx)
	if supply != 0 {
		t.Fatalf("supply mismatch: %d", supply)
	}
	if holders := token.Holders(); len(holders) != 0 {
		t.Fatalf("expected no holders, got %v", holders)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	token := NewToken(street, owner)
	_ = token.Mint(ctx, owner, 700)
	_ = token.Mint(ctx, alice, 300)

	snap := token.Snapshot()
	restored := NewToken(street, owner)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	bal, _ := restored.BalanceOf(ctx, alice)
	supply, _ := restored.TotalSupply(ctx)
	if bal != 300 || supply != 1_000 {
		t.Fatalf("restored mismatch: alice=%d supply=%d", bal, supply)
	}

	snap.Supply = 999
	if err := restored.Restore(snap); err == nil {
		t.Fatalf("expected error for inconsistent supply")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	token := NewToken(street, owner)
	if err := token.Mint(ctx, owner, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
