package exchange

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestQuoteSwapCalibration(t *testing.T) {
	q, err := QuoteSwap(100_000_000_000, 10_000_000_000_000, 10_000_000_000_000, 100, DefaultTaxShareBps)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.FeeTotal != 1_000_000_000 {
		t.Fatalf("fee total mismatch: %d", q.FeeTotal)
	}
	if q.FeeTax != 500_000_000 || q.FeeRevenue != 500_000_000 {
		t.Fatalf("fee split mismatch: tax=%d revenue=%d", q.FeeTax, q.FeeRevenue)
	}
	if q.AmountOut != 98_029_507_872 {
		t.Fatalf("amount out mismatch: %d", q.AmountOut)
	}
}

func TestQuoteSwapFeeSplitNoLeakage(t *testing.T) {
	cases := []struct {
		amountIn    uint64
		feeBps      uint64
		taxShareBps uint64
	}{
		{amountIn: 12_345, feeBps: 100, taxShareBps: 5_000},
		{amountIn: 99_999, feeBps: 30, taxShareBps: 3_333},
		{amountIn: 1_000_001, feeBps: 1_000, taxShareBps: 10_000},
		{amountIn: 777, feeBps: 100, taxShareBps: 0},
		{amountIn: 50, feeBps: 100, taxShareBps: 5_000},
	}
	for _, tc := range cases {
		q, err := QuoteSwap(tc.amountIn, 1_000_000_000, 2_000_000_000, tc.feeBps, tc.taxShareBps)
		if err != nil {
			t.Fatalf("quote %+v: %v", tc, err)
		}
		if q.FeeTax+q.FeeRevenue != q.FeeTotal {
			t.Fatalf("fee leakage %+v: tax=%d revenue=%d total=%d", tc, q.FeeTax, q.FeeRevenue, q.FeeTotal)
		}
		if q.FeeTotal != tc.amountIn*tc.feeBps/BpsDenominator {
			t.Fatalf("fee total mismatch %+v: %d", tc, q.FeeTotal)
		}
	}
}

func TestQuoteSwapErrors(t *testing.T) {
	if _, err := QuoteSwap(0, 100, 100, 100, 5_000); !errors.Is(err, ErrZeroInput) {
		t.Fatalf("expected zero input, got %v", err)
	}
	if _, err := QuoteSwap(10, 0, 100, 100, 5_000); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
	if _, err := QuoteSwap(10, 100, 0, 100, 5_000); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected insufficient liquidity, got %v", err)
	}
	if _, err := QuoteSwap(10, 100, 100, BpsDenominator+1, 5_000); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestQuoteSwapMonotonicity(t *testing.T) {
	reserves := [][2]uint64{
		{1, 1},
		{1_000, 7},
		{10_000_000_000_000, 10_000_000_000_000},
		{^uint64(0) / 2, 3},
		{5, ^uint64(0)},
	}
	inputs := []uint64{1, 2, 99, 100, 101, 10_000, 1 << 40, ^uint64(0)}

	for _, r := range reserves {
		for _, in := range inputs {
			q, err := QuoteSwap(in, r[0], r[1], 100, 5_000)
			if err != nil {
				t.Fatalf("quote in=%d reserves=%v: %v", in, r, err)
			}
			if q.AmountOut >= r[1] {
				t.Fatalf("amount out %d must stay below reserve %d", q.AmountOut, r[1])
			}

			before := new(uint256.Int).Mul(uint256.NewInt(r[0]), uint256.NewInt(r[1]))
			after := new(uint256.Int).Add(uint256.NewInt(r[0]), uint256.NewInt(in))
			after.Mul(after, uint256.NewInt(r[1]-q.AmountOut))
			if after.Lt(before) {
				t.Fatalf("product decreased in=%d reserves=%v", in, r)
			}
		}
	}
}

func TestQuoteSwapPositiveOutput(t *testing.T) {
	q, err := QuoteSwap(1_000_000, 10_000_000, 10_000_000, 100, 5_000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.AmountOut == 0 {
		t.Fatalf("expected positive output")
	}
}

func TestIsqrt(t *testing.T) {
	cases := []struct {
		a, b uint64
		want uint64
	}{
		{a: 1_000_000_000_000, b: 1_000_000_000_000, want: 1_000_000_000_000},
		{a: 10_000_000_000_000, b: 10_000_000_000_000, want: 10_000_000_000_000},
		{a: 2, b: 1, want: 1},
		{a: 8, b: 1, want: 2},
		{a: 0, b: 5, want: 0},
		{a: ^uint64(0), b: ^uint64(0), want: ^uint64(0)},
	}
	for _, tc := range cases {
		if got := Isqrt(tc.a, tc.b); got != tc.want {
			t.Fatalf("isqrt(%d*%d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
