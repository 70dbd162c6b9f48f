package exchange

import (
	"github.com/holiman/uint256"
)

const (
	// BpsDenominator is 100% in basis points.
	BpsDenominator uint64 = 10_000
	// MaxFeeBps caps the total swap fee at 10%.
	MaxFeeBps uint64 = 1_000

	DefaultFeeBps      uint64 = 100
	DefaultTaxShareBps uint64 = 5_000
)

// Quote is the priced outcome of a swap.
type Quote struct {
	AmountOut  uint64
	FeeTotal   uint64
	FeeTax     uint64
	FeeRevenue uint64
}

// QuoteSwap prices a constant-product swap with the fee taken from the input
// leg. Every division truncates toward the pool.
func QuoteSwap(amountIn, reserveIn, reserveOut, feeBps, taxShareBps uint64) (Quote, error) {
	if amountIn == 0 {
		return Quote{}, ErrZeroInput
	}
	if reserveIn == 0 || reserveOut == 0 {
		return Quote{}, ErrInsufficientLiquidity
	}
	if feeBps > BpsDenominator || taxShareBps > BpsDenominator {
		return Quote{}, ErrInvalidAmount
	}

	feeTotal, ok := mulDiv(amountIn, feeBps, BpsDenominator)
	if !ok {
		return Quote{}, ErrInvalidAmount
	}
	feeTax, ok := mulDiv(feeTotal, taxShareBps, BpsDenominator)
	if !ok {
		return Quote{}, ErrInvalidAmount
	}
	net := amountIn - feeTotal

	// amountOut = reserveOut * net / (reserveIn + net)
	denom := uint256.NewInt(reserveIn)
	denom.Add(denom, uint256.NewInt(net))
	out, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(reserveOut), uint256.NewInt(net), denom)
	if overflow || !out.IsUint64() {
		return Quote{}, ErrInvalidAmount
	}

	return Quote{
		AmountOut:  out.Uint64(),
		FeeTotal:   feeTotal,
		FeeTax:     feeTax,
		FeeRevenue: feeTotal - feeTax,
	}, nil
}

// Isqrt returns floor(sqrt(a*b)).
func Isqrt(a, b uint64) uint64 {
	product := uint256.NewInt(a)
	product.Mul(product, uint256.NewInt(b))
	return new(uint256.Int).Sqrt(product).Uint64()
}

// mulDiv returns floor(x*y/d) and false when the result does not fit in 64 bits.
func mulDiv(x, y, d uint64) (uint64, bool) {
	if d == 0 {
		return 0, false
	}
	z, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(x), uint256.NewInt(y), uint256.NewInt(d))
	if overflow || !z.IsUint64() {
		return 0, false
	}
	return z.Uint64(), true
}

// mulDivUp returns ceil(x*y/d) and false when the result does not fit in 64 bits.
func mulDivUp(x, y, d uint64) (uint64, bool) {
	if d == 0 {
		return 0, false
	}
	num := uint256.NewInt(x)
	num.Mul(num, uint256.NewInt(y))
	den := uint256.NewInt(d)
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(num, den, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() {
		return 0, false
	}
	return q.Uint64(), true
}
