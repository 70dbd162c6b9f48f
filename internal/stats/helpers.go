package stats

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const ratioScale = 18

// FormatTokenAmount renders base units as a fixed-point decimal string.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).StringFixed(int32(decimals))
}

// FormatUint renders a uint64 base-unit amount like FormatTokenAmount.
func FormatUint(value uint64, decimals uint8) string {
	return FormatTokenAmount(new(big.Int).SetUint64(value), decimals)
}

// FormatBps renders a basis-point value as a percentage, e.g. 100 -> "1.00%".
func FormatBps(bps uint64) string {
	return decimal.NewFromInt(int64(bps)).Div(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// SpotPrice returns the price of one A in B from the reserves, adjusted for
// decimals, or "" when either reserve is empty.
func SpotPrice(reserveA, reserveB *big.Int, decimalsA, decimalsB uint8) string {
	if reserveA == nil || reserveB == nil || reserveA.Sign() == 0 || reserveB.Sign() == 0 {
		return ""
	}
	a := decimal.NewFromBigInt(reserveA, -int32(decimalsA))
	b := decimal.NewFromBigInt(reserveB, -int32(decimalsB))
	return b.DivRound(a, ratioScale).String()
}

func computeRate(fee, volume *big.Int) *string {
	if fee == nil || fee.Sign() == 0 || volume == nil || volume.Sign() == 0 {
		return nil
	}
	rate := decimal.NewFromBigInt(fee, 0).DivRound(decimal.NewFromBigInt(volume, 0), ratioScale).String()
	return &rate
}
