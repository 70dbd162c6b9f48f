package stats

import (
	"fmt"
	"math/big"

	"welshStreet/internal/model"
)

// Accumulator holds aggregate values for one window.
type Accumulator struct {
	WindowStart  uint64
	WindowEnd    uint64
	SwapCount    uint64
	VolumeA      *big.Int
	VolumeB      *big.Int
	InA          *big.Int
	InB          *big.Int
	FeeA         *big.Int
	FeeB         *big.Int
	TaxA         *big.Int
	TaxB         *big.Int
	RevenueA     *big.Int
	RevenueB     *big.Int
	LastReserveA *big.Int
	LastReserveB *big.Int
	LastSequence uint64
}

func NewAccumulator(windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VolumeA:     big.NewInt(0),
		VolumeB:     big.NewInt(0),
		InA:         big.NewInt(0),
		InB:         big.NewInt(0),
		FeeA:        big.NewInt(0),
		FeeB:        big.NewInt(0),
		TaxA:        big.NewInt(0),
		TaxB:        big.NewInt(0),
		RevenueA:    big.NewInt(0),
		RevenueB:    big.NewInt(0),
	}
}

// AddSwap folds one swap into the window. Volume counts both legs, In only
// the input leg. Fees are denominated in the input token.
func (a *Accumulator) AddSwap(seq uint64, swap model.SwapEventData) error {
	amountIn, err := parseBigInt(swap.AmountIn)
	if err != nil {
		return err
	}
	amountOut, err := parseBigInt(swap.AmountOut)
	if err != nil {
		return err
	}
	fee, err := parseBigInt(swap.Fee)
	if err != nil {
		return err
	}
	tax, err := parseBigInt(swap.Tax)
	if err != nil {
		return err
	}
	revenue, err := parseBigInt(swap.Revenue)
	if err != nil {
		return err
	}
	reserveA, err := parseBigInt(swap.ReserveA)
	if err != nil {
		return err
	}
	reserveB, err := parseBigInt(swap.ReserveB)
	if err != nil {
		return err
	}

	direction, err := model.ParseDirection(swap.Direction)
	if err != nil {
		return err
	}
	switch direction {
	case model.DirectionAToB:
		a.VolumeA.Add(a.VolumeA, amountIn)
		a.VolumeB.Add(a.VolumeB, amountOut)
		a.InA.Add(a.InA, amountIn)
		a.FeeA.Add(a.FeeA, fee)
		a.TaxA.Add(a.TaxA, tax)
		a.RevenueA.Add(a.RevenueA, revenue)
	case model.DirectionBToA:
		a.VolumeB.Add(a.VolumeB, amountIn)
		a.VolumeA.Add(a.VolumeA, amountOut)
		a.InB.Add(a.InB, amountIn)
		a.FeeB.Add(a.FeeB, fee)
		a.TaxB.Add(a.TaxB, tax)
		a.RevenueB.Add(a.RevenueB, revenue)
	}

	if seq >= a.LastSequence {
		a.LastSequence = seq
		a.LastReserveA = reserveA
		a.LastReserveB = reserveB
	}
	a.SwapCount++
	return nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}
