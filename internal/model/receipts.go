package model

import (
	"encoding/json"
	"fmt"
)

// BootstrapReceipt is returned by provide-initial-liquidity.
type BootstrapReceipt struct {
	AddedA   uint64 `json:"added-a"`
	AddedB   uint64 `json:"added-b"`
	MintedLP uint64 `json:"minted-lp"`
}

// MintReceipt is returned by street-mint. Block is the journal sequence that
// recorded the mint; epochs are not tracked, so Epoch is always 0.
type MintReceipt struct {
	Amount uint64 `json:"amount"`
	Block  uint64 `json:"block"`
	Epoch  uint64 `json:"epoch"`
}

// LiquidityReceipt is returned by deposits, withdrawals and locks after bootstrap.
type LiquidityReceipt struct {
	AmountA  uint64 `json:"amount-a"`
	AmountB  uint64 `json:"amount-b"`
	MintedLP uint64 `json:"minted-lp,omitempty"`
	BurnedLP uint64 `json:"burned-lp,omitempty"`
}

// Direction is the input side of a swap.
type Direction uint8

const (
	DirectionAToB Direction = iota
	DirectionBToA
)

func (d Direction) String() string {
	switch d {
	case DirectionAToB:
		return "a-b"
	case DirectionBToA:
		return "b-a"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "a-b" or "b-a".
func ParseDirection(input string) (Direction, error) {
	switch input {
	case "a-b", "ab", "a":
		return DirectionAToB, nil
	case "b-a", "ba", "b":
		return DirectionBToA, nil
	default:
		return 0, fmt.Errorf("invalid swap direction: %s", input)
	}
}

// SwapReceipt reports a completed swap. Fee and Revenue are denominated in
// the input token, so the JSON keys carry the input side (fee-a/rev-a for
// swap-a-b, fee-b/rev-b for swap-b-a).
type SwapReceipt struct {
	Direction Direction
	AmountIn  uint64
	AmountOut uint64
	Fee       uint64
	Revenue   uint64
	Tax       uint64
	ResA      uint64
	ResANew   uint64
	ResB      uint64
	ResBNew   uint64
}

type swapReceiptAB struct {
	AmountIn  uint64 `json:"amount-in"`
	AmountOut uint64 `json:"amount-out"`
	FeeA      uint64 `json:"fee-a"`
	ResA      uint64 `json:"res-a"`
	ResANew   uint64 `json:"res-a-new"`
	ResB      uint64 `json:"res-b"`
	ResBNew   uint64 `json:"res-b-new"`
	RevA      uint64 `json:"rev-a"`
}

type swapReceiptBA struct {
	AmountIn  uint64 `json:"amount-in"`
	AmountOut uint64 `json:"amount-out"`
	FeeB      uint64 `json:"fee-b"`
	ResA      uint64 `json:"res-a"`
	ResANew   uint64 `json:"res-a-new"`
	ResB      uint64 `json:"res-b"`
	ResBNew   uint64 `json:"res-b-new"`
	RevB      uint64 `json:"rev-b"`
}

// MarshalJSON encodes the receipt as the swap result tuple.
func (r SwapReceipt) MarshalJSON() ([]byte, error) {
	if r.Direction == DirectionBToA {
		return json.Marshal(swapReceiptBA{
			AmountIn:  r.AmountIn,
			AmountOut: r.AmountOut,
			FeeB:      r.Fee,
			ResA:      r.ResA,
			ResANew:   r.ResANew,
			ResB:      r.ResB,
			ResBNew:   r.ResBNew,
			RevB:      r.Revenue,
		})
	}
	return json.Marshal(swapReceiptAB{
		AmountIn:  r.AmountIn,
		AmountOut: r.AmountOut,
		FeeA:      r.Fee,
		ResA:      r.ResA,
		ResANew:   r.ResANew,
		ResB:      r.ResB,
		ResBNew:   r.ResBNew,
		RevA:      r.Revenue,
	})
}

// UnmarshalJSON infers the direction from which fee key is present. Tax is
// not part of the tuple and is recomputed as Fee - Revenue.
func (r *SwapReceipt) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["fee-b"]; ok {
		var ba swapReceiptBA
		if err := json.Unmarshal(data, &ba); err != nil {
			return err
		}
		*r = SwapReceipt{
			Direction: DirectionBToA,
			AmountIn:  ba.AmountIn,
			AmountOut: ba.AmountOut,
			Fee:       ba.FeeB,
			Revenue:   ba.RevB,
			ResA:      ba.ResA,
			ResANew:   ba.ResANew,
			ResB:      ba.ResB,
			ResBNew:   ba.ResBNew,
		}
	} else {
		var ab swapReceiptAB
		if err := json.Unmarshal(data, &ab); err != nil {
			return err
		}
		*r = SwapReceipt{
			Direction: DirectionAToB,
			AmountIn:  ab.AmountIn,
			AmountOut: ab.AmountOut,
			Fee:       ab.FeeA,
			Revenue:   ab.RevA,
			ResA:      ab.ResA,
			ResANew:   ab.ResANew,
			ResB:      ab.ResB,
			ResBNew:   ab.ResBNew,
		}
	}
	if r.Revenue > r.Fee {
		return fmt.Errorf("swap receipt: revenue %d exceeds fee %d", r.Revenue, r.Fee)
	}
	r.Tax = r.Fee - r.Revenue
	return nil
}
