package model

import "time"

// WindowMetrics stores aggregated swap activity for one time window.
// Amount fields are human-readable decimals scaled by token decimals.
type WindowMetrics struct {
	Exchange       string    `json:"exchange"`
	WindowSizeSecs int64     `json:"window_size_seconds"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	SwapCount      uint64    `json:"swap_count"`
	VolumeA        string    `json:"volume_a"`
	VolumeB        string    `json:"volume_b"`
	FeeA           string    `json:"fee_a"`
	FeeB           string    `json:"fee_b"`
	TaxA           string    `json:"tax_a"`
	TaxB           string    `json:"tax_b"`
	RevenueA       string    `json:"revenue_a"`
	RevenueB       string    `json:"revenue_b"`
	ClosePrice     *string   `json:"close_price,omitempty"`
	FeeRateA       *string   `json:"fee_rate_a,omitempty"`
	FeeRateB       *string   `json:"fee_rate_b,omitempty"`
}
