package model

// Amounts are decimal strings in token base units.

// BootstrapEventData is the decoded Bootstrap event payload.
type BootstrapEventData struct {
	Owner    string `json:"owner"`
	AmountA  string `json:"amount_a"`
	AmountB  string `json:"amount_b"`
	MintedLP string `json:"minted_lp"`
}

// SwapEventData is the decoded Swap event payload.
type SwapEventData struct {
	Caller    string `json:"caller"`
	Direction string `json:"direction"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Fee       string `json:"fee"`
	Tax       string `json:"tax"`
	Revenue   string `json:"revenue"`
	ReserveA  string `json:"reserve_a"`
	ReserveB  string `json:"reserve_b"`
}

// LiquidityEventData is the decoded Liquidity event payload.
type LiquidityEventData struct {
	Provider string `json:"provider"`
	Action   string `json:"action"`
	AmountA  string `json:"amount_a"`
	AmountB  string `json:"amount_b"`
	LPAmount string `json:"lp_amount"`
}

// FeeUpdatedEventData is the decoded FeeUpdated event payload.
type FeeUpdatedEventData struct {
	Owner       string `json:"owner"`
	FeeBps      uint64 `json:"fee_bps"`
	TaxShareBps uint64 `json:"tax_share_bps"`
}

// TransferEventData is the decoded token Transfer event payload. Mints carry
// the zero address as From.
type TransferEventData struct {
	Token string `json:"token"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}
