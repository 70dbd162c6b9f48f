package model

// TokenSnapshot is the persisted state of one token ledger.
type TokenSnapshot struct {
	Name     string            `json:"name"`
	Symbol   string            `json:"symbol"`
	Decimals uint8             `json:"decimals"`
	Owner    string            `json:"owner"`
	Supply   uint64            `json:"supply"`
	Balances map[string]uint64 `json:"balances"`
}

// PoolSnapshot is the persisted reserve ledger of the exchange.
type PoolSnapshot struct {
	Initialized    bool   `json:"initialized"`
	Owner          string `json:"owner"`
	ReserveA       uint64 `json:"reserve_a"`
	ReserveB       uint64 `json:"reserve_b"`
	LockedA        uint64 `json:"locked_a"`
	LockedB        uint64 `json:"locked_b"`
	FeeBps         uint64 `json:"fee_bps"`
	TaxShareBps    uint64 `json:"tax_share_bps"`
	TaxAccrued     uint64 `json:"tax_accrued"`
	RevenueAccrued uint64 `json:"revenue_accrued"`
}

// DeploymentSnapshot is everything needed to resume a deployment.
type DeploymentSnapshot struct {
	Sequence  uint64        `json:"sequence"`
	TokenA    TokenSnapshot `json:"token_a"`
	TokenB    TokenSnapshot `json:"token_b"`
	Credit    TokenSnapshot `json:"credit"`
	Pool      PoolSnapshot  `json:"pool"`
	UpdatedAt string        `json:"updated_at"`
}
