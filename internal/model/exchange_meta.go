package model

// TokenMeta captures display metadata of a token ledger.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// ExchangeMeta describes the pool an event belongs to.
type ExchangeMeta struct {
	TokenA TokenMeta `json:"token_a"`
	TokenB TokenMeta `json:"token_b"`
	Credit TokenMeta `json:"credit"`
}
