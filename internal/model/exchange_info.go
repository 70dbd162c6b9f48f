package model

// ExchangeInfo is the read-only pool snapshot returned by get-exchange-info.
type ExchangeInfo struct {
	AvailA   uint64 `json:"avail-a"`
	AvailB   uint64 `json:"avail-b"`
	Fee      uint64 `json:"fee"`
	LockedA  uint64 `json:"locked-a"`
	LockedB  uint64 `json:"locked-b"`
	ReserveA uint64 `json:"reserve-a"`
	ReserveB uint64 `json:"reserve-b"`
	Revenue  uint64 `json:"revenue"`
	Tax      uint64 `json:"tax"`
}
