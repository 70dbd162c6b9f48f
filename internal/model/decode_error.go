package model

// DecodeError records a journal line that could not be decoded.
type DecodeError struct {
	Sequence uint64 `json:"sequence"`
	TxHash   string `json:"tx_hash"`
	LogIndex uint64 `json:"log_index"`
	Address  string `json:"address"`
	Topic0   string `json:"topic0"`
	Error    string `json:"error"`
}
