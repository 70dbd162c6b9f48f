package model

import "encoding/json"

// TypedEventRecord is the JSON form of a TypedEvent with the payload left raw,
// used when reading decoded events back for aggregation.
type TypedEventRecord struct {
	Sequence  uint64          `json:"sequence"`
	TxHash    string          `json:"tx_hash"`
	LogIndex  uint64          `json:"log_index"`
	Address   string          `json:"address"`
	EventName string          `json:"event_name"`
	Timestamp uint64          `json:"timestamp"`
	Decoded   json.RawMessage `json:"decoded"`
	Meta      ExchangeMeta    `json:"meta"`
	Raw       *RawLogRef      `json:"raw,omitempty"`
}
