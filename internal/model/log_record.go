package model

import (
	"encoding/json"
)

// LogRecord is one journal entry: an ABI-encoded exchange or token event.
type LogRecord struct {
	Sequence   uint64   `json:"sequence"`
	TxHash     string   `json:"tx_hash"`
	LogIndex   uint64   `json:"log_index"`
	Address    string   `json:"address"`
	Topics     []string `json:"topics"`
	Data       string   `json:"data"`
	Timestamp  uint64   `json:"timestamp"`
	RecordedAt string   `json:"recorded_at"`
}

// Topic0 returns the event signature hash, or "" for an anonymous record.
func (lr LogRecord) Topic0() string {
	if len(lr.Topics) == 0 {
		return ""
	}
	return lr.Topics[0]
}

// MarshalJSON keeps Topics a JSON array even when empty.
func (lr LogRecord) MarshalJSON() ([]byte, error) {
	type Alias LogRecord
	if lr.Topics == nil {
		lr.Topics = []string{}
	}
	return json.Marshal(Alias(lr))
}
