package stats

import (
	"encoding/json"
	"fmt"

	"welshStreet/internal/model"
)

// EventsFromRecords turns typed event records read back from disk into
// events the aggregator understands. Swap payloads are decoded; every other
// payload stays raw.
func EventsFromRecords(records []model.TypedEventRecord) ([]model.TypedEvent, error) {
	events := make([]model.TypedEvent, 0, len(records))
	for _, record := range records {
		event := model.TypedEvent{
			Sequence:  record.Sequence,
			TxHash:    record.TxHash,
			LogIndex:  record.LogIndex,
			Address:   record.Address,
			EventName: record.EventName,
			Timestamp: record.Timestamp,
			Decoded:   record.Decoded,
			Meta:      record.Meta,
			Raw:       record.Raw,
		}
		if record.EventName == "Swap" {
			var swap model.SwapEventData
			if err := json.Unmarshal(record.Decoded, &swap); err != nil {
				return nil, fmt.Errorf("decode swap %d: %w", record.Sequence, err)
			}
			event.Decoded = swap
		}
		events = append(events, event)
	}
	return events, nil
}
