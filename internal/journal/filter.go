package journal

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Filter selects raw journal lines by topic0 and sequence without a full
// JSON decode. The zero Filter matches every line.
type Filter struct {
	Topics      map[string]struct{}
	MinSequence uint64
	Since       uint64
}

// NewFilter resolves event names into topic hashes using d.
func NewFilter(d *Decoder, events []string) (Filter, error) {
	filter := Filter{}
	for _, name := range events {
		topic, ok := d.TopicFor(name)
		if !ok {
			return Filter{}, &UnknownEventError{Name: name}
		}
		if filter.Topics == nil {
			filter.Topics = make(map[string]struct{})
		}
		filter.Topics[topic] = struct{}{}
	}
	return filter, nil
}

// Match reports whether line passes the filter.
func (f Filter) Match(line []byte) bool {
	if f.MinSequence > 0 && gjson.GetBytes(line, "sequence").Uint() < f.MinSequence {
		return false
	}
	if f.Since > 0 && gjson.GetBytes(line, "timestamp").Uint() < f.Since {
		return false
	}
	if len(f.Topics) == 0 {
		return true
	}
	_, ok := f.Topics[strings.ToLower(gjson.GetBytes(line, "topics.0").String())]
	return ok
}

// UnknownEventError is returned for event names no ABI defines.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string {
	return "unknown event: " + e.Name
}
