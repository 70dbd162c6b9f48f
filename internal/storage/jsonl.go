package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"

	"welshStreet/internal/model"
)

// JsonlStorage appends journal records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Path returns the journal file location.
func (s *JsonlStorage) Path() string {
	return s.path
}

// PutLogBatch appends a batch of log records as JSON lines.
func (s *JsonlStorage) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	items := make([]interface{}, 0, len(logs))
	for _, record := range logs {
		items = append(items, record)
	}
	return s.appendJSON(ctx, items)
}

// PutTypedEvents appends decoded events as JSON lines.
func (s *JsonlStorage) PutTypedEvents(ctx context.Context, events []model.TypedEvent) error {
	items := make([]interface{}, 0, len(events))
	for _, event := range events {
		items = append(items, event)
	}
	return s.appendJSON(ctx, items)
}

// PutDecodeErrors appends decode failures as JSON lines.
func (s *JsonlStorage) PutDecodeErrors(ctx context.Context, failures []model.DecodeError) error {
	items := make([]interface{}, 0, len(failures))
	for _, failure := range failures {
		items = append(items, failure)
	}
	return s.appendJSON(ctx, items)
}

func (s *JsonlStorage) appendJSON(ctx context.Context, items []interface{}) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal %T: %w", item, err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

// ReadLogs returns every record whose raw line passes match. A nil match
// accepts all lines. A missing journal reads as empty.
func (s *JsonlStorage) ReadLogs(ctx context.Context, match func(line []byte) bool) ([]model.LogRecord, error) {
	var out []model.LogRecord
	err := s.scan(ctx, func(line []byte) error {
		if match != nil && !match(line) {
			return nil
		}
		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("decode log record: %w", err)
		}
		out = append(out, record)
		return nil
	})
	return out, err
}

// ReadTypedEvents reads decoded events written by PutTypedEvents, keeping
// each payload raw.
func (s *JsonlStorage) ReadTypedEvents(ctx context.Context) ([]model.TypedEventRecord, error) {
	var out []model.TypedEventRecord
	err := s.scan(ctx, func(line []byte) error {
		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("decode typed event: %w", err)
		}
		out = append(out, record)
		return nil
	})
	return out, err
}

// LastSequence returns the highest sequence number in the journal.
func (s *JsonlStorage) LastSequence(ctx context.Context) (uint64, error) {
	var last uint64
	err := s.scan(ctx, func(line []byte) error {
		if seq := gjson.GetBytes(line, "sequence").Uint(); seq > last {
			last = seq
		}
		return nil
	})
	return last, err
}

func (s *JsonlStorage) scan(ctx context.Context, fn func(line []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return fmt.Errorf("invalid journal line: %.40s", line)
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan journal: %w", err)
	}
	return nil
}
