package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
	"github.com/oshokin/activity-monitor/internal/repository/fsutil"
)

// corruptSuffix is appended to a queue file that cannot be decoded.
const corruptSuffix = ".corrupt"

// FileQueue keeps the queue as a JSON list. The file is read before every
// mutation and replaced atomically after it.
type FileQueue struct {
	path      string
	maxLength int
	mu        sync.Mutex
}

// eventRecord is the on-disk layout of one queued event.
type eventRecord struct {
	ID            string  `json:"id,omitempty"`
	Time          string  `json:"time"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	TimestampFull float64 `json:"timestamp_full"`
}

// NewFileQueue creates a file-backed queue at path.
func NewFileQueue(path string, maxLength int) *FileQueue {
	return &FileQueue{
		path:      filepath.Clean(path),
		maxLength: maxLength,
	}
}

// Append adds event at the tail of the queue.
func (q *FileQueue) Append(ctx context.Context, event *domain.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.read(ctx)
	if err != nil {
		return err
	}

	records = append(records, toEventRecord(event))
	if q.maxLength > 0 && len(records) > q.maxLength {
		records = records[len(records)-q.maxLength:]
	}

	return q.write(records)
}

// List returns the queued events in arrival order.
func (q *FileQueue) List(ctx context.Context) ([]*domain.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.read(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]*domain.Event, 0, len(records))
	for i := range records {
		events = append(events, fromEventRecord(&records[i]))
	}

	return events, nil
}

// Len returns the number of queued events.
func (q *FileQueue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	records, err := q.read(ctx)
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

// Clear empties the queue.
func (q *FileQueue) Clear(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.write(nil)
}

// Close is a no-op for the file backend.
func (q *FileQueue) Close() error {
	return nil
}

// read loads the queue. An undecodable file is moved aside to
// <path>.corrupt and the queue restarts empty.
func (q *FileQueue) read(ctx context.Context) ([]eventRecord, error) {
	contents, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read queue file: %w", err)
	}

	var records []eventRecord
	if err = json.Unmarshal(contents, &records); err != nil {
		aside := q.path + corruptSuffix

		logger.ErrorKV(ctx, "Queue file is corrupt, starting empty", "path", q.path, "moved_to", aside, "error", err)

		if renameErr := os.Rename(q.path, aside); renameErr != nil {
			return nil, fmt.Errorf("move corrupt queue file: %w", renameErr)
		}

		return nil, nil
	}

	return records, nil
}

func (q *FileQueue) write(records []eventRecord) error {
	if records == nil {
		records = []eventRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	if err = fsutil.WriteFileAtomic(q.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}

	return nil
}

func toEventRecord(event *domain.Event) eventRecord {
	return eventRecord{
		ID:            event.ID,
		Time:          event.Label,
		Type:          string(event.Type),
		Description:   event.Description,
		TimestampFull: fsutil.ToEpoch(event.Timestamp),
	}
}

func fromEventRecord(rec *eventRecord) *domain.Event {
	return &domain.Event{
		ID:          rec.ID,
		Label:       rec.Time,
		Type:        domain.EventType(rec.Type),
		Description: rec.Description,
		Timestamp:   fsutil.FromEpoch(rec.TimestampFull),
	}
}
