package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
)

// Queue is the ordered sequence of events awaiting delivery.
type Queue interface {
	// Append adds the event at the tail, evicting from the head past the cap.
	Append(ctx context.Context, event *domain.Event) error
	// List returns every queued event in arrival order.
	List(ctx context.Context) ([]*domain.Event, error)
	// Len returns the number of queued events.
	Len(ctx context.Context) (int, error)
	// Clear removes every queued event.
	Clear(ctx context.Context) error
	// Close releases the backend.
	Close() error
}

// errUnknownBackend is returned for an unsupported backend name.
var errUnknownBackend = errors.New("unknown queue backend")

// Open creates the queue backend selected by name.
// A non-positive maxLength disables the cap.
//
//nolint:ireturn // Callers depend on the interface, the backend is a setting.
func Open(backend, path string, maxLength int) (Queue, error) {
	switch backend {
	case config.QueueBackendFile, "":
		return NewFileQueue(path, maxLength), nil
	case config.QueueBackendSQLite:
		return NewSQLiteQueue(path, maxLength)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, backend)
	}
}
