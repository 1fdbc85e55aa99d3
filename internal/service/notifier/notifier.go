package notifier

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
)

// Sink delivers one text payload.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// Queue is the part of the event queue a flush needs.
type Queue interface {
	List(ctx context.Context) ([]*domain.Event, error)
	Clear(ctx context.Context) error
}

// Options configures message rendering and the failure policy.
type Options struct {
	// Preamble opens every payload.
	Preamble string
	// DropOnFailure clears the queue even when delivery fails.
	DropOnFailure bool
}

// Notifier delivers immediate alerts and queued batches.
type Notifier struct {
	sink  Sink
	queue Queue
	opts  Options
}

// New creates a notifier.
func New(sink Sink, queue Queue, opts Options) *Notifier {
	return &Notifier{
		sink:  sink,
		queue: queue,
		opts:  opts,
	}
}

// RenderPreamble substitutes the device label into a preamble template.
func RenderPreamble(template, device string) string {
	return strings.ReplaceAll(template, "%s", device)
}

// Alert sends text immediately, bypassing the queue.
func (n *Notifier) Alert(ctx context.Context, text string) error {
	message := text
	if n.opts.Preamble != "" {
		message = n.opts.Preamble + ": " + text
	}

	if err := n.sink.Send(ctx, message); err != nil {
		logger.ErrorKV(ctx, "Failed to send alert", "error", err)
		return err
	}

	return nil
}

// Flush sends every queued event as one message and returns how many events
// were delivered. An empty queue sends nothing. On failure the queue is kept
// for the next flush unless DropOnFailure is set.
func (n *Notifier) Flush(ctx context.Context) (int, error) {
	events, err := n.queue.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read queue: %w", err)
	}

	if len(events) == 0 {
		return 0, nil
	}

	if err = n.sink.Send(ctx, FormatBatch(n.opts.Preamble, events)); err != nil {
		logger.ErrorKV(ctx, "Failed to send batch",
			"events", len(events),
			"dropped", n.opts.DropOnFailure,
			"error", err)

		if n.opts.DropOnFailure {
			if clearErr := n.queue.Clear(ctx); clearErr != nil {
				logger.ErrorKV(ctx, "Failed to clear queue", "error", clearErr)
			}
		}

		return 0, err
	}

	if err = n.queue.Clear(ctx); err != nil {
		return len(events), fmt.Errorf("clear queue: %w", err)
	}

	logger.InfoKV(ctx, "Batch sent", "events", len(events))

	return len(events), nil
}

// FormatBatch renders events as a digest: a header with the label range
// followed by one bullet per event in arrival order.
func FormatBatch(preamble string, events []*domain.Event) string {
	if len(events) == 0 {
		return ""
	}

	var b strings.Builder

	if preamble != "" {
		b.WriteString(preamble)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "📊 Activity Update (%s-%s):", events[0].Label, events[len(events)-1].Label)

	for _, e := range events {
		fmt.Fprintf(&b, "\n• %s - %s", e.Label, e.Description)
	}

	return b.String()
}
