package detector

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
	"github.com/oshokin/activity-monitor/internal/sensor"
)

// Focus statuses stored in the StateRecord.
const (
	FocusEnabled  = "enabled"
	FocusDisabled = "disabled"
)

// Appender is the write side of the event queue.
type Appender interface {
	Append(ctx context.Context, event *domain.Event) error
}

// Detector decides which readings are reportable transitions.
// It is driven from a single goroutine and holds no locks.
type Detector struct {
	queue          Appender
	ignore         *IgnoreSet
	maxTitleLength int
}

// New creates a detector appending to queue.
func New(queue Appender, ignore *IgnoreSet, maxTitleLength int) *Detector {
	d := &Detector{queue: queue}
	d.SetFilters(ignore, maxTitleLength)

	return d
}

// SetFilters replaces the ignore set and the title cap.
func (d *Detector) SetFilters(ignore *IgnoreSet, maxTitleLength int) {
	d.ignore = ignore
	d.maxTitleLength = maxTitleLength
}

// Ignored reports whether app belongs to the ignore set.
func (d *Detector) Ignored(app string) bool {
	return d.ignore.Contains(app)
}

// ActiveApp reports a switch to a new, non-ignored foreground application.
func (d *Detector) ActiveApp(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[string],
	now time.Time,
) []*domain.Event {
	app := reading.Value
	if !reading.Present || app == "" || d.Ignored(app) || app == state.LastApp {
		return nil
	}

	event := d.emit(ctx, domain.EventApp, "Switched to "+app, now)
	if event == nil {
		return nil
	}

	state.LastApp = app

	return []*domain.Event{event}
}

// WindowTitleEnabled reports whether window titles should be sampled: the
// current foreground app must be known and not ignored. When the app reading
// is absent the last reported app decides.
func (d *Detector) WindowTitleEnabled(state *domain.StateRecord, app sensor.Reading[string]) bool {
	current := state.LastApp
	if app.Present && app.Value != "" {
		current = app.Value
	}

	return current != "" && !d.Ignored(current)
}

// WindowTitle reports a new, reasonably short window title.
func (d *Detector) WindowTitle(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[string],
	now time.Time,
) []*domain.Event {
	title := reading.Value
	if !reading.Present || title == "" || title == state.LastWindow {
		return nil
	}

	// The cap counts characters, not bytes.
	if d.maxTitleLength > 0 && utf8.RuneCountInString(title) >= d.maxTitleLength {
		return nil
	}

	event := d.emit(ctx, domain.EventWindow, "Working on: "+title, now)
	if event == nil {
		return nil
	}

	state.LastWindow = title

	return []*domain.Event{event}
}

// FocusMode reports a change of the notification-suppression status.
func (d *Detector) FocusMode(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[bool],
	now time.Time,
) []*domain.Event {
	if !reading.Present {
		return nil
	}

	status := FocusDisabled
	if reading.Value {
		status = FocusEnabled
	}

	if status == state.LastFocus {
		return nil
	}

	event := d.emit(ctx, domain.EventFocus, "Focus Mode "+status, now)
	if event == nil {
		return nil
	}

	state.LastFocus = status

	return []*domain.Event{event}
}

// WiFi reports an association with a different wireless network.
func (d *Detector) WiFi(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[string],
	now time.Time,
) []*domain.Event {
	ssid := reading.Value
	if !reading.Present || ssid == "" || ssid == state.LastWiFi {
		return nil
	}

	event := d.emit(ctx, domain.EventWiFi, "Connected to: "+ssid, now)
	if event == nil {
		return nil
	}

	state.LastWiFi = ssid

	return []*domain.Event{event}
}

// Bluetooth reports every accessory that appeared since the previous sample.
// Departures are not reported. The stored set becomes the current set once
// every arrival is queued; when the queue fails, it only gains the arrivals
// queued so far.
func (d *Detector) Bluetooth(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[[]string],
	now time.Time,
) []*domain.Event {
	if !reading.Present {
		return nil
	}

	known := make(map[string]struct{}, len(state.LastBluetooth))
	for _, device := range state.LastBluetooth {
		known[device] = struct{}{}
	}

	var (
		events []*domain.Event
		queued []string
	)

	for _, device := range reading.Value {
		if _, ok := known[device]; ok {
			continue
		}

		// Duplicates within one reading are reported once.
		known[device] = struct{}{}

		event := d.emit(ctx, domain.EventBluetooth, device+" connected", now)
		if event == nil {
			// Remember what was queued so only the missing arrivals are retried.
			state.LastBluetooth = append(slices.Clone(state.LastBluetooth), queued...)

			return events
		}

		events = append(events, event)
		queued = append(queued, device)
	}

	state.LastBluetooth = slices.Clone(reading.Value)
	if state.LastBluetooth == nil {
		state.LastBluetooth = []string{}
	}

	return events
}

// Meeting drives the Idle/InMeeting state machine of the conferencing signal.
func (d *Detector) Meeting(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[string],
	now time.Time,
) []*domain.Event {
	if !reading.Present {
		return nil
	}

	process := reading.Value

	switch {
	case process != "" && !state.InMeeting():
		event := d.emit(ctx, domain.EventMeeting, fmt.Sprintf("Meeting started (%s)", process), now)
		if event == nil {
			return nil
		}

		state.Meeting = &domain.Meeting{
			Process: process,
			Start:   now,
		}

		return []*domain.Event{event}
	case process == "" && state.InMeeting():
		minutes := max(int(now.Sub(state.Meeting.Start)/time.Minute), 0)
		description := fmt.Sprintf("Meeting ended (%s) - %d mins", state.Meeting.Process, minutes)

		event := d.emit(ctx, domain.EventMeeting, description, now)
		if event == nil {
			return nil
		}

		state.Meeting = nil

		return []*domain.Event{event}
	default:
		return nil
	}
}

// emit appends a new event; nil means the queue rejected it.
func (d *Detector) emit(ctx context.Context, eventType domain.EventType, description string, now time.Time) *domain.Event {
	event := domain.NewEvent(eventType, description, now)

	if err := d.queue.Append(ctx, event); err != nil {
		logger.ErrorKV(ctx, "Failed to queue event", "type", eventType, "description", description, "error", err)
		return nil
	}

	logger.DebugKV(ctx, "Event queued", "type", eventType, "description", description)

	return event
}
