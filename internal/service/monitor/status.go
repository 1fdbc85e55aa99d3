package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/repository/state"
)

// Status prints the persisted StateRecord and the queue length to w.
func Status(ctx context.Context, opts *Options, w io.Writer) error {
	rt, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer rt.close()

	rec, err := rt.states.Load(ctx)

	switch {
	case errors.Is(err, state.ErrNotFound):
		rec = nil
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	}

	queued, err := rt.queue.Len(ctx)
	if err != nil {
		return fmt.Errorf("read queue: %w", err)
	}

	_, err = io.WriteString(w, FormatStatus(rt.device, rec, queued, time.Now()))

	return err
}

// FormatStatus renders a StateRecord for humans. A nil record means the
// monitor has not run yet.
func FormatStatus(device string, rec *domain.StateRecord, queued int, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Device:          %s\n", device)
	fmt.Fprintf(&b, "Queued events:   %d\n", queued)

	if rec == nil {
		b.WriteString("State:           not recorded yet\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Last app:        %s\n", orNone(rec.LastApp))
	fmt.Fprintf(&b, "Last window:     %s\n", orNone(rec.LastWindow))
	fmt.Fprintf(&b, "Focus mode:      %s\n", orNone(rec.LastFocus))
	fmt.Fprintf(&b, "Wi-Fi:           %s\n", orNone(rec.LastWiFi))
	fmt.Fprintf(&b, "Bluetooth:       %s\n", orNone(strings.Join(rec.LastBluetooth, ", ")))

	if rec.InMeeting() {
		fmt.Fprintf(&b, "Meeting:         %s for %s\n",
			rec.Meeting.Process, now.Sub(rec.Meeting.Start).Truncate(time.Minute))
	} else {
		b.WriteString("Meeting:         none\n")
	}

	if !rec.ActiveStart.IsZero() {
		fmt.Fprintf(&b, "Active for:      %s\n", now.Sub(rec.ActiveStart).Truncate(time.Minute))
	}

	fmt.Fprintf(&b, "Battery alert:   %s\n", formatTime(rec.LastBatteryAlert))
	fmt.Fprintf(&b, "Posture alert:   %s\n", formatTime(rec.LastPostureAlert))

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}

	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return t.Format(time.DateTime)
}
