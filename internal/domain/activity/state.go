package activity

import (
	"slices"
	"time"
)

// Meeting is an open conferencing session.
type Meeting struct {
	// Process is the display name of the detected conferencing app.
	Process string
	// Start is when the session was first detected.
	Start time.Time
}

// StateRecord is the durable memory of the monitor between ticks and restarts.
// A nil Meeting means no session is open, so process and start time are always
// set together.
type StateRecord struct {
	// LastApp is the last reported foreground application.
	LastApp string
	// LastWindow is the last reported window title.
	LastWindow string
	// LastFocus is the last reported focus mode status ("enabled"/"disabled").
	LastFocus string
	// LastWiFi is the last reported network name.
	LastWiFi string
	// LastBluetooth is the full set of accessories seen on the previous sample.
	LastBluetooth []string
	// LastBatteryAlert is when the low-power alert last fired.
	LastBatteryAlert time.Time
	// LastPostureAlert is when the continuous-activity alert last fired.
	LastPostureAlert time.Time
	// ActiveStart is the start of the current continuous-activity window.
	ActiveStart time.Time
	// Meeting is the open conferencing session, if any.
	Meeting *Meeting
}

// NewStateRecord returns the first-run defaults: nothing observed yet and the
// continuous-activity window starting now.
func NewStateRecord(now time.Time) *StateRecord {
	return &StateRecord{
		LastBluetooth: []string{},
		ActiveStart:   now,
	}
}

// InMeeting reports whether a conferencing session is open.
func (s *StateRecord) InMeeting() bool {
	return s.Meeting != nil
}

// Clone returns a deep copy of the record.
func (s *StateRecord) Clone() *StateRecord {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastBluetooth = slices.Clone(s.LastBluetooth)

	if s.Meeting != nil {
		meeting := *s.Meeting
		cloned.Meeting = &meeting
	}

	return &cloned
}
