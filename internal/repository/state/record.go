package state

import (
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/repository/fsutil"
)

// Focus values as stored by the domain.
const (
	focusEnabled  = "enabled"
	focusDisabled = "disabled"
)

// record is the on-disk layout of the state file.
type record struct {
	LastApp          *string  `json:"last_app"`
	LastWindow       *string  `json:"last_window"`
	LastFocus        *bool    `json:"last_focus"`
	LastWiFi         *string  `json:"last_wifi"`
	LastBluetooth    []string `json:"last_bluetooth"`
	LastBatteryAlert float64  `json:"last_battery_alert"`
	LastPostureAlert float64  `json:"last_posture_alert"`
	ActiveStartTime  float64  `json:"active_start_time"`
	MeetingProcess   *string  `json:"meeting_process"`
	MeetingStart     *float64 `json:"meeting_start"`
}

// fromRecord converts the on-disk layout into the domain model.
// A meeting is restored only when both its process and start are present.
func fromRecord(rec *record) *domain.StateRecord {
	state := &domain.StateRecord{
		LastApp:          deref(rec.LastApp),
		LastWindow:       deref(rec.LastWindow),
		LastWiFi:         deref(rec.LastWiFi),
		LastBluetooth:    rec.LastBluetooth,
		LastBatteryAlert: fsutil.FromEpoch(rec.LastBatteryAlert),
		LastPostureAlert: fsutil.FromEpoch(rec.LastPostureAlert),
		ActiveStart:      fsutil.FromEpoch(rec.ActiveStartTime),
	}

	if state.LastBluetooth == nil {
		state.LastBluetooth = []string{}
	}

	if rec.LastFocus != nil {
		state.LastFocus = focusDisabled
		if *rec.LastFocus {
			state.LastFocus = focusEnabled
		}
	}

	if rec.MeetingProcess != nil && *rec.MeetingProcess != "" && rec.MeetingStart != nil {
		state.Meeting = &domain.Meeting{
			Process: *rec.MeetingProcess,
			Start:   fsutil.FromEpoch(*rec.MeetingStart),
		}
	}

	return state
}

// toRecord converts the domain model into the on-disk layout.
func toRecord(state *domain.StateRecord) *record {
	rec := &record{
		LastApp:          ref(state.LastApp),
		LastWindow:       ref(state.LastWindow),
		LastWiFi:         ref(state.LastWiFi),
		LastBluetooth:    state.LastBluetooth,
		LastBatteryAlert: fsutil.ToEpoch(state.LastBatteryAlert),
		LastPostureAlert: fsutil.ToEpoch(state.LastPostureAlert),
		ActiveStartTime:  fsutil.ToEpoch(state.ActiveStart),
	}

	if rec.LastBluetooth == nil {
		rec.LastBluetooth = []string{}
	}

	if state.LastFocus != "" {
		enabled := state.LastFocus == focusEnabled
		rec.LastFocus = &enabled
	}

	if state.Meeting != nil {
		process := state.Meeting.Process
		start := fsutil.ToEpoch(state.Meeting.Start)
		rec.MeetingProcess = &process
		rec.MeetingStart = &start
	}

	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
