package activity

// Signal names one monitored facet of host state.
type Signal string

// Monitored signals.
const (
	SignalActiveApp   Signal = "active_app"
	SignalWindowTitle Signal = "window_title"
	SignalFocusMode   Signal = "focus_mode"
	SignalWiFi        Signal = "wifi_ssid"
	SignalBluetooth   Signal = "bluetooth_devices"
	SignalBattery     Signal = "battery_level"
	SignalMeeting     Signal = "meeting_process"
)

// EventType classifies a queued event.
type EventType string

// Event types, one per reportable signal.
const (
	EventApp       EventType = "app"
	EventWindow    EventType = "window"
	EventFocus     EventType = "focus"
	EventWiFi      EventType = "wifi"
	EventBluetooth EventType = "bluetooth"
	EventMeeting   EventType = "meeting"
)
