package sensor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	activeAppScript = `tell application "System Events" to get name of first application process whose frontmost is true`

	windowTitleScript = `
tell application "System Events"
	set frontApp to first application process whose frontmost is true
	tell frontApp
		if exists (1st window whose value of attribute "AXMain" is true) then
			return value of attribute "AXTitle" of (1st window whose value of attribute "AXMain" is true)
		end if
	end tell
end tell`

	airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"
)

// MacProbes reads host state through the stock macOS command-line tools.
type MacProbes struct {
	run     Runner
	meeting *MeetingDetector
}

// NewMacProbes creates probes that execute commands through run.
func NewMacProbes(run Runner, meeting *MeetingDetector) *MacProbes {
	if run == nil {
		run = ExecRunner
	}

	return &MacProbes{
		run:     run,
		meeting: meeting,
	}
}

// ActiveApp returns the frontmost application process name.
func (p *MacProbes) ActiveApp(ctx context.Context) (string, error) {
	return p.osascript(ctx, activeAppScript)
}

// WindowTitle returns the title of the main window of the frontmost application.
func (p *MacProbes) WindowTitle(ctx context.Context) (string, error) {
	return p.osascript(ctx, windowTitleScript)
}

// FocusMode reports whether a Focus mode is on. The controlcenter default only
// exists while the Focus status item is shown, so a successful read counts as on.
func (p *MacProbes) FocusMode(ctx context.Context) (bool, error) {
	out, err := p.run(ctx, "defaults", "read", "com.apple.controlcenter", "NSStatusItem Visible FocusModes")
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.Contains(string(out), "1"), nil
	}

	return false, fmt.Errorf("read focus defaults: %w", err)
}

// WiFiSSID returns the name of the associated wireless network.
func (p *MacProbes) WiFiSSID(ctx context.Context) (string, error) {
	out, err := p.run(ctx, airportPath, "-I")
	if err != nil {
		return "", fmt.Errorf("run airport: %w", err)
	}

	return ParseAirportSSID(string(out))
}

// BluetoothDevices returns the names of the connected accessories.
func (p *MacProbes) BluetoothDevices(ctx context.Context) ([]string, error) {
	out, err := p.run(ctx, "system_profiler", "SPBluetoothDataType", "-json")
	if err != nil {
		return nil, fmt.Errorf("run system_profiler: %w", err)
	}

	return ParseBluetoothJSON(out)
}

// BatteryLevel returns the battery charge percentage.
func (p *MacProbes) BatteryLevel(ctx context.Context) (int, error) {
	out, err := p.run(ctx, "pmset", "-g", "batt")
	if err != nil {
		return 0, fmt.Errorf("run pmset: %w", err)
	}

	return ParseBatteryPercent(string(out))
}

// MeetingProcess returns the running conferencing app, or "" when none.
func (p *MacProbes) MeetingProcess(ctx context.Context) (string, error) {
	return p.meeting.Detect(ctx)
}

func (p *MacProbes) osascript(ctx context.Context, script string) (string, error) {
	out, err := p.run(ctx, "osascript", "-e", script)
	if err != nil {
		return "", fmt.Errorf("run osascript: %w", err)
	}

	value := strings.TrimSpace(string(out))
	if value == "" {
		return "", ErrNoValue
	}

	return value, nil
}
