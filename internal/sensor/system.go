package sensor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/oshokin/activity-monitor/internal/config"
)

// NewSystemProbes returns the probes for the current platform. Only the
// conferencing probe works outside macOS; the others report ErrUnsupportedOS.
//
//nolint:ireturn // The concrete type depends on the platform.
func NewSystemProbes(cfg *config.Config) (Probes, error) {
	meeting, err := NewMeetingDetector(cfg.MeetingPattern, cfg.MeetingApps, nil)
	if err != nil {
		return nil, err
	}

	if runtime.GOOS == "darwin" {
		return NewMacProbes(ExecRunner, meeting), nil
	}

	return &portableProbes{meeting: meeting}, nil
}

// portableProbes is used where the desktop probes have no implementation.
type portableProbes struct {
	meeting *MeetingDetector
}

func (p *portableProbes) ActiveApp(context.Context) (string, error) { return "", unsupported() }

func (p *portableProbes) WindowTitle(context.Context) (string, error) { return "", unsupported() }

func (p *portableProbes) FocusMode(context.Context) (bool, error) { return false, unsupported() }

func (p *portableProbes) WiFiSSID(context.Context) (string, error) { return "", unsupported() }

func (p *portableProbes) BluetoothDevices(context.Context) ([]string, error) {
	return nil, unsupported()
}

func (p *portableProbes) BatteryLevel(context.Context) (int, error) { return 0, unsupported() }

func (p *portableProbes) MeetingProcess(ctx context.Context) (string, error) {
	return p.meeting.Detect(ctx)
}

func unsupported() error {
	return fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupportedOS)
}
