package sensor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRunner returns canned output per command name.
func scriptedRunner(outputs map[string]string, errs map[string]error) Runner {
	return func(_ context.Context, name string, _ ...string) ([]byte, error) {
		return []byte(outputs[name]), errs[name]
	}
}

// TestMacProbes_Commands verifies each probe parses its command output.
func TestMacProbes_Commands(t *testing.T) {
	t.Parallel()

	run := scriptedRunner(map[string]string{
		"osascript":       "Xcode\n",
		airportPath:       "           SSID: home\n",
		"system_profiler": `{"SPBluetoothDataType": [{"device_connected": [{"AirPods": {}}]}]}`,
		"pmset":           " -InternalBattery-0 (id=1)\t87%; charged;\n",
	}, nil)

	p := NewMacProbes(run, newDetector(t, []string{"zoom.us"}, nil))
	ctx := context.Background()

	app, err := p.ActiveApp(ctx)
	require.NoError(t, err)
	require.Equal(t, "Xcode", app)

	ssid, err := p.WiFiSSID(ctx)
	require.NoError(t, err)
	require.Equal(t, "home", ssid)

	devices, err := p.BluetoothDevices(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"AirPods"}, devices)

	level, err := p.BatteryLevel(ctx)
	require.NoError(t, err)
	require.Equal(t, 87, level)

	meeting, err := p.MeetingProcess(ctx)
	require.NoError(t, err)
	require.Equal(t, "zoom.us", meeting)

	focus, err := p.FocusMode(ctx)
	require.NoError(t, err)
	require.True(t, focus)
}

// TestMacProbes_EmptyWindowTitle treats an empty osascript result as no value.
func TestMacProbes_EmptyWindowTitle(t *testing.T) {
	t.Parallel()

	p := NewMacProbes(scriptedRunner(map[string]string{"osascript": "\n"}, nil), nil)

	_, err := p.WindowTitle(context.Background())
	require.ErrorIs(t, err, ErrNoValue)
}

// TestMacProbes_FocusModeExitStatus follows the defaults exit-status heuristic.
func TestMacProbes_FocusModeExitStatus(t *testing.T) {
	t.Parallel()

	exitErr := &exec.ExitError{}

	off := NewMacProbes(scriptedRunner(nil, map[string]error{"defaults": exitErr}), nil)
	focus, err := off.FocusMode(context.Background())
	require.NoError(t, err)
	require.False(t, focus)

	launchErr := errors.New("executable file not found")
	broken := NewMacProbes(scriptedRunner(nil, map[string]error{"defaults": launchErr}), nil)
	_, err = broken.FocusMode(context.Background())
	require.ErrorIs(t, err, launchErr)
}

// TestDeviceLabel prefers the override and otherwise returns a non-empty host name.
func TestDeviceLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Asif's laptop", DeviceLabel(context.Background(), "  Asif's laptop "))
	require.NotEmpty(t, strings.TrimSpace(DeviceLabel(context.Background(), "")))
}
