package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errProbe = errors.New("permission denied")

// fakeProbes lets each test script individual probe results.
type fakeProbes struct {
	app       func(ctx context.Context) (string, error)
	battery   func(ctx context.Context) (int, error)
	bluetooth func(ctx context.Context) ([]string, error)
}

func (f *fakeProbes) ActiveApp(ctx context.Context) (string, error) {
	if f.app == nil {
		return "", ErrNoValue
	}

	return f.app(ctx)
}

func (f *fakeProbes) WindowTitle(context.Context) (string, error) { return "main.go", nil }

func (f *fakeProbes) FocusMode(context.Context) (bool, error) { return true, nil }

func (f *fakeProbes) WiFiSSID(context.Context) (string, error) { return "", errProbe }

func (f *fakeProbes) BluetoothDevices(ctx context.Context) ([]string, error) {
	if f.bluetooth == nil {
		return []string{}, nil
	}

	return f.bluetooth(ctx)
}

func (f *fakeProbes) BatteryLevel(ctx context.Context) (int, error) {
	if f.battery == nil {
		return 0, ErrNoValue
	}

	return f.battery(ctx)
}

func (f *fakeProbes) MeetingProcess(context.Context) (string, error) { return "", nil }

// TestAdapter_PresentAndAbsent verifies values pass through and errors become absent readings.
func TestAdapter_PresentAndAbsent(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeProbes{
		app: func(context.Context) (string, error) { return "Xcode", nil },
	}, time.Second)

	ctx := context.Background()

	require.Equal(t, Present("Xcode"), a.ActiveApp(ctx))
	require.Equal(t, Present("main.go"), a.WindowTitle(ctx))
	require.Equal(t, Present(true), a.FocusMode(ctx))
	require.Equal(t, Absent[string](), a.WiFiSSID(ctx))
	require.Equal(t, Absent[int](), a.BatteryLevel(ctx))

	// No conferencing app is a present, empty reading.
	meeting := a.MeetingProcess(ctx)
	require.True(t, meeting.Present)
	require.Empty(t, meeting.Value)
}

// TestAdapter_RecoversFromPanic ensures a panicking probe yields an absent reading.
func TestAdapter_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeProbes{
		bluetooth: func(context.Context) ([]string, error) { panic("index out of range") },
	}, time.Second)

	var reading Reading[[]string]

	require.NotPanics(t, func() {
		reading = a.BluetoothDevices(context.Background())
	})
	require.False(t, reading.Present)
}

// TestAdapter_TimesOutHungProbe verifies the per-call deadline unblocks a stuck probe.
func TestAdapter_TimesOutHungProbe(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeProbes{
		battery: func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	}, 20*time.Millisecond)

	start := time.Now()
	reading := a.BatteryLevel(context.Background())

	require.False(t, reading.Present)
	require.Less(t, time.Since(start), 2*time.Second)
}

// TestError_Unwrap checks the typed error exposes its cause.
func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	err := &Error{Signal: "wifi_ssid", Err: errProbe}

	require.ErrorIs(t, err, errProbe)
	require.Contains(t, err.Error(), "wifi_ssid")
}
