package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
)

var (
	// ErrNoValue means the probe ran fine but there is nothing to report.
	ErrNoValue = errors.New("no value")
	// ErrUnsupportedOS indicates the probe is not available on this platform.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errProbePanic wraps a recovered probe panic.
	errProbePanic = errors.New("probe panicked")
)

// Error is a probe failure tagged with its signal.
type Error struct {
	Signal domain.Signal
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sample %s: %v", e.Signal, e.Err)
}

// Unwrap returns the underlying probe error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Probes are the raw host readers. MeetingProcess returns an empty name when
// no conferencing app is running.
type Probes interface {
	ActiveApp(ctx context.Context) (string, error)
	WindowTitle(ctx context.Context) (string, error)
	FocusMode(ctx context.Context) (bool, error)
	WiFiSSID(ctx context.Context) (string, error)
	BluetoothDevices(ctx context.Context) ([]string, error)
	BatteryLevel(ctx context.Context) (int, error)
	MeetingProcess(ctx context.Context) (string, error)
}

// Reading is the outcome of one sample: a value, or absent.
type Reading[T any] struct {
	Value   T
	Present bool
}

// Present builds a present reading.
func Present[T any](value T) Reading[T] {
	return Reading[T]{Value: value, Present: true}
}

// Absent builds an absent reading.
func Absent[T any]() Reading[T] {
	return Reading[T]{}
}

// Adapter samples probes and converts every failure into an absent reading.
type Adapter struct {
	probes  Probes
	timeout time.Duration
}

// NewAdapter wraps probes; a non-positive timeout disables the per-call deadline.
func NewAdapter(probes Probes, timeout time.Duration) *Adapter {
	return &Adapter{
		probes:  probes,
		timeout: timeout,
	}
}

// ActiveApp samples the foreground application name.
func (a *Adapter) ActiveApp(ctx context.Context) Reading[string] {
	return sample(ctx, a, domain.SignalActiveApp, a.probes.ActiveApp)
}

// WindowTitle samples the title of the foreground window.
func (a *Adapter) WindowTitle(ctx context.Context) Reading[string] {
	return sample(ctx, a, domain.SignalWindowTitle, a.probes.WindowTitle)
}

// FocusMode samples whether notification suppression is on.
func (a *Adapter) FocusMode(ctx context.Context) Reading[bool] {
	return sample(ctx, a, domain.SignalFocusMode, a.probes.FocusMode)
}

// WiFiSSID samples the name of the associated wireless network.
func (a *Adapter) WiFiSSID(ctx context.Context) Reading[string] {
	return sample(ctx, a, domain.SignalWiFi, a.probes.WiFiSSID)
}

// BluetoothDevices samples the names of the connected accessories.
func (a *Adapter) BluetoothDevices(ctx context.Context) Reading[[]string] {
	return sample(ctx, a, domain.SignalBluetooth, a.probes.BluetoothDevices)
}

// BatteryLevel samples the battery percentage.
func (a *Adapter) BatteryLevel(ctx context.Context) Reading[int] {
	return sample(ctx, a, domain.SignalBattery, a.probes.BatteryLevel)
}

// MeetingProcess samples the running conferencing app. A present reading with
// an empty value means no app is running.
func (a *Adapter) MeetingProcess(ctx context.Context) Reading[string] {
	return sample(ctx, a, domain.SignalMeeting, a.probes.MeetingProcess)
}

// sample runs one probe under the adapter policy.
func sample[T any](
	ctx context.Context,
	a *Adapter,
	signal domain.Signal,
	probe func(context.Context) (T, error),
) (result Reading[T]) {
	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logFailure(ctx, &Error{Signal: signal, Err: fmt.Errorf("%w: %v", errProbePanic, r)})

			result = Absent[T]()
		}
	}()

	value, err := probe(callCtx)
	if err != nil {
		logFailure(ctx, &Error{Signal: signal, Err: err})

		return Absent[T]()
	}

	return Present(value)
}

// logFailure records a probe failure; an empty reading is not a failure.
func logFailure(ctx context.Context, err *Error) {
	if errors.Is(err, ErrNoValue) {
		return
	}

	logger.DebugKV(ctx, "Sensor unavailable", "signal", err.Signal, "error", err.Err)
}

func (a *Adapter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, a.timeout)
}
