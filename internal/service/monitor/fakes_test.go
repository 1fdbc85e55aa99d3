package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/repository/queue"
	"github.com/oshokin/activity-monitor/internal/repository/state"
)

var errNoDisk = errors.New("no space left on device")

// fakeProbes returns scripted values and counts calls per signal.
type fakeProbes struct {
	mu      sync.Mutex
	app     string
	title   string
	focus   bool
	ssid    string
	devices []string
	battery int
	meeting string
	calls   map[string]int
}

func newFakeProbes() *fakeProbes {
	return &fakeProbes{
		app:     "Xcode",
		title:   "main.go",
		ssid:    "Office",
		devices: []string{"AirPods"},
		battery: 80,
		calls:   make(map[string]int),
	}
}

func (p *fakeProbes) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[name]++
}

func (p *fakeProbes) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls[name]
}

func (p *fakeProbes) set(fn func(p *fakeProbes)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(p)
}

func (p *fakeProbes) ActiveApp(context.Context) (string, error) {
	p.record("app")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.app, nil
}

func (p *fakeProbes) WindowTitle(context.Context) (string, error) {
	p.record("title")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.title, nil
}

func (p *fakeProbes) FocusMode(context.Context) (bool, error) {
	p.record("focus")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.focus, nil
}

func (p *fakeProbes) WiFiSSID(context.Context) (string, error) {
	p.record("wifi")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ssid, nil
}

func (p *fakeProbes) BluetoothDevices(context.Context) ([]string, error) {
	p.record("bluetooth")
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.devices...), nil
}

func (p *fakeProbes) BatteryLevel(context.Context) (int, error) {
	p.record("battery")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.battery, nil
}

func (p *fakeProbes) MeetingProcess(context.Context) (string, error) {
	p.record("meeting")
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.meeting, nil
}

// memoryStates keeps the StateRecord in memory.
type memoryStates struct {
	mu      sync.Mutex
	rec     *domain.StateRecord
	saves   int
	loadErr error
	saveErr error
	panics  bool
}

func (s *memoryStates) Load(context.Context) (*domain.StateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return nil, s.loadErr
	}

	if s.rec == nil {
		return nil, state.ErrNotFound
	}

	return s.rec.Clone(), nil
}

func (s *memoryStates) Save(_ context.Context, rec *domain.StateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.panics {
		panic("disk on fire")
	}

	if s.saveErr != nil {
		return s.saveErr
	}

	s.rec = rec.Clone()
	s.saves++

	return nil
}

func (s *memoryStates) saved() (*domain.StateRecord, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rec.Clone(), s.saves
}

// recordingSink keeps every delivered payload.
type recordingSink struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *recordingSink) Send(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.messages = append(s.messages, message)

	return nil
}

func (s *recordingSink) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.messages...)
}

// fixture wires a monitor over fakes and a file queue.
type fixture struct {
	monitor *Monitor
	probes  *fakeProbes
	states  *memoryStates
	queue   *queue.FileQueue
	sink    *recordingSink
	cfg     *config.Config
}

func newFixture(t *testing.T, start time.Time, tweak func(cfg *config.Config)) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Preamble = "From %s"
	cfg.IgnoredApps = []string{"Finder"}

	if tweak != nil {
		tweak(cfg)
	}

	require.NoError(t, config.Validate(cfg))

	f := &fixture{
		probes: newFakeProbes(),
		states: new(memoryStates),
		queue:  queue.NewFileQueue(filepath.Join(t.TempDir(), "queue.json"), cfg.MaxQueueLength),
		sink:   new(recordingSink),
		cfg:    cfg,
	}

	m, err := New(context.Background(), &Components{
		Config: cfg,
		States: f.states,
		Queue:  f.queue,
		Probes: f.probes,
		Sink:   f.sink,
		Device: "laptop",
	}, start)
	require.NoError(t, err)

	f.monitor = m

	return f
}

func (f *fixture) queued(t *testing.T) []string {
	t.Helper()

	events, err := f.queue.List(context.Background())
	require.NoError(t, err)

	descriptions := make([]string, 0, len(events))
	for _, e := range events {
		descriptions = append(descriptions, e.Description)
	}

	return descriptions
}
