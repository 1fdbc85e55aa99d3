package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
	"github.com/oshokin/activity-monitor/internal/repository/state"
	"github.com/oshokin/activity-monitor/internal/sensor"
	"github.com/oshokin/activity-monitor/internal/service/detector"
	"github.com/oshokin/activity-monitor/internal/service/governor"
	"github.com/oshokin/activity-monitor/internal/service/notifier"
)

// shutdownFlushTimeout bounds the final flush after cancellation.
const shutdownFlushTimeout = 15 * time.Second

// Queue is the event queue as seen by the monitor.
type Queue interface {
	detector.Appender
	notifier.Queue
}

// Components are the collaborators of a Monitor.
type Components struct {
	// Config holds validated settings.
	Config *config.Config
	// States persists the StateRecord.
	States state.Repository
	// Queue stores events between flushes.
	Queue Queue
	// Probes read the operating system.
	Probes sensor.Probes
	// Sink delivers alerts and batches.
	Sink notifier.Sink
	// Device names this host in messages.
	Device string
}

// Monitor owns the StateRecord and runs ticks against it.
type Monitor struct {
	cfg       *config.Config
	states    state.Repository
	sensors   *sensor.Adapter
	detector  *detector.Detector
	governor  *governor.Governor
	notifier  *notifier.Notifier
	schedule  *schedule
	state     *domain.StateRecord
	lastFlush time.Time
}

// New builds a monitor and restores the persisted StateRecord. A missing or
// unreadable state file starts from defaults.
func New(ctx context.Context, c *Components, now time.Time) (*Monitor, error) {
	ignore, err := detector.NewIgnoreSet(c.Config.IgnoredApps)
	if err != nil {
		return nil, fmt.Errorf("ignored apps: %w", err)
	}

	n := notifier.New(c.Sink, c.Queue, notifier.Options{
		Preamble:      notifier.RenderPreamble(c.Config.Preamble, c.Device),
		DropOnFailure: c.Config.DropOnFailure,
	})

	m := &Monitor{
		cfg:      c.Config,
		states:   c.States,
		sensors:  sensor.NewAdapter(c.Probes, c.Config.ProbeTimeout),
		detector: detector.New(c.Queue, ignore, c.Config.MaxTitleLength),
		governor: governor.New(n, governor.Options{
			Device:            c.Device,
			BatteryThreshold:  c.Config.Alerts.BatteryThreshold,
			BatteryCooldown:   c.Config.Alerts.BatteryCooldown,
			ActivityThreshold: c.Config.Alerts.ActivityThreshold,
			ActivityCooldown:  c.Config.Alerts.ActivityCooldown,
		}),
		notifier:  n,
		schedule:  newSchedule(),
		state:     restoreState(ctx, c.States, now),
		lastFlush: now,
	}

	return m, nil
}

// State returns a copy of the current StateRecord.
func (m *Monitor) State() *domain.StateRecord {
	return m.state.Clone()
}

// Loop ticks immediately and then on every tick interval until ctx is done.
// Settings received on updates are applied where they can be changed live.
func (m *Monitor) Loop(ctx context.Context, updates <-chan *config.Config) error {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	m.SafeTick(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			m.Shutdown(ctx)

			return nil
		case <-ticker.C:
			m.SafeTick(ctx, time.Now())
		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}

			m.Apply(ctx, cfg)
		}
	}
}

// SafeTick runs Tick and logs a panic instead of propagating it.
func (m *Monitor) SafeTick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Tick panicked", "panic", r)
		}
	}()

	m.Tick(ctx, now)
}

// Tick runs one iteration: flush when due, sample the due signals, evaluate
// alerts and persist the StateRecord.
func (m *Monitor) Tick(ctx context.Context, now time.Time) {
	if now.Sub(m.lastFlush) >= m.cfg.BatchInterval {
		m.flush(ctx)
		m.lastFlush = now
	}

	app := m.sensors.ActiveApp(ctx)
	m.detector.ActiveApp(ctx, m.state, app, now)

	if m.detector.WindowTitleEnabled(m.state, app) {
		m.detector.WindowTitle(ctx, m.state, m.sensors.WindowTitle(ctx), now)
	}

	cadence := m.cfg.Cadence

	if m.schedule.due(domain.SignalFocusMode, now, cadence.Focus) {
		m.detector.FocusMode(ctx, m.state, m.sensors.FocusMode(ctx), now)
	}

	if m.schedule.due(domain.SignalWiFi, now, cadence.WiFi) {
		m.detector.WiFi(ctx, m.state, m.sensors.WiFiSSID(ctx), now)
	}

	if m.schedule.due(domain.SignalBluetooth, now, cadence.Bluetooth) {
		m.detector.Bluetooth(ctx, m.state, m.sensors.BluetoothDevices(ctx), now)
	}

	if m.schedule.due(domain.SignalBattery, now, cadence.Battery) {
		m.governor.CheckBattery(ctx, m.state, m.sensors.BatteryLevel(ctx), now)
	}

	if m.schedule.due(domain.SignalMeeting, now, cadence.Meeting) {
		m.detector.Meeting(ctx, m.state, m.sensors.MeetingProcess(ctx), now)
	}

	m.governor.CheckActivity(ctx, m.state, now)

	m.persist(ctx)
}

// Apply takes over the settings that can change while running: the ignore
// set and the title cap. Other changes need a restart.
func (m *Monitor) Apply(ctx context.Context, cfg *config.Config) {
	ignore, err := detector.NewIgnoreSet(cfg.IgnoredApps)
	if err != nil {
		logger.WarnKV(ctx, "Ignoring settings change", "error", err)
		return
	}

	m.detector.SetFilters(ignore, cfg.MaxTitleLength)
	m.cfg.IgnoredApps = cfg.IgnoredApps
	m.cfg.MaxTitleLength = cfg.MaxTitleLength

	logger.InfoKV(ctx, "Settings reloaded",
		"ignored_apps", len(cfg.IgnoredApps),
		"max_title_length", cfg.MaxTitleLength)
	logger.Info(ctx, "Changes to other settings take effect after restart")
}

// Shutdown persists the StateRecord and, when configured, flushes the queue
// once. It runs after ctx is canceled so it works on a detached context.
func (m *Monitor) Shutdown(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	m.persist(ctx)

	if !m.cfg.FlushOnShutdown {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, shutdownFlushTimeout)
	defer cancel()

	m.flush(flushCtx)
}

func (m *Monitor) flush(ctx context.Context) {
	if _, err := m.notifier.Flush(ctx); err != nil {
		logger.WarnKV(ctx, "Flush failed", "error", err)
	}
}

func (m *Monitor) persist(ctx context.Context) {
	if err := m.states.Save(ctx, m.state); err != nil {
		logger.ErrorKV(ctx, "Failed to save state", "error", err)
	}
}

// restoreState loads the StateRecord or falls back to first-run defaults.
func restoreState(ctx context.Context, states state.Repository, now time.Time) *domain.StateRecord {
	rec, err := states.Load(ctx)

	switch {
	case err == nil:
		if rec.ActiveStart.IsZero() {
			rec.ActiveStart = now
		}

		return rec
	case errors.Is(err, state.ErrNotFound):
		logger.Info(ctx, "No saved state, starting fresh")
	default:
		logger.ErrorKV(ctx, "Failed to load state, starting fresh", "error", err)
	}

	return domain.NewStateRecord(now)
}
