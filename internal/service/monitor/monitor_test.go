package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
)

var start = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local)

// TestTick_FirstTickSamplesEverySignal checks that every signal is due on the first tick.
func TestTick_FirstTickSamplesEverySignal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.probes.set(func(p *fakeProbes) { p.meeting = "zoom.us" })

	f.monitor.Tick(context.Background(), start)

	require.Equal(t, []string{
		"Switched to Xcode",
		"Working on: main.go",
		"Focus Mode disabled",
		"Connected to: Office",
		"AirPods connected",
		"Meeting started (zoom.us)",
	}, f.queued(t))

	saved, saves := f.states.saved()
	require.Equal(t, 1, saves)
	require.Equal(t, "Xcode", saved.LastApp)
	require.True(t, saved.InMeeting())

	// Nothing changed, so a second tick adds nothing.
	f.monitor.Tick(context.Background(), start.Add(10*time.Second))
	require.Len(t, f.queued(t), 6)
}

// TestTick_Cadences verifies per-signal polling intervals.
func TestTick_Cadences(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	ctx := context.Background()

	// Tick every 10 seconds for 5 minutes inclusive: 31 ticks.
	for i := range 31 {
		f.monitor.Tick(ctx, start.Add(time.Duration(i)*10*time.Second))
	}

	require.Equal(t, 31, f.probes.count("app"))
	require.Equal(t, 31, f.probes.count("title"))
	require.Equal(t, 11, f.probes.count("focus"))
	require.Equal(t, 11, f.probes.count("wifi"))
	require.Equal(t, 11, f.probes.count("bluetooth"))
	require.Equal(t, 2, f.probes.count("battery"))
	// Due at 0, 20, ..., 300 seconds.
	require.Equal(t, 16, f.probes.count("meeting"))
}

// TestTick_ClockJumpBack resamples slow signals when the clock goes backwards.
func TestTick_ClockJumpBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	ctx := context.Background()

	f.monitor.Tick(ctx, start)
	f.monitor.Tick(ctx, start.Add(-time.Hour))

	require.Equal(t, 2, f.probes.count("battery"))
}

// TestTick_IgnoredAppSkipsWindowTitle gates title sampling on the current app.
func TestTick_IgnoredAppSkipsWindowTitle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.probes.set(func(p *fakeProbes) { p.app = "Finder" })

	f.monitor.Tick(context.Background(), start)

	require.Zero(t, f.probes.count("title"))
	require.NotContains(t, strings.Join(f.queued(t), "\n"), "Finder")
}

// TestTick_FlushesBeforeSampling sends the batch when the interval elapsed.
func TestTick_FlushesBeforeSampling(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	ctx := context.Background()

	f.monitor.Tick(ctx, start)
	require.Empty(t, f.sink.sent())

	f.probes.set(func(p *fakeProbes) { p.app = "Safari" })
	f.monitor.Tick(ctx, start.Add(30*time.Minute))

	sent := f.sink.sent()
	require.Len(t, sent, 1)
	require.True(t, strings.HasPrefix(sent[0], "From laptop\n📊 Activity Update (09:00-09:00):"))
	require.Contains(t, sent[0], "• 09:00 - Switched to Xcode")
	require.NotContains(t, sent[0], "Safari")

	// The switch sampled after the flush waits for the next batch.
	require.Equal(t, []string{"Switched to Safari"}, f.queued(t))
}

// TestTick_FlushFailureKeepsEvents retains the queue for the next batch.
func TestTick_FlushFailureKeepsEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, func(cfg *config.Config) {
		cfg.Alerts.ActivityThreshold = 24 * time.Hour
	})
	ctx := context.Background()

	f.monitor.Tick(ctx, start)
	f.sink.err = errors.New("offline")
	f.monitor.Tick(ctx, start.Add(30*time.Minute))

	require.Len(t, f.queued(t), 5)

	// Delivery comes back: the next batch carries the retained events.
	f.sink.err = nil
	f.monitor.Tick(ctx, start.Add(60*time.Minute))

	sent := f.sink.sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0], "Switched to Xcode")
}

// TestTick_LowBatteryAlert fires once per cooldown and bypasses the queue.
func TestTick_LowBatteryAlert(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.probes.set(func(p *fakeProbes) { p.battery = 15 })
	ctx := context.Background()

	f.monitor.Tick(ctx, start)
	f.monitor.Tick(ctx, start.Add(5*time.Minute))

	sent := f.sink.sent()
	require.Equal(t, []string{"From laptop: ⚠️ Battery at 15% - laptop running low"}, sent)
	require.NotContains(t, strings.Join(f.queued(t), "\n"), "Battery")
}

// TestTick_ActivityAlert reminds after the threshold and restarts the window.
func TestTick_ActivityAlert(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, func(cfg *config.Config) {
		cfg.BatchInterval = 24 * time.Hour
	})
	ctx := context.Background()

	f.monitor.Tick(ctx, start.Add(50*time.Minute))
	require.Empty(t, f.sink.sent())

	at := start.Add(50*time.Minute + 10*time.Second)
	f.monitor.Tick(ctx, at)

	sent := f.sink.sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0], "💺 Posture Check - laptop has been working for 50+ minutes continuously")
	require.Equal(t, at, f.monitor.State().ActiveStart)
}

// TestTick_PersistenceFailureContinues keeps running when the state cannot be saved.
func TestTick_PersistenceFailureContinues(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.states.saveErr = errNoDisk

	require.NotPanics(t, func() {
		f.monitor.Tick(context.Background(), start)
	})
	require.Equal(t, "Xcode", f.monitor.State().LastApp)
}

// TestSafeTick_RecoversPanic keeps a panicking tick from escaping.
func TestSafeTick_RecoversPanic(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.states.panics = true

	require.NotPanics(t, func() {
		f.monitor.SafeTick(context.Background(), start)
	})
}

// TestNew_RestoresState resumes from the persisted record.
func TestNew_RestoresState(t *testing.T) {
	t.Parallel()

	states := &memoryStates{rec: &domain.StateRecord{
		LastApp:       "Xcode",
		LastBluetooth: []string{"AirPods"},
	}}

	cfg := config.Default()
	m, err := New(context.Background(), &Components{
		Config: cfg,
		States: states,
		Queue:  newFixture(t, start, nil).queue,
		Probes: newFakeProbes(),
		Sink:   new(recordingSink),
		Device: "laptop",
	}, start)
	require.NoError(t, err)

	rec := m.State()
	require.Equal(t, "Xcode", rec.LastApp)
	// A record without an activity window starts one now.
	require.Equal(t, start, rec.ActiveStart)
}

// TestNew_CorruptStateStartsFresh falls back to defaults on a bad state file.
func TestNew_CorruptStateStartsFresh(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	f.states.loadErr = errors.New("unexpected end of JSON input")

	m, err := New(context.Background(), &Components{
		Config: f.cfg,
		States: f.states,
		Queue:  f.queue,
		Probes: f.probes,
		Sink:   f.sink,
	}, start)
	require.NoError(t, err)
	require.Empty(t, m.State().LastApp)
	require.Equal(t, start, m.State().ActiveStart)
}

// TestNew_BadIgnorePattern rejects invalid glob patterns.
func TestNew_BadIgnorePattern(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.IgnoredApps = []string{"[unterminated"}

	_, err := New(context.Background(), &Components{Config: cfg, States: new(memoryStates)}, start)
	require.Error(t, err)
}

// TestApply updates the ignore set while running.
func TestApply(t *testing.T) {
	t.Parallel()

	f := newFixture(t, start, nil)
	ctx := context.Background()

	updated := config.Default()
	updated.IgnoredApps = []string{"Xcode"}
	f.monitor.Apply(ctx, updated)

	f.monitor.Tick(ctx, start)
	require.NotContains(t, f.queued(t), "Switched to Xcode")
	require.Zero(t, f.probes.count("title"))
}

// TestLoop_RunsUntilCanceled drives the loop under a fake clock.
func TestLoop_RunsUntilCanceled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Now(), func(cfg *config.Config) {
			cfg.FlushOnShutdown = true
		})

		ctx, cancel := context.WithCancel(context.Background())
		updates := make(chan *config.Config)
		done := make(chan error, 1)

		go func() {
			done <- f.monitor.Loop(ctx, updates)
		}()

		// First tick runs immediately, then one per 10 seconds.
		time.Sleep(35 * time.Second)
		synctest.Wait()
		require.Equal(t, 4, f.probes.count("app"))

		// A closed update channel does not stop the loop.
		close(updates)
		time.Sleep(10 * time.Second)
		synctest.Wait()
		require.Equal(t, 5, f.probes.count("app"))

		cancel()
		require.NoError(t, <-done)

		// Shutdown persisted the state and flushed the queue.
		_, saves := f.states.saved()
		require.Equal(t, 6, saves)

		sent := f.sink.sent()
		require.Len(t, sent, 1)
		require.Contains(t, sent[0], "Switched to Xcode")
		require.Empty(t, f.queued(t))
	})
}
