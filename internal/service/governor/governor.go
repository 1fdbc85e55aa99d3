package governor

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/logger"
	"github.com/oshokin/activity-monitor/internal/sensor"
)

// Alerter delivers a single alert immediately.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// Options configures thresholds and cooldowns.
type Options struct {
	// Device names the host in alert texts.
	Device string
	// BatteryThreshold is the inclusive low-power percentage.
	BatteryThreshold int
	// BatteryCooldown is the minimum time between two low-power alerts.
	BatteryCooldown time.Duration
	// ActivityThreshold is the continuous-activity time that triggers a reminder.
	ActivityThreshold time.Duration
	// ActivityCooldown is the minimum time between two reminders.
	ActivityCooldown time.Duration
}

// Governor evaluates both alerts against the StateRecord.
type Governor struct {
	alerter Alerter
	opts    Options
}

// New creates a governor delivering through alerter.
func New(alerter Alerter, opts Options) *Governor {
	return &Governor{
		alerter: alerter,
		opts:    opts,
	}
}

// CheckBattery fires the low-power alert when the level is at or below the
// threshold and the cooldown has elapsed. It reports whether the alert fired.
func (g *Governor) CheckBattery(
	ctx context.Context,
	state *domain.StateRecord,
	reading sensor.Reading[int],
	now time.Time,
) bool {
	if !reading.Present || reading.Value > g.opts.BatteryThreshold {
		return false
	}

	if !cooldownElapsed(state.LastBatteryAlert, now, g.opts.BatteryCooldown) {
		return false
	}

	g.fire(ctx, "battery", fmt.Sprintf("⚠️ Battery at %d%% - %s running low", reading.Value, g.opts.Device))
	state.LastBatteryAlert = now

	return true
}

// CheckActivity fires the continuous-activity reminder once the current window
// exceeds the threshold and the cooldown has elapsed. Firing restarts the
// window at now, so the next reminder measures time since this one.
func (g *Governor) CheckActivity(ctx context.Context, state *domain.StateRecord, now time.Time) bool {
	if now.Sub(state.ActiveStart) <= g.opts.ActivityThreshold {
		return false
	}

	if !cooldownElapsed(state.LastPostureAlert, now, g.opts.ActivityCooldown) {
		return false
	}

	minutes := int(g.opts.ActivityThreshold / time.Minute)
	g.fire(ctx, "activity", fmt.Sprintf(
		"💺 Posture Check - %s has been working for %d+ minutes continuously", g.opts.Device, minutes,
	))

	state.LastPostureAlert = now
	state.ActiveStart = now

	return true
}

// fire delivers the alert. Delivery failures are not retried: the cooldown
// starts either way.
func (g *Governor) fire(ctx context.Context, kind, text string) {
	logger.InfoKV(ctx, "Alert fired", "alert", kind)

	if err := g.alerter.Alert(ctx, text); err != nil {
		logger.DebugKV(ctx, "Alert not delivered", "alert", kind, "error", err)
	}
}

// cooldownElapsed reports whether at least cooldown passed since last.
// A zero last means the alert never fired.
func cooldownElapsed(last, now time.Time, cooldown time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= cooldown
}
