package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/activity-monitor/internal/config"
	"github.com/oshokin/activity-monitor/internal/logger"
	"github.com/oshokin/activity-monitor/internal/repository/queue"
	"github.com/oshokin/activity-monitor/internal/repository/state"
	"github.com/oshokin/activity-monitor/internal/sensor"
	"github.com/oshokin/activity-monitor/internal/service/notifier"
	"github.com/oshokin/activity-monitor/internal/sink"
	"github.com/oshokin/activity-monitor/internal/version"
)

// Options controls how the monitor is started.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// EnvPath specifies the dotenv file; empty means ".env" next to the settings.
	EnvPath string
	// LogLevel overrides the level from the settings when set.
	LogLevel string
	// DryRun logs notifications instead of sending them.
	DryRun bool
}

// errUnknownLogLevel is returned for an unsupported log level.
var errUnknownLogLevel = errors.New("unknown log level")

// resources bundles the resources opened for one command.
type resources struct {
	cfg    *config.Config
	states *state.FileRepository
	queue  queue.Queue
	sink   notifier.Sink
	device string
	close  func()
}

// Run samples the host until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	rt, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer rt.close()

	ctx = logger.WithName(ctx, "activity-monitor")

	probes, err := sensor.NewSystemProbes(rt.cfg)
	if err != nil {
		return fmt.Errorf("create probes: %w", err)
	}

	m, err := New(ctx, &Components{
		Config: rt.cfg,
		States: rt.states,
		Queue:  rt.queue,
		Probes: probes,
		Sink:   rt.sink,
		Device: rt.device,
	}, time.Now())
	if err != nil {
		return err
	}

	updates, err := config.Watch(ctx, opts.ConfigPath, opts.EnvPath)
	if err != nil {
		logger.WarnKV(ctx, "Settings hot reload disabled", "error", err)
	}

	logger.InfoKV(ctx, "Monitoring",
		"version", version.Short(),
		"device", rt.device,
		"sink", rt.cfg.Sink,
		"queue_backend", rt.cfg.QueueBackend,
		"tick", rt.cfg.TickInterval.String(),
		"batch_interval", rt.cfg.BatchInterval.String())

	return m.Loop(ctx, updates)
}

// Flush sends the queued events once and returns how many were delivered.
func Flush(ctx context.Context, opts *Options) (int, error) {
	rt, err := open(ctx, opts)
	if err != nil {
		return 0, err
	}

	defer rt.close()

	ctx = logger.WithName(ctx, "flush")

	n := notifier.New(rt.sink, rt.queue, notifier.Options{
		Preamble:      notifier.RenderPreamble(rt.cfg.Preamble, rt.device),
		DropOnFailure: rt.cfg.DropOnFailure,
	})

	return n.Flush(ctx)
}

// open loads settings, installs the logger and opens storage and the sink.
func open(ctx context.Context, opts *Options) (*resources, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, levelName)
	}

	logger.SetLevel(level)

	l, closeLog, err := logger.NewWithErrorLog(logger.Level(), cfg.ErrorLog)
	if err != nil {
		return nil, err
	}

	logger.SetLogger(l)

	q, err := queue.Open(cfg.QueueBackend, cfg.QueueFile, cfg.MaxQueueLength)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open queue: %w", err)
	}

	var s notifier.Sink = sink.Log{}
	if !opts.DryRun {
		if s, err = sink.New(cfg); err != nil {
			_ = q.Close()
			_ = closeLog()

			return nil, fmt.Errorf("create sink: %w", err)
		}
	}

	return &resources{
		cfg:    cfg,
		states: state.NewFileRepository(cfg.StateFile),
		queue:  q,
		sink:   s,
		device: sensor.DeviceLabel(ctx, cfg.DeviceName),
		close: func() {
			if closeErr := q.Close(); closeErr != nil {
				logger.ErrorKV(ctx, "Failed to close queue", "error", closeErr)
			}

			logger.Sync()
			_ = closeLog()
		},
	}, nil
}
