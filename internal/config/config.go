package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every startup setting of the monitor.
type Config struct {
	// Sink selects the notification transport: "webhook", "discord" or "log".
	Sink string `yaml:"sink"`
	// Endpoint is the webhook URL the notifications are posted to.
	Endpoint string `yaml:"endpoint"`
	// Token is the bearer credential passed to the webhook.
	Token string `yaml:"token"`
	// DeviceName names this host in alert texts; detected when empty.
	DeviceName string `yaml:"device_name"`
	// Preamble opens every outbound message; "%s" is replaced by the device label.
	Preamble string `yaml:"preamble"`
	// StateFile is the path to the persisted StateRecord.
	StateFile string `yaml:"state_file"`
	// QueueFile is the path to the persisted event queue (JSON file or SQLite database).
	QueueFile string `yaml:"queue_file"`
	// ErrorLog receives every error-level log entry.
	ErrorLog string `yaml:"error_log"`
	// QueueBackend selects the queue storage: "file" or "sqlite".
	QueueBackend string `yaml:"queue_backend"`
	// MaxQueueLength caps the queue; the oldest events are evicted first.
	MaxQueueLength int `yaml:"max_queue_length"`
	// DropOnFailure discards the batch when delivery fails instead of keeping it.
	DropOnFailure bool `yaml:"drop_on_failure"`
	// FlushOnShutdown sends the queue once when the monitor stops.
	FlushOnShutdown bool `yaml:"flush_on_shutdown"`
	// BatchInterval is the time between two digest deliveries.
	BatchInterval time.Duration `yaml:"batch_interval"`
	// TickInterval is the sampling granularity of the loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// ProbeTimeout bounds every sensor call.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// Timeout bounds every notification call.
	Timeout time.Duration `yaml:"timeout"`
	// Cadence holds the polling interval of the slower signals.
	Cadence Cadence `yaml:"cadence"`
	// Alerts holds thresholds and cooldowns of the immediate alerts.
	Alerts Alerts `yaml:"alerts"`
	// IgnoredApps lists application names (glob patterns) excluded from app and window events.
	IgnoredApps []string `yaml:"ignored_apps"`
	// MaxTitleLength is the exclusive upper bound, in characters, of a reportable window title.
	MaxTitleLength int `yaml:"max_title_length"`
	// MeetingPattern is a case-insensitive regexp matching any conferencing process.
	MeetingPattern string `yaml:"meeting_pattern"`
	// MeetingApps names the conferencing apps recognized by their process name.
	MeetingApps []MeetingApp `yaml:"meeting_apps"`
	// LogLevel is the console log level.
	LogLevel string `yaml:"log_level"`
}

// Cadence holds per-signal polling intervals. Foreground app and window title
// are sampled on every tick.
type Cadence struct {
	Focus     time.Duration `yaml:"focus"`
	WiFi      time.Duration `yaml:"wifi"`
	Bluetooth time.Duration `yaml:"bluetooth"`
	Battery   time.Duration `yaml:"battery"`
	Meeting   time.Duration `yaml:"meeting"`
}

// Alerts configures the low-power and continuous-activity alerts.
type Alerts struct {
	// BatteryThreshold is the inclusive percentage at or below which power is low.
	BatteryThreshold int `yaml:"battery_threshold"`
	// BatteryCooldown is the minimum time between two low-power alerts.
	BatteryCooldown time.Duration `yaml:"battery_cooldown"`
	// ActivityThreshold is the continuous-activity time that triggers a reminder.
	ActivityThreshold time.Duration `yaml:"activity_threshold"`
	// ActivityCooldown is the minimum time between two reminders.
	ActivityCooldown time.Duration `yaml:"activity_cooldown"`
}

// MeetingApp maps a process-name fragment to a display name.
type MeetingApp struct {
	Name    string `yaml:"name"`
	Process string `yaml:"process"`
}

// Sink kinds.
const (
	SinkWebhook = "webhook"
	SinkDiscord = "discord"
	SinkLog     = "log"
)

// Queue backends.
const (
	QueueBackendFile   = "file"
	QueueBackendSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvToken    = "ACTIVITY_MONITOR_TOKEN"
	EnvEndpoint = "ACTIVITY_MONITOR_ENDPOINT"
)

const (
	// DefaultConfigFilename is the default filename for the settings.
	DefaultConfigFilename = "activity-monitor-settings.yaml"

	// DefaultEnvFilename is the dotenv file looked up next to the settings.
	DefaultEnvFilename = ".env"

	// DefaultFilePermissions is the permission of every file the monitor writes.
	DefaultFilePermissions = 0o600

	// DefaultPreamble opens every outbound message.
	DefaultPreamble = "This is an automated message being sent to you from %s"

	// DefaultMeetingPattern matches any known conferencing process.
	DefaultMeetingPattern = "zoom|meet|teams|webex"

	defaultBatchInterval     = 30 * time.Minute
	defaultTickInterval      = 10 * time.Second
	defaultProbeTimeout      = 5 * time.Second
	defaultTimeout           = 10 * time.Second
	defaultMaxQueueLength    = 500
	defaultMaxTitleLength    = 100
	defaultBatteryThreshold  = 20
	defaultCooldown          = time.Hour
	defaultActivityThreshold = 50 * time.Minute
	defaultSlowCadence       = 30 * time.Second
	defaultBatteryCadence    = 5 * time.Minute
	defaultMeetingCadence    = 20 * time.Second
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEndpointRequired is returned when a network sink has no endpoint.
	errEndpointRequired = errors.New("endpoint must be provided")
	// errTokenRequired is returned when the webhook sink has no credential.
	errTokenRequired = errors.New("token must be provided")
	// errUnknownSink is returned for an unsupported sink kind.
	errUnknownSink = errors.New("unknown sink")
	// errUnknownQueueBackend is returned for an unsupported queue backend.
	errUnknownQueueBackend = errors.New("unknown queue backend")
	// errNonPositive is returned when an interval or limit is negative.
	errNonPositive = errors.New("must be positive")
)

// DefaultIgnoredApps returns the applications that are never reported.
func DefaultIgnoredApps() []string {
	return []string{
		"Finder", "System Settings", "System Preferences", "loginwindow",
		"Dock", "Spotlight", "Control Center", "NotificationCenter",
	}
}

// DefaultMeetingApps returns the conferencing apps recognized by name.
func DefaultMeetingApps() []MeetingApp {
	return []MeetingApp{
		{Name: "zoom.us", Process: "zoom.us"},
		{Name: "Google Meet", Process: "GoogleMeet"},
		{Name: "Microsoft Teams", Process: "MicrosoftTeams"},
		{Name: "Webex", Process: "Webex"},
	}
}

// Default returns settings with every default applied and the log sink selected.
func Default() *Config {
	tmp := os.TempDir()

	return &Config{
		Sink:           SinkLog,
		Preamble:       DefaultPreamble,
		StateFile:      filepath.Join(tmp, "activity-monitor-state.json"),
		QueueFile:      filepath.Join(tmp, "activity-monitor-queue.json"),
		ErrorLog:       filepath.Join(tmp, "activity-monitor.err"),
		QueueBackend:   QueueBackendFile,
		MaxQueueLength: defaultMaxQueueLength,
		BatchInterval:  defaultBatchInterval,
		TickInterval:   defaultTickInterval,
		ProbeTimeout:   defaultProbeTimeout,
		Timeout:        defaultTimeout,
		Cadence: Cadence{
			Focus:     defaultSlowCadence,
			WiFi:      defaultSlowCadence,
			Bluetooth: defaultSlowCadence,
			Battery:   defaultBatteryCadence,
			Meeting:   defaultMeetingCadence,
		},
		Alerts: Alerts{
			BatteryThreshold:  defaultBatteryThreshold,
			BatteryCooldown:   defaultCooldown,
			ActivityThreshold: defaultActivityThreshold,
			ActivityCooldown:  defaultCooldown,
		},
		IgnoredApps:    DefaultIgnoredApps(),
		MaxTitleLength: defaultMaxTitleLength,
		MeetingPattern: DefaultMeetingPattern,
		MeetingApps:    DefaultMeetingApps(),
		LogLevel:       "info",
	}
}

// Load reads settings from path on top of the defaults, merges the dotenv file
// and environment overrides, and validates the result. A missing settings file
// yields the defaults.
func Load(path, envFile string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Keep defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if envFile == "" {
		envFile = filepath.Join(filepath.Dir(path), DefaultEnvFilename)
	}

	if err = loadEnvFile(envFile); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold the token.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills zero values with defaults.
//
//nolint:cyclop // A flat list of checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	switch cfg.Sink {
	case SinkLog:
	case SinkWebhook, SinkDiscord:
		if cfg.Endpoint == "" {
			return errEndpointRequired
		}

		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}

		if cfg.Sink == SinkWebhook && cfg.Token == "" {
			return errTokenRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownSink, cfg.Sink)
	}

	switch cfg.QueueBackend {
	case QueueBackendFile, QueueBackendSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownQueueBackend, cfg.QueueBackend)
	}

	positives := map[string]time.Duration{
		"batch_interval":            cfg.BatchInterval,
		"tick_interval":             cfg.TickInterval,
		"probe_timeout":             cfg.ProbeTimeout,
		"timeout":                   cfg.Timeout,
		"cadence.focus":             cfg.Cadence.Focus,
		"cadence.wifi":              cfg.Cadence.WiFi,
		"cadence.bluetooth":         cfg.Cadence.Bluetooth,
		"cadence.battery":           cfg.Cadence.Battery,
		"cadence.meeting":           cfg.Cadence.Meeting,
		"alerts.battery_cooldown":   cfg.Alerts.BatteryCooldown,
		"alerts.activity_threshold": cfg.Alerts.ActivityThreshold,
		"alerts.activity_cooldown":  cfg.Alerts.ActivityCooldown,
	}
	for name, value := range positives {
		if value < 0 {
			return fmt.Errorf("%s: %w", name, errNonPositive)
		}
	}

	if cfg.MaxQueueLength < 0 {
		return fmt.Errorf("max_queue_length: %w", errNonPositive)
	}

	if _, err := regexp.Compile("(?i)" + cfg.MeetingPattern); err != nil {
		return fmt.Errorf("invalid meeting pattern: %w", err)
	}

	return nil
}

// applyDefaults replaces zero values with their defaults.
func applyDefaults(cfg *Config) {
	def := Default()

	cfg.Sink = strings.ToLower(strings.TrimSpace(cfg.Sink))
	if cfg.Sink == "" {
		cfg.Sink = def.Sink
	}

	cfg.QueueBackend = strings.ToLower(strings.TrimSpace(cfg.QueueBackend))
	if cfg.QueueBackend == "" {
		cfg.QueueBackend = def.QueueBackend
	}

	setString(&cfg.Preamble, def.Preamble)
	setString(&cfg.StateFile, def.StateFile)
	setString(&cfg.QueueFile, def.QueueFile)
	setString(&cfg.MeetingPattern, def.MeetingPattern)
	setString(&cfg.LogLevel, def.LogLevel)

	setDuration(&cfg.BatchInterval, def.BatchInterval)
	setDuration(&cfg.TickInterval, def.TickInterval)
	setDuration(&cfg.ProbeTimeout, def.ProbeTimeout)
	setDuration(&cfg.Timeout, def.Timeout)
	setDuration(&cfg.Cadence.Focus, def.Cadence.Focus)
	setDuration(&cfg.Cadence.WiFi, def.Cadence.WiFi)
	setDuration(&cfg.Cadence.Bluetooth, def.Cadence.Bluetooth)
	setDuration(&cfg.Cadence.Battery, def.Cadence.Battery)
	setDuration(&cfg.Cadence.Meeting, def.Cadence.Meeting)
	setDuration(&cfg.Alerts.BatteryCooldown, def.Alerts.BatteryCooldown)
	setDuration(&cfg.Alerts.ActivityThreshold, def.Alerts.ActivityThreshold)
	setDuration(&cfg.Alerts.ActivityCooldown, def.Alerts.ActivityCooldown)

	if cfg.MaxQueueLength == 0 {
		cfg.MaxQueueLength = def.MaxQueueLength
	}

	if cfg.MaxTitleLength <= 0 {
		cfg.MaxTitleLength = def.MaxTitleLength
	}

	if cfg.Alerts.BatteryThreshold <= 0 {
		cfg.Alerts.BatteryThreshold = def.Alerts.BatteryThreshold
	}

	if cfg.IgnoredApps == nil {
		cfg.IgnoredApps = def.IgnoredApps
	}

	if len(cfg.MeetingApps) == 0 {
		cfg.MeetingApps = def.MeetingApps
	}
}

// loadEnvFile merges a dotenv file into the process environment.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setDuration(dst *time.Duration, def time.Duration) {
	if *dst == 0 {
		*dst = def
	}
}
