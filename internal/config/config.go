package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/soccer-timer/internal/logger"
)

// Config holds the settings shared by the match clock binaries.
type Config struct {
	// BridgeAddress is the gRPC address of the coordinator's UI bridge.
	BridgeAddress string `yaml:"bridge_addr" env:"MATCH_CLOCK_BRIDGE_ADDR"`
	// MetricsAddress enables the daemon's HTTP metrics and health endpoint when set.
	MetricsAddress string `yaml:"metrics_addr" env:"MATCH_CLOCK_METRICS_ADDR"`
	// SessionAddress is the HTTP listen address of the session endpoint.
	SessionAddress string `yaml:"session_addr" env:"MATCH_CLOCK_SESSION_ADDR"`
	// SessionDir is the directory holding session blobs.
	SessionDir string `yaml:"session_dir" env:"MATCH_CLOCK_SESSION_DIR"`
	// SessionMaxAge is how long an untouched session is kept.
	SessionMaxAge time.Duration `yaml:"session_max_age" env:"MATCH_CLOCK_SESSION_MAX_AGE"`
	// LockFile marks the foreground coordinator; LockDisabled turns locking off.
	LockFile string `yaml:"lock_file" env:"MATCH_CLOCK_LOCK_FILE"`
	// Vibrator selects the pulse device: auto, command, bell or log.
	Vibrator string `yaml:"vibrator" env:"MATCH_CLOCK_VIBRATOR"`
	// VibrateCommand is the command template used by the command vibrator.
	VibrateCommand string `yaml:"vibrate_command" env:"MATCH_CLOCK_VIBRATE_COMMAND"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"MATCH_CLOCK_TIMEOUT"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level" env:"MATCH_CLOCK_LOG_LEVEL"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "match-clock-settings.yaml"

	// DefaultBridgeAddress is where the daemon listens for bridge commands.
	DefaultBridgeAddress = "127.0.0.1:50061"

	// DefaultSessionAddress is where the session endpoint listens.
	DefaultSessionAddress = ":8080"

	// DefaultSessionDir is the default session storage directory.
	DefaultSessionDir = "sessions"

	// DefaultSessionMaxAge is the retention of untouched sessions.
	DefaultSessionMaxAge = 60 * 24 * time.Hour

	// DefaultLockFile is the name of the foreground lock file in the temp directory.
	DefaultLockFile = "match-clock.lock"

	// LockDisabled as lock file runs the coordinator without a foreground lock.
	LockDisabled = "-"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from path, applies MATCH_CLOCK_* environment
// overrides and validates the result. A missing file at the default path is
// not an error: defaults and the environment are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename:
		// Run on defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
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

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks addresses and the log level.
func Validate(settings *Config) error {
	if settings.BridgeAddress == "" {
		settings.BridgeAddress = DefaultBridgeAddress
	}

	if settings.SessionAddress == "" {
		settings.SessionAddress = DefaultSessionAddress
	}

	if settings.SessionDir == "" {
		settings.SessionDir = DefaultSessionDir
	}

	if settings.SessionMaxAge <= 0 {
		settings.SessionMaxAge = DefaultSessionMaxAge
	}

	if settings.LockFile == "" {
		settings.LockFile = filepath.Join(os.TempDir(), DefaultLockFile)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	addresses := map[string]string{
		"bridge":  settings.BridgeAddress,
		"session": settings.SessionAddress,
		"metrics": settings.MetricsAddress,
	}

	for name, address := range addresses {
		if address == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(address); err != nil {
			return fmt.Errorf("invalid %s address: %w", name, err)
		}
	}

	return nil
}

// ApplyLogLevel sets the global log level from the configuration.
func (c *Config) ApplyLogLevel() {
	if level, ok := logger.ParseLogLevel(c.LogLevel); ok {
		logger.SetLevel(level)
	}
}
