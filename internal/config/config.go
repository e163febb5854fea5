package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the stopwatch binaries.
type Config struct {
	// ListenAddress is the gRPC address the server binds and clients dial.
	ListenAddress string `yaml:"listen_addr" env:"STOPWATCH_LISTEN_ADDR"`
	// MetricsAddress is the HTTP address serving /metrics, empty disables it.
	MetricsAddress string `yaml:"metrics_addr" env:"STOPWATCH_METRICS_ADDR"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"STOPWATCH_TIMEOUT"`
	// TickInterval is the period between elapsed-time recomputations of running timers.
	TickInterval time.Duration `yaml:"tick_interval" env:"STOPWATCH_TICK_INTERVAL"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level" env:"STOPWATCH_LOG_LEVEL"`
	// Storage selects where stopwatch snapshots are persisted.
	Storage Storage `yaml:"storage"`
}

// Storage configures the key-value store holding the snapshot blob.
type Storage struct {
	// Backend is one of BackendFile, BackendSQLite, BackendNATS, BackendMemory.
	Backend string `yaml:"backend" env:"STOPWATCH_STORAGE_BACKEND"`
	// Path is the state directory for the file backend or the database file for SQLite.
	Path string `yaml:"path" env:"STOPWATCH_STORAGE_PATH"`
	// Key is the well-known key the snapshot blob is stored under.
	Key string `yaml:"key" env:"STOPWATCH_STORAGE_KEY"`
	// Codec is the blob encoding, CodecJSON or CodecCBOR.
	Codec string `yaml:"codec" env:"STOPWATCH_STORAGE_CODEC"`
	// NATSURL is the server URL for the NATS backend.
	NATSURL string `yaml:"nats_url" env:"STOPWATCH_NATS_URL"`
	// NATSBucket is the JetStream key-value bucket for the NATS backend.
	NATSBucket string `yaml:"nats_bucket" env:"STOPWATCH_NATS_BUCKET"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "stopwatch-board-settings.yaml"

	// DefaultListenAddress is the default gRPC address.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultTickInterval is the default period between ticks.
	DefaultTickInterval = 50 * time.Millisecond

	// MinTickInterval and MaxTickInterval bound the configurable tick period.
	MinTickInterval = 10 * time.Millisecond
	MaxTickInterval = time.Second

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"

	// DefaultStatePath is the default state directory (file) or database (SQLite).
	DefaultStatePath = "stopwatch-board-state"

	// DefaultStorageKey is the default well-known key of the snapshot blob.
	DefaultStorageKey = "stopwatches"

	// DefaultNATSBucket is the default JetStream key-value bucket.
	DefaultNATSBucket = "stopwatches"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is the default permission for the state directory.
	DefaultDirPermissions = 0o700
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
	BackendMemory = "memory"
)

// Snapshot blob codecs.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNATSURLRequired is returned when the NATS backend has no server URL.
	errNATSURLRequired = errors.New("nats_url must be provided for the nats backend")
	// errTickIntervalOutOfRange is returned for tick intervals outside the supported bounds.
	errTickIntervalOutOfRange = fmt.Errorf("tick_interval must be between %s and %s", MinTickInterval, MaxTickInterval)
)

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := new(Config)

	// Validate on an empty config only fills defaults.
	_ = Validate(cfg) //nolint:errcheck // Defaults are always valid.

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates the result. A missing file is not an error.
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
	case errors.Is(err, os.ErrNotExist):
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
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

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ListenAddress == "" {
		settings.ListenAddress = DefaultListenAddress
	}

	if _, _, err := net.SplitHostPort(settings.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.TickInterval == 0 {
		settings.TickInterval = DefaultTickInterval
	}

	if settings.TickInterval < MinTickInterval || settings.TickInterval > MaxTickInterval {
		return errTickIntervalOutOfRange
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	return validateStorage(&settings.Storage)
}

// validateStorage fills storage defaults and checks backend-specific fields.
func validateStorage(storage *Storage) error {
	if storage.Backend == "" {
		storage.Backend = BackendFile
	}

	if !slices.Contains([]string{BackendFile, BackendSQLite, BackendNATS, BackendMemory}, storage.Backend) {
		return fmt.Errorf("unknown storage backend %q", storage.Backend)
	}

	if storage.Codec == "" {
		storage.Codec = CodecJSON
	}

	if storage.Codec != CodecJSON && storage.Codec != CodecCBOR {
		return fmt.Errorf("unknown storage codec %q", storage.Codec)
	}

	if storage.Key == "" {
		storage.Key = DefaultStorageKey
	}

	if storage.Path == "" {
		storage.Path = DefaultStatePath
	}

	if storage.Backend != BackendNATS {
		return nil
	}

	if storage.NATSURL == "" {
		return errNATSURLRequired
	}

	if storage.NATSBucket == "" {
		storage.NATSBucket = DefaultNATSBucket
	}

	return nil
}
