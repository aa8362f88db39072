package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PortalDHT/internal/configloader"
	"PortalDHT/internal/domain"
	"PortalDHT/internal/logger"
)

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type NodeConfig struct {
	// Id is the node identifier as a hex string. Empty means a random
	// identifier is generated at startup.
	Id string `yaml:"id"`
}

type StorageConfig struct {
	// CapacityKB is the usage ceiling, in decimal kilobytes, past which
	// the engine starts evicting one entry per store.
	CapacityKB uint64 `yaml:"capacityKb"`
	// DataDir overrides the default data directory resolution.
	DataDir string `yaml:"dataDir"`
	// ReportInterval is the period of the usage report worker.
	ReportInterval time.Duration `yaml:"reportInterval"`
}

type Config struct {
	Logger    configloader.LoggerConfig `yaml:"logger"`
	Node      NodeConfig                `yaml:"node"`
	Storage   StorageConfig             `yaml:"storage"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	// Load from YAML file
	if err := configloader.LoadYAML(path, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Override with environment variables
	configloader.OverrideString(&cfg.Node.Id, "NODE_ID")

	configloader.OverrideUint64(&cfg.Storage.CapacityKB, "STORAGE_CAPACITY_KB")
	configloader.OverrideString(&cfg.Storage.DataDir, "STORAGE_DATA_DIR")
	configloader.OverrideDuration(&cfg.Storage.ReportInterval, "STORAGE_REPORT_INTERVAL")

	configloader.OverrideBool(&cfg.Telemetry.Tracing.Enabled, "TRACING_ENABLED")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Exporter, "TRACING_EXPORTER")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Endpoint, "TRACING_ENDPOINT")

	configloader.OverrideBool(&cfg.Logger.Active, "LOGGER_ENABLED")
	configloader.OverrideString(&cfg.Logger.Level, "LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "LOGGER_FILE_PATH")
	configloader.OverrideInt(&cfg.Logger.File.MaxSize, "LOGGER_FILE_MAX_SIZE")
	configloader.OverrideInt(&cfg.Logger.File.MaxBackups, "LOGGER_FILE_MAX_BACKUPS")
	configloader.OverrideInt(&cfg.Logger.File.MaxAge, "LOGGER_FILE_MAX_AGE")
	configloader.OverrideBool(&cfg.Logger.File.Compress, "LOGGER_FILE_COMPRESS")

	// Apply defaults
	if cfg.Storage.ReportInterval == 0 {
		cfg.Storage.ReportInterval = 5 * time.Minute
	}

	return cfg, nil
}

// ResolveDataDir returns the directory holding the node's durable state.
// A non-empty configured value wins, then the PORTAL_DATA_DIR environment
// variable, then ~/.portaldht. The directory is created if absent.
func (cfg *Config) ResolveDataDir() (string, error) {
	dir := cfg.Storage.DataDir
	if dir == "" {
		dir = os.Getenv("PORTAL_DATA_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		dir = filepath.Join(home, ".portaldht")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}

// ValidateConfig performs structural validation of the loaded configuration.
//
// The validation checks only the syntactic and structural correctness of
// the configuration, not the semantic quality of the chosen values. For
// example, it verifies that the capacity is present and the node id (when
// given) parses as hex, but it does not judge whether the capacity is
// sensible for the host.
//
// All detected issues are accumulated and returned as a single error. If the
// configuration is valid, the method returns nil.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	// --- Logger ---
	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	// --- Node ---
	if cfg.Node.Id != "" {
		if _, err := domain.NodeIDFromHex(cfg.Node.Id); err != nil {
			errs = append(errs, fmt.Sprintf("invalid node.id: %q is not a hex identifier", cfg.Node.Id))
		}
	}

	// --- Storage ---
	if cfg.Storage.CapacityKB == 0 {
		errs = append(errs, "storage.capacityKb must be > 0")
	}
	if cfg.Storage.ReportInterval <= 0 {
		errs = append(errs, "storage.reportInterval must be > 0")
	}

	// --- Telemetry ---
	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if cfg.Telemetry.Tracing.Endpoint == "" {
				errs = append(errs, "telemetry.tracing.endpoint is required with exporter=otlp")
			}
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
	}

	// --- Return result ---
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig prints the loaded configuration at INFO level.
// This is useful for debugging startup issues and verifying
// that the configuration file has been parsed correctly.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Info("Loaded configuration",
		// Logger
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("logger.file.path", cfg.Logger.File.Path),
		logger.F("logger.file.maxSizeMB", cfg.Logger.File.MaxSize),
		logger.F("logger.file.maxBackups", cfg.Logger.File.MaxBackups),
		logger.F("logger.file.maxAgeDays", cfg.Logger.File.MaxAge),
		logger.F("logger.file.compress", cfg.Logger.File.Compress),

		// Node
		logger.F("node.id", cfg.Node.Id),

		// Storage
		logger.F("storage.capacityKb", cfg.Storage.CapacityKB),
		logger.F("storage.dataDir", cfg.Storage.DataDir),
		logger.F("storage.reportInterval", cfg.Storage.ReportInterval.String()),

		// Telemetry
		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
		logger.F("telemetry.tracing.endpoint", cfg.Telemetry.Tracing.Endpoint),
	)
}
