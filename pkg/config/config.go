// Package config loads Ember's configuration with the usual precedence:
// built-in defaults, then ~/.ember/config.yaml, then ./.ember/config.yaml,
// then EMBER_* environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values exported for documentation and validation
const (
	DefaultAPIBind          = "127.0.0.1:4490"
	DefaultStalenessSeconds = 300
	DefaultSourceTimeoutMs  = 3000
	DefaultBusMode          = "memory"
	DefaultNATSURL          = "nats://localhost:4222"
	DefaultPushQueue        = "notifications"
	DefaultVAPIDSubject     = "mailto:hello@ember.app"
	DefaultLogLevel         = "info"
)

// Config is the complete Ember configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	API       APIConfig       `yaml:"api"`
	Bus       BusConfig       `yaml:"bus"`
	Push      PushConfig      `yaml:"push"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig locates on-disk state.
type DataConfig struct {
	// Dir is the root data directory. Defaults to ~/.ember.
	Dir string `yaml:"dir"`
}

// DatabasePath returns the SQLite file under the data directory.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.Dir, "ember.db")
}

// SynthesisConfig tunes the context engine.
type SynthesisConfig struct {
	// StalenessSeconds bounds how old a cached context may be before a
	// read triggers a refresh.
	StalenessSeconds int `yaml:"staleness_seconds"`
	// SourceTimeoutMs bounds each signal source read during gathering.
	SourceTimeoutMs int `yaml:"source_timeout_ms"`
}

// Staleness returns the staleness bound as a duration.
func (s SynthesisConfig) Staleness() time.Duration {
	return time.Duration(s.StalenessSeconds) * time.Second
}

// SourceTimeout returns the per-source read timeout as a duration.
func (s SynthesisConfig) SourceTimeout() time.Duration {
	return time.Duration(s.SourceTimeoutMs) * time.Millisecond
}

// APIConfig controls the HTTP surface.
type APIConfig struct {
	Bind          string `yaml:"bind"`
	EnableMetrics bool   `yaml:"enable_metrics"`
}

// BusConfig selects and configures the message bus.
type BusConfig struct {
	// Mode is "memory" or "nats".
	Mode string `yaml:"mode"`
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// PushConfig controls web push delivery.
type PushConfig struct {
	Enabled bool   `yaml:"enabled"`
	Subject string `yaml:"subject"`
	Queue   string `yaml:"queue"`
}

// LoggingConfig controls the JSONL activity logs.
type LoggingConfig struct {
	// Dir overrides the log directory. Empty means <data.dir>/logs.
	Dir      string `yaml:"dir"`
	MinLevel string `yaml:"min_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: defaultDataDir(),
		},
		Synthesis: SynthesisConfig{
			StalenessSeconds: DefaultStalenessSeconds,
			SourceTimeoutMs:  DefaultSourceTimeoutMs,
		},
		API: APIConfig{
			Bind: DefaultAPIBind,
		},
		Bus: BusConfig{
			Mode: DefaultBusMode,
			URL:  envOr("EMBER_NATS_URL", DefaultNATSURL),
			Name: "ember",
		},
		Push: PushConfig{
			Enabled: true,
			Subject: DefaultVAPIDSubject,
			Queue:   DefaultPushQueue,
		},
		Logging: LoggingConfig{
			MinLevel: DefaultLogLevel,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home == "" {
		return ".ember"
	}
	return filepath.Join(home, ".ember")
}

// LogDir returns the effective log directory.
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(c.Data.Dir, "logs")
}

// Load loads configuration from default locations with proper precedence.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".ember", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectConfigPath := filepath.Join(".", ".ember", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EMBER_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("EMBER_API_BIND"); v != "" {
		cfg.API.Bind = v
	}
	if v := os.Getenv("EMBER_BUS_MODE"); v != "" {
		cfg.Bus.Mode = v
	}
	if v := os.Getenv("EMBER_NATS_URL"); v != "" {
		cfg.Bus.URL = v
	}
	if v := os.Getenv("EMBER_LOG_LEVEL"); v != "" {
		cfg.Logging.MinLevel = v
	}
	if v := os.Getenv("EMBER_STALENESS_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Synthesis.StalenessSeconds = n
		}
	}
	if val, ok := envBool("EMBER_PUSH_ENABLED"); ok {
		cfg.Push.Enabled = val
	}
	if val, ok := envBool("EMBER_ENABLE_METRICS"); ok {
		cfg.API.EnableMetrics = val
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Synthesis.StalenessSeconds <= 0 {
		return fmt.Errorf("synthesis.staleness_seconds must be positive, got %d", c.Synthesis.StalenessSeconds)
	}
	if c.Synthesis.SourceTimeoutMs <= 0 {
		return fmt.Errorf("synthesis.source_timeout_ms must be positive, got %d", c.Synthesis.SourceTimeoutMs)
	}
	switch c.Bus.Mode {
	case "memory", "nats":
	default:
		return fmt.Errorf("bus.mode must be \"memory\" or \"nats\", got %q", c.Bus.Mode)
	}
	if c.Bus.Mode == "nats" && c.Bus.URL == "" {
		return fmt.Errorf("bus.url is required when bus.mode is \"nats\"")
	}
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind %q is not a valid host:port: %w", c.API.Bind, err)
	}
	switch strings.ToLower(c.Logging.MinLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.min_level must be debug, info, warn or error, got %q", c.Logging.MinLevel)
	}
	if c.Push.Enabled && c.Push.Queue == "" {
		return fmt.Errorf("push.queue is required when push is enabled")
	}
	return nil
}

// ValidationWarnings returns non-fatal concerns worth surfacing at startup.
func (c *Config) ValidationWarnings() []string {
	var warnings []string
	if !isLoopbackBindAddress(c.API.Bind) {
		warnings = append(warnings,
			fmt.Sprintf("api.bind %s is not a loopback address; the API has no authentication layer", c.API.Bind))
	}
	if c.Push.Enabled && c.Push.Subject == DefaultVAPIDSubject {
		warnings = append(warnings, "push.subject is the default placeholder; set a real contact address")
	}
	return warnings
}

func isLoopbackBindAddress(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	val, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return val, true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
