// Package config provides YAML-based configuration loading for the profiler
// connector.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPort is the port the profiler listens on unless told otherwise.
const DefaultPort = 6565

// Config is the root application configuration.
type Config struct {
	// AppName optional logical name used in logs
	AppName string `mapstructure:"app_name"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Profiler is the reporting target
	Profiler ProfilerConfig `mapstructure:"profiler"`

	// Record optionally mirrors sent frames to a file
	Record RecordConfig `mapstructure:"record"`

	// Metrics controls Prometheus metric names
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		AppName: "profconn",
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stderr"},
			Development: false,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/profconn.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Profiler: ProfilerConfig{
			Host:      "localhost",
			Port:      DefaultPort,
			Transport: "tcp",
		},
		Metrics: MetricsConfig{Namespace: "profconn"},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix PROFCONN and `.`/`-` are replaced with `_`.
// Example: PROFCONN_PROFILER_PORT=6566
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PROFCONN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, val := range defaults(cfg) {
		v.SetDefault(key, val)
	}

	if path == "" {
		path = os.Getenv("PROFCONN_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("profconn")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	// a missing file is fine: defaults and env still apply
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}

	c.Profiler.Transport = strings.ToLower(strings.TrimSpace(c.Profiler.Transport))
	switch c.Profiler.Transport {
	case "":
		c.Profiler.Transport = "tcp"
	case "tcp", "quic", "winpipe", "pipe", "mem", "inproc":
	default:
		return fmt.Errorf("invalid profiler.transport: %q", c.Profiler.Transport)
	}
	if strings.TrimSpace(c.Profiler.Host) == "" {
		c.Profiler.Host = "localhost"
	}
	if c.Profiler.Port < 0 || c.Profiler.Port > 65535 {
		return fmt.Errorf("invalid profiler.port: %d", c.Profiler.Port)
	}
	if c.Profiler.Port == 0 {
		c.Profiler.Port = DefaultPort
	}
	if c.Profiler.WriteTimeoutMS < 0 {
		return fmt.Errorf("invalid profiler.write_timeout_ms: %d", c.Profiler.WriteTimeoutMS)
	}
	return nil
}

// defaults flattens cfg into the dotted keys viper binds env variables to.
// Only keys with a default are visible to AutomaticEnv during Unmarshal.
func defaults(cfg *Config) map[string]any {
	l, r, p := cfg.Log, cfg.Log.Rotation, cfg.Profiler
	return map[string]any{
		"app_name":                  cfg.AppName,
		"log.level":                 l.Level,
		"log.format":                l.Format,
		"log.outputs":               l.Outputs,
		"log.development":           l.Development,
		"log.rotation.enable":       r.Enable,
		"log.rotation.filename":     r.Filename,
		"log.rotation.max_size_mb":  r.MaxSizeMB,
		"log.rotation.max_backups":  r.MaxBackups,
		"log.rotation.max_age_days": r.MaxAgeDays,
		"log.rotation.compress":     r.Compress,
		"profiler.host":             p.Host,
		"profiler.port":             p.Port,
		"profiler.transport":        p.Transport,
		"profiler.strict":           p.Strict,
		"profiler.write_timeout_ms": p.WriteTimeoutMS,
		"record.path":               cfg.Record.Path,
		"metrics.namespace":         cfg.Metrics.Namespace,
		"metrics.listen":            cfg.Metrics.Listen,
	}
}

func searchPaths() []string {
	dirs := []string{".", "./configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".profconn"))
	}
	return dirs
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
