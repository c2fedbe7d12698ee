package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PROFCONN_CONFIG", "")
	cfg, err := Load("")
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Profiler.Host != "localhost" || cfg.Profiler.Port != DefaultPort || cfg.Profiler.Transport != "tcp" {
		t.Fatalf("profiler = %+v", cfg.Profiler)
	}
	if cfg.Profiler.Strict || cfg.Profiler.WriteTimeoutMS != 0 { t.Fatalf("defaults must be lenient and unbounded: %+v", cfg.Profiler) }
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "profconn.yaml")
	yaml := "profiler:\n  host: 10.0.0.5\n  port: 7000\n  strict: true\nrecord:\n  path: run.cbor\nlog:\n  level: debug\n"
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil { t.Fatalf("write: %v", err) }
	t.Setenv("PROFCONN_PROFILER_PORT", "7001")

	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Profiler.Host != "10.0.0.5" || !cfg.Profiler.Strict { t.Fatalf("profiler = %+v", cfg.Profiler) }
	if cfg.Profiler.Port != 7001 { t.Fatalf("env override ignored: %d", cfg.Profiler.Port) }
	if cfg.Record.Path != "run.cbor" || cfg.Log.Level != "debug" { t.Fatalf("cfg = %+v", cfg) }
}

func TestValidateRejects(t *testing.T) {
	for name, mut := range map[string]func(*Config){
		"level":     func(c *Config) { c.Log.Level = "loud" },
		"transport": func(c *Config) { c.Profiler.Transport = "smoke" },
		"port":      func(c *Config) { c.Profiler.Port = 70000 },
		"timeout":   func(c *Config) { c.Profiler.WriteTimeoutMS = -1 },
	} {
		c := Default()
		mut(c)
		if err := c.validate(); err == nil { t.Fatalf("%s: expected error", name) }
	}
}

func TestLoadEnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PROFCONN_CONFIG", "")
	t.Setenv("PROFCONN_PROFILER_TRANSPORT", "QUIC")
	t.Setenv("PROFCONN_METRICS_LISTEN", ":9465")
	cfg, err := Load("")
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Profiler.Transport != "quic" || cfg.Metrics.Listen != ":9465" { t.Fatalf("cfg = %+v", cfg) }
}

// chdir mirrors testing.T.Chdir (Go 1.24+): switch the working directory for
// the duration of the test and restore it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil { t.Fatalf("getwd: %v", err) }
	if err := os.Chdir(dir); err != nil { t.Fatalf("chdir: %v", err) }
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil { t.Fatalf("restore cwd: %v", err) }
	})
}
