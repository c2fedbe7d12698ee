package config

// ProfilerConfig describes where and how search events are reported.
// Example YAML:
// profiler:
//   host: localhost
//   port: 6565
//   transport: tcp
//   strict: false
//   write_timeout_ms: 0
type ProfilerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Transport kind: tcp, quic, winpipe or mem
	Transport string `mapstructure:"transport"`
	// Strict returns send failures to the caller instead of dropping them
	Strict bool `mapstructure:"strict"`
	// WriteTimeoutMS bounds each frame write; 0 blocks indefinitely
	WriteTimeoutMS int `mapstructure:"write_timeout_ms"`
}

// RecordConfig enables a CBOR recording of every frame sent.
type RecordConfig struct {
	// Path of the recording file; empty disables recording
	Path string `mapstructure:"path"`
}

// MetricsConfig controls Prometheus metric names.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	// Listen serves /metrics on this address when set, e.g. ":9465"
	Listen string `mapstructure:"listen"`
}
