package config

import "time"

// Config holds runtime settings for the store admin CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API, including the /api prefix.
//   - RequestTimeout: per-request timeout applied by the HTTP client.
//   - HealthCheckInterval: how often the client probes server reachability.
//   - DatabaseDSN: path of the local sqlite database holding credentials.
//
// Units: timeouts and intervals are time.Duration values.
type Config struct {
	ServerBaseURL       string
	RequestTimeout      time.Duration
	HealthCheckInterval time.Duration
	DatabaseDSN         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.HealthCheckInterval = 3 * time.Second
	c.DatabaseDSN = "storeadmin.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
