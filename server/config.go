package server

const (
	defaultAddr         = ":3001"
	defaultAllowOrigins = "*"
	defaultMetricsName  = "planner"
)

// Config holds HTTP service parameters.
type Config struct {
	Addr         string `json:"addr,omitempty" yaml:"addr,omitempty"`
	AllowOrigins string `json:"allow_origins,omitempty" yaml:"allow_origins,omitempty"` // Comma-separated CORS origins.
	Metrics      bool   `json:"metrics,omitempty" yaml:"metrics,omitempty"`             // Serve Prometheus metrics at /metrics.
	MetricsName  string `json:"metrics_name,omitempty" yaml:"metrics_name,omitempty"`
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         defaultAddr,
		AllowOrigins: defaultAllowOrigins,
		MetricsName:  defaultMetricsName,
	}
}

// Merge applies non-zero values from source into c. Metrics is enabled when
// either side enables it.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.AllowOrigins != "" {
		c.AllowOrigins = source.AllowOrigins
	}
	if source.Metrics {
		c.Metrics = true
	}
	if source.MetricsName != "" {
		c.MetricsName = source.MetricsName
	}
}
