// Package config loads simulator settings from an optional YAML file and
// WMN_* environment variables.
package config

import (
	"fmt"
	"io"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/signalsfoundry/wmn-simulator/core"
	"github.com/signalsfoundry/wmn-simulator/internal/logging"
	"github.com/signalsfoundry/wmn-simulator/internal/observability"
)

type Simulation struct {
	NumNodes     int  `yaml:"num_nodes" env:"WMN_NUM_NODES" env-description:"number of generated nodes"`
	TxRange      int  `yaml:"tx_range" env:"WMN_TX_RANGE" env-description:"transmission range in plane units"`
	SelfishRatio int  `yaml:"selfish_ratio" env:"WMN_SELFISH_RATIO" env-description:"percentage of selfish nodes"`
	Mobility     bool `yaml:"mobility" env:"WMN_MOBILITY" env-description:"accepted for compatibility; positions stay fixed"`
	MultiRadio   bool `yaml:"multi_radio" env:"WMN_MULTI_RADIO" env-description:"add the multi-radio capacity bonus"`
	MultiChannel bool `yaml:"multi_channel" env:"WMN_MULTI_CHANNEL" env-description:"add the multi-channel capacity bonus"`

	Seed       int64  `yaml:"seed" env:"WMN_SEED" env-description:"random seed, 0 for time-based"`
	Runs       int    `yaml:"runs" env:"WMN_RUNS" env-description:"number of runs in a batch"`
	LayoutFile string `yaml:"layout_file" env:"WMN_LAYOUT_FILE" env-description:"YAML or JSON node layout"`
}

type Log struct {
	Level  string `yaml:"level" env:"WMN_LOG_LEVEL" env-description:"debug, info, warn or error"`
	Format string `yaml:"format" env:"WMN_LOG_FORMAT" env-description:"text or json"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"WMN_METRICS_ENABLED" env-description:"serve Prometheus metrics"`
	Addr    string `yaml:"addr" env:"WMN_METRICS_ADDR" env-description:"metrics listen address"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled" env:"WMN_TRACING_ENABLED" env-description:"export OpenTelemetry spans"`
	Exporter    string  `yaml:"exporter" env:"WMN_TRACING_EXPORTER" env-description:"stdout or otlp"`
	Endpoint    string  `yaml:"endpoint" env:"WMN_OTLP_ENDPOINT" env-description:"OTLP gRPC endpoint"`
	ServiceName string  `yaml:"service_name" env:"WMN_TRACING_SERVICE_NAME" env-description:"service.name resource attribute"`
	SampleRatio float64 `yaml:"sample_ratio" env:"WMN_TRACING_SAMPLE_RATIO" env-description:"trace sampling ratio in [0, 1]"`
}

type Server struct {
	Addr string `yaml:"addr" env:"WMN_SERVER_ADDR" env-description:"HTTP API listen address"`
}

type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Log        Log        `yaml:"log"`
	Metrics    Metrics    `yaml:"metrics"`
	Tracing    Tracing    `yaml:"tracing"`
	Server     Server     `yaml:"server"`
}

// Default returns the settings used when neither file nor environment
// provide a value.
func Default() *Config {
	p := core.DefaultParameters()
	return &Config{
		Simulation: Simulation{
			NumNodes:     p.NumNodes,
			TxRange:      p.TxRange,
			SelfishRatio: p.SelfishRatio,
			Mobility:     p.Mobility,
			MultiRadio:   p.MultiRadio,
			MultiChannel: p.MultiChannel,
			Runs:         1,
		},
		Log:     Log{Level: "info", Format: "text"},
		Metrics: Metrics{Addr: ":9090"},
		Tracing: Tracing{Exporter: "stdout", ServiceName: "wmn-simulator", SampleRatio: 1},
		Server:  Server{Addr: ":8080"},
	}
}

// Load starts from Default, overlays path when it is non-empty and then
// the environment. Keys missing from the file keep their default, so an
// explicit false or 0 in the file is preserved.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the simulation section and the batch size.
func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("config: %w: runs must be at least 1, got %d", core.ErrInvalidParameters, c.Simulation.Runs)
	}
	if r := c.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("config: tracing sample_ratio must be within [0, 1], got %v", r)
	}
	return nil
}

// Parameters converts the simulation section into run parameters.
func (c *Config) Parameters() core.Parameters {
	s := c.Simulation
	return core.Parameters{
		NumNodes:     s.NumNodes,
		TxRange:      s.TxRange,
		SelfishRatio: s.SelfishRatio,
		MultiRadio:   s.MultiRadio,
		MultiChannel: s.MultiChannel,
		Mobility:     s.Mobility,
	}
}

func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

func (c *Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// Usage writes the supported environment variables to w.
func Usage(w io.Writer) {
	cleanenv.FUsage(w, &Config{}, nil)()
}
