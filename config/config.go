package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
	"github.com/kilianp07/ridepool/core/metrics"
	"github.com/kilianp07/ridepool/infra/mqtt"
)

// EnvPrefix marks environment overrides. RP_TRANSPORT__BROKER sets
// transport.broker.
const EnvPrefix = "RP_"

type Config struct {
	Matrix    MatrixConfig    `json:"matrix"`
	Solver    SolverConfig    `json:"solver"`
	Store     StoreConfig     `json:"store"`
	Transport mqtt.Config     `json:"transport"`
	Metrics   metrics.Config  `json:"metrics"`
	Audit     logging.Config  `json:"audit"`
	Sentry    SentryConfig    `json:"sentry"`
	Dispatch  dispatch.Config `json:"dispatch"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Matrix.SetDefaults()
	c.Solver.SetDefaults()
	c.Store.SetDefaults()
	c.Transport.SetDefaults()
	c.Audit.SetDefaults()
	c.Sentry.SetDefaults()
	c.Dispatch.SetDefaults()
}

// Validate checks every section. The transport is only validated when a
// broker is configured so one-shot commands run without MQTT.
func (c Config) Validate() error {
	errs := []error{
		c.Matrix.Validate(),
		c.Solver.Validate(),
		c.Store.Validate(),
		c.Audit.Validate(),
		c.Sentry.Validate(),
		c.Dispatch.Validate(),
	}
	if c.Transport.Broker != "" {
		errs = append(errs, c.Transport.Validate())
	}
	return errors.Join(errs...)
}
