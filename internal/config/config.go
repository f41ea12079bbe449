package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/cycle"
	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/provider"
	"github.com/willie68/go_charttiles/internal/tilecache"
	"github.com/willie68/go_charttiles/internal/tiles"
	"go.yaml.in/yaml/v3"
)

type Config struct {
	Chart     tiles.Context      `yaml:"chart"`
	Cycle     cycle.Config       `yaml:"cycle"`
	Providers provider.ConfigMap `yaml:"providers"`
	Logging   logging.Config     `yaml:"logging"`
	Cache     tilecache.Config   `yaml:"cache"`
	Metrics   bool               `yaml:"metrics"`
}

var (
	config = Default()
)

// Default the configuration used for missing values
func Default() Config {
	return Config{
		Chart:     tiles.DefaultContext(),
		Providers: make(provider.ConfigMap),
		Logging: logging.Config{
			Level: "info",
		},
	}
}

func Get() *Config {
	return &config
}

// Option changes a loaded configuration, used for command line overrides
type Option func(c *Config)

func WithChartType(ct string) Option {
	return func(c *Config) {
		if ct != "" {
			c.Chart.ChartType = ct
		}
	}
}

// WithCycleAdjust sets the cycle adjust, 0 included
func WithCycleAdjust(adjust int) Option {
	return func(c *Config) {
		c.Chart.CycleAdjust = adjust
	}
}

func WithMetrics(m bool) Option {
	return func(c *Config) {
		c.Metrics = c.Metrics || m
	}
}

func SetParameter(opts ...Option) {
	for _, o := range opts {
		o(&config)
	}
}

func JSON() string {
	js, err := config.JSON()
	if err != nil {
		return ""
	}
	return js
}

// Load loads the config
func Load(file string) error {
	c, err := Read(file)
	if err != nil {
		return err
	}
	config = c
	return nil
}

// Read reads a config file, values missing in the file are taken from Default
func Read(file string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(file)
	if err != nil {
		return c, errors.Wrap(err, "can't load config file")
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrap(err, "can't unmarshal config file")
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	def := tiles.DefaultContext()
	if c.Chart.ChartType == "" {
		c.Chart.ChartType = def.ChartType
	}
	if c.Chart.ImageExtension == "" {
		c.Chart.ImageExtension = def.ImageExtension
	}
	if c.Chart.Width == 0 && c.Chart.Height == 0 {
		c.Chart.Width = def.Width
		c.Chart.Height = def.Height
	}
	if c.Providers == nil {
		c.Providers = make(provider.ConfigMap)
	}
}

func (c *Config) GetProviderConfig() provider.ConfigMap {
	return c.Providers
}

func (c *Config) MetricsActive() bool {
	return c.Metrics
}

func Init(inj do.Injector) {
	do.ProvideValue(inj, &config)
	do.ProvideValue(inj, &config.Chart)
	do.ProvideValue(inj, &config.Cycle)
	do.ProvideValue(inj, &config.Logging)
	do.ProvideValue(inj, &config.Cache)

	ver := NewVersion()
	do.ProvideValue(inj, *ver)
}

func (c *Config) JSON() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "can't marshal config")
	}
	return string(data), nil
}
