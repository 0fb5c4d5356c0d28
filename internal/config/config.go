package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Realtime struct {
		URL            string        `mapstructure:"url"`
		InitialBackoff time.Duration `mapstructure:"initial_backoff"`
		MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	} `mapstructure:"realtime"`

	Storage struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"storage"`

	Bridge struct {
		Addr  string `mapstructure:"addr"`
		Token string `mapstructure:"token"`
	} `mapstructure:"bridge"`

	AMQP struct {
		URL      string `mapstructure:"url"`
		Exchange string `mapstructure:"exchange"`
	} `mapstructure:"amqp"`

	Telemetry struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
		Environment  string `mapstructure:"environment"`
	} `mapstructure:"telemetry"`

	Policy struct {
		File string `mapstructure:"file"`
	} `mapstructure:"policy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("realtime.url", "")
	v.SetDefault("realtime.initial_backoff", 500*time.Millisecond)
	v.SetDefault("realtime.max_backoff", 30*time.Second)
	v.SetDefault("storage.driver", "sqlite3")
	v.SetDefault("storage.dsn", "file:huntx.db?cache=shared")
	v.SetDefault("bridge.addr", "127.0.0.1:8087")
	v.SetDefault("bridge.token", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "huntx.client")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "huntx-client")
	v.SetDefault("telemetry.environment", "local")
	v.SetDefault("policy.file", "")
}

// Load reads configs/config.yaml (or path when set), then HUNTX_* environment
// variables. A missing config file is not an error; every key has a default.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HUNTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the client cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	switch c.Storage.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("config: unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Realtime.InitialBackoff <= 0 || c.Realtime.MaxBackoff < c.Realtime.InitialBackoff {
		return errors.New("config: realtime backoff must be positive and max >= initial")
	}
	return nil
}

// RealtimeURL returns realtime.url, or the websocket endpoint derived from the API
// base URL when unset.
func (c *Config) RealtimeURL() string {
	if c.Realtime.URL != "" {
		return c.Realtime.URL
	}
	base := strings.TrimRight(c.API.BaseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}
