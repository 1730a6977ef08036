package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/Mousaahmad63636/spotlymobile/pkg/config"
)

// Config holds all configuration for the admin console.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Local admin panel. Binds to loopback by default; the panel has no
	// transport auth beyond the session gate.
	PanelAddr string `env:"PANEL_ADDR" envDefault:"127.0.0.1:8080"`

	// Spotly backend.
	APIBaseURL string `env:"SPOTLY_API_BASE_URL" envDefault:"https://api.spotlylb.com/api"`
	UploadsURL string `env:"SPOTLY_UPLOADS_URL" envDefault:"https://api.spotlylb.com/uploads"`

	// HTTP client.
	HTTPTimeoutSeconds int `env:"HTTP_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPMaxRetries     int `env:"HTTP_MAX_RETRIES" envDefault:"3"`

	// Circuit breaker.
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.6"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"3"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`

	// Kafka order events. Optional: with no brokers configured the console
	// runs in pull-only mode.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"spotly-admin"`
	KafkaTopic   string   `env:"KAFKA_ORDER_TOPIC" envDefault:"order.events"`

	// OpenTelemetry.
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load admin config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.PanelAddr == "" {
		return fmt.Errorf("panel address must not be empty")
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("invalid HTTP timeout: %d", c.HTTPTimeoutSeconds)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("circuit breaker failure ratio must be in (0, 1]: %g", c.CBFailureRatio)
	}
	return nil
}

// KafkaEnabled reports whether the order event listener should run.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
