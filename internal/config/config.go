package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration, populated from the environment.
// A missing TMDB API key is not fatal at startup; handlers reject requests
// with a configuration error until one is provided.
type Config struct {
	ServiceName        string `env:"SERVICE_NAME" envDefault:"streamatch-backend"`
	ServiceVersion     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`
	ServiceEnvironment string `env:"SERVICE_ENVIRONMENT" envDefault:"lcl"`

	// ServerListenAddr is the network address the HTTP server listens on.
	ServerListenAddr string `env:"SERVER_LISTEN_ADDR" envDefault:":5000"`

	// OTELExporterEndpoint is the OTLP gRPC endpoint for logs, traces and metrics.
	OTELExporterEndpoint string `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"localhost:4317"`

	// TMDBAPIKey authenticates every call to the metadata provider.
	TMDBAPIKey string `env:"TMDB_API_KEY"`

	// WatchRegion is the market whose streaming catalogs are considered.
	WatchRegion string `env:"WATCH_REGION" envDefault:"BR"`

	// SuggestionsPageSize is the quota of titles per suggestions page.
	SuggestionsPageSize int `env:"SUGGESTIONS_PAGE_SIZE" envDefault:"10"`

	// ProviderTimeout bounds each outbound call to the metadata provider.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	CachePath             string `env:"CACHE_PATH" envDefault:".cache"`
	StatsWebsocketChannel string `env:"STATS_WEBSOCKET_CHANNEL" envDefault:"stats"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to env.Parse: %w", err)
	}
	return cfg, nil
}
