// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Catalog CatalogConfig
	Codes   CodesConfig
	Publish PublishConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// CatalogConfig holds build input and output settings.
type CatalogConfig struct {
	// SourceDir is the directory scanned for *.csv exports (default: csvs)
	SourceDir string `env:"CATALOG_SOURCE_DIR" envDefault:"csvs"`

	// OutputDir is the site tree the build writes into (default: site)
	OutputDir string `env:"CATALOG_OUTPUT_DIR" envDefault:"site"`

	// BaseURL is the public address the codes point at (default: https://example.com)
	BaseURL string `env:"SITE_BASE_URL" envDefault:"https://example.com"`

	// PagePath is the detail page, relative to BaseURL (default: product.html)
	PagePath string `env:"CATALOG_PAGE_PATH" envDefault:"product.html"`

	// AdmitURLOnly also admits rows that have a product link but no name (default: false)
	AdmitURLOnly bool `env:"CATALOG_ADMIT_URL_ONLY" envDefault:"false"`

	// OverlongRows is what to do with rows wider than the header: truncate or reject (default: truncate)
	OverlongRows string `env:"CATALOG_OVERLONG_ROWS" envDefault:"truncate"`
}

// CodesConfig holds QR artifact settings.
type CodesConfig struct {
	// Enabled turns code generation on (default: true)
	Enabled bool `env:"QR_ENABLED" envDefault:"true"`

	// Format is the artifact format: png or svg (default: png)
	Format string `env:"QR_FORMAT" envDefault:"png"`

	// Size is the PNG edge length in pixels (default: 256)
	Size int `env:"QR_SIZE" envDefault:"256"`

	// Level is the error-correction level: low, medium, high, highest (default: medium)
	Level string `env:"QR_LEVEL" envDefault:"medium"`

	// Workers bounds parallel artifact writes (default: 4)
	Workers int `env:"QR_WORKERS" envDefault:"4"`
}

// PublishConfig holds the optional S3-compatible mirror. An empty endpoint
// disables publishing.
type PublishConfig struct {
	Endpoint  string `env:"PUBLISH_S3_ENDPOINT"`
	Region    string `env:"PUBLISH_S3_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"PUBLISH_S3_ACCESS_KEY"`
	SecretKey string `env:"PUBLISH_S3_SECRET_KEY"`
	Bucket    string `env:"PUBLISH_S3_BUCKET"`
	Prefix    string `env:"PUBLISH_S3_PREFIX"`
	UseSSL    bool   `env:"PUBLISH_S3_USE_SSL" envDefault:"true"`
}

// Enabled reports whether a publish target is configured.
func (c *PublishConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustedProxies lists the reverse proxies, as CIDRs or addresses, whose
	// forwarding headers are believed (default: none)
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`

	// CacheSize is how many catalog entries the detail page keeps in memory (default: 1024)
	CacheSize int `env:"SERVER_CACHE_SIZE" envDefault:"1024"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
