package config

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from an explicit environment instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Catalog validation
	if strings.TrimSpace(c.Catalog.SourceDir) == "" {
		errs = append(errs, "CATALOG_SOURCE_DIR is required")
	}
	if strings.TrimSpace(c.Catalog.OutputDir) == "" {
		errs = append(errs, "CATALOG_OUTPUT_DIR is required")
	}
	if !hasHTTPScheme(c.Catalog.BaseURL) {
		errs = append(errs, fmt.Sprintf("SITE_BASE_URL (%q) must start with http:// or https://", c.Catalog.BaseURL))
	}
	validOverlong := map[string]bool{"truncate": true, "reject": true}
	if !validOverlong[strings.ToLower(c.Catalog.OverlongRows)] {
		errs = append(errs, fmt.Sprintf("CATALOG_OVERLONG_ROWS (%q) must be one of: truncate, reject", c.Catalog.OverlongRows))
	}

	// Codes validation
	validFormats := map[string]bool{"png": true, "svg": true}
	if !validFormats[strings.ToLower(c.Codes.Format)] {
		errs = append(errs, fmt.Sprintf("QR_FORMAT (%q) must be one of: png, svg", c.Codes.Format))
	}
	validECC := map[string]bool{"low": true, "medium": true, "high": true, "highest": true}
	if !validECC[strings.ToLower(c.Codes.Level)] {
		errs = append(errs, fmt.Sprintf("QR_LEVEL (%q) must be one of: low, medium, high, highest", c.Codes.Level))
	}
	if c.Codes.Size <= 0 {
		errs = append(errs, "QR_SIZE must be positive")
	}
	if c.Codes.Workers <= 0 {
		errs = append(errs, "QR_WORKERS must be positive")
	}

	// Publish validation
	if c.Publish.Enabled() {
		if c.Publish.Bucket == "" {
			errs = append(errs, "PUBLISH_S3_BUCKET is required when PUBLISH_S3_ENDPOINT is set")
		}
		if c.Publish.AccessKey == "" || c.Publish.SecretKey == "" {
			errs = append(errs, "PUBLISH_S3_ACCESS_KEY and PUBLISH_S3_SECRET_KEY are required when PUBLISH_S3_ENDPOINT is set")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Sprintf("SERVER_TRUSTED_PROXIES entry %q must be a CIDR or IP address", proxy))
		}
	}
	if c.Server.CacheSize <= 0 {
		errs = append(errs, "SERVER_CACHE_SIZE must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func hasHTTPScheme(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// String returns a safe string representation of the config for logging.
// Publish credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Catalog: {SourceDir: %q, OutputDir: %q, BaseURL: %q, AdmitURLOnly: %v}, ",
		c.Catalog.SourceDir, c.Catalog.OutputDir, c.Catalog.BaseURL, c.Catalog.AdmitURLOnly))
	b.WriteString(fmt.Sprintf("Codes: {Enabled: %v, Format: %q, Workers: %d}, ",
		c.Codes.Enabled, c.Codes.Format, c.Codes.Workers))
	if c.Publish.Enabled() {
		b.WriteString(fmt.Sprintf("Publish: {Endpoint: %q, Bucket: %q, AccessKey: [MASKED], SecretKey: [MASKED]}, ",
			c.Publish.Endpoint, c.Publish.Bucket))
	} else {
		b.WriteString("Publish: {disabled}, ")
	}
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
