package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultEnvironment  = "local"
	defaultLogLevel     = "info"
	defaultReadHeader   = 10 * time.Second
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultTemplatesDir = "templates"
	defaultPublicDir    = "public"
	defaultContentDir   = "content"
	defaultCatalogFile  = "catalog/catalog.yaml"
	defaultLocalesDir   = "locales"
	defaultLocale       = "pt"
	defaultPageIdleTTL  = 2 * time.Hour
	defaultSweepEvery   = 10 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Dev         bool
	LogLevel    string
	Server      ServerConfig
	Paths       PathConfig
	Session     SessionConfig
	Storefront  StorefrontConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// PathConfig lists the on-disk inputs of the site.
type PathConfig struct {
	Templates string
	Public    string
	Content   string
	Catalog   string
	Locales   string
}

// SessionConfig holds cookie codec keys. Empty keys make the session middleware
// generate process-ephemeral ones.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
}

// StorefrontConfig controls page-session lifetime and the display locale.
type StorefrontConfig struct {
	Locale      string
	PageIdleTTL time.Duration
	SweepEvery  time.Duration
}

// Addr returns the listen address derived from the configured port.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer HAFEN_WEB_PORT, then the platform's PORT.
	port := stringWithDefault(lookup, "HAFEN_WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	env := strings.ToLower(stringWithDefault(lookup, "HAFEN_WEB_ENV", defaultEnvironment))
	cfg := Config{
		Environment: env,
		Dev:         boolWithDefault(lookup, "HAFEN_WEB_DEV", false),
		LogLevel:    stringWithDefault(lookup, "HAFEN_WEB_LOG_LEVEL", defaultLogLevel),
		Server: ServerConfig{
			Port:              port,
			ReadHeaderTimeout: durationWithDefault(lookup, "HAFEN_WEB_READ_HEADER_TIMEOUT", defaultReadHeader),
			ReadTimeout:       durationWithDefault(lookup, "HAFEN_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "HAFEN_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "HAFEN_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Paths: PathConfig{
			Templates: stringWithDefault(lookup, "HAFEN_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, "HAFEN_WEB_PUBLIC_DIR", defaultPublicDir),
			Content:   stringWithDefault(lookup, "HAFEN_WEB_CONTENT_DIR", defaultContentDir),
			Catalog:   stringWithDefault(lookup, "HAFEN_WEB_CATALOG_FILE", defaultCatalogFile),
			Locales:   stringWithDefault(lookup, "HAFEN_WEB_LOCALES_DIR", defaultLocalesDir),
		},
		Session: SessionConfig{
			HashKey:  []byte(stringWithDefault(lookup, "HAFEN_WEB_SESSION_HASH_KEY", "")),
			BlockKey: []byte(stringWithDefault(lookup, "HAFEN_WEB_SESSION_BLOCK_KEY", "")),
			Secure:   env == "prod",
		},
		Storefront: StorefrontConfig{
			Locale:      strings.ToLower(stringWithDefault(lookup, "HAFEN_WEB_LOCALE", defaultLocale)),
			PageIdleTTL: durationWithDefault(lookup, "HAFEN_WEB_PAGE_IDLE_TTL", defaultPageIdleTTL),
			SweepEvery:  durationWithDefault(lookup, "HAFEN_WEB_PAGE_SWEEP_INTERVAL", defaultSweepEvery),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if strings.TrimSpace(cfg.Paths.Templates) == "" {
		missing = append(missing, "Paths.Templates")
	}
	if strings.TrimSpace(cfg.Paths.Catalog) == "" {
		missing = append(missing, "Paths.Catalog")
	}
	if cfg.Storefront.PageIdleTTL <= 0 {
		missing = append(missing, "Storefront.PageIdleTTL")
	}
	if cfg.Storefront.SweepEvery <= 0 {
		missing = append(missing, "Storefront.SweepEvery")
	}
	// securecookie accepts 16, 24 or 32 byte AES keys.
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.Environment == "prod" && len(cfg.Session.HashKey) == 0 {
		missing = append(missing, "Session.HashKey")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
