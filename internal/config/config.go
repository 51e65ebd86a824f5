package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-resumepdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxFileSize limits config input to prevent memory exhaustion (1MB).
const MaxFileSize = 1 << 20

// MaxRemoteRetries caps extra attempts per remote store.
const MaxRemoteRetries = 5

// Defaults applied when a field is empty.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultIdleWindow = 500 * time.Millisecond
	DefaultRetryDelay = time.Second
	DefaultAddr       = ":8080"
	DefaultMaxBody    = 5 << 20
)

// Config holds all configuration for rendering and publishing.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// BrowserConfig defines how the headless browser is found and driven.
type BrowserConfig struct {
	Path       string `yaml:"path"`       // Override: executable or directory to scan (empty = provider)
	Provider   string `yaml:"provider"`   // "packaged" (default) or "system"
	CacheDir   string `yaml:"cacheDir"`   // Packaged browser download dir (empty = rod default)
	Timeout    string `yaml:"timeout"`    // Whole render deadline, Go duration (default 30s)
	IdleWindow string `yaml:"idleWindow"` // Network quiet period before capture (default 500ms)
	PageFormat string `yaml:"pageFormat"` // "a4" (default), "letter", "legal"
}

// StorageConfig defines where published PDFs go.
type StorageConfig struct {
	PublicDir     string     `yaml:"publicDir"`     // Local fallback root (default "public")
	BaseURL       string     `yaml:"baseURL"`       // Prefix for local URLs (empty = root-relative)
	RemoteRetries int        `yaml:"remoteRetries"` // Extra attempts per remote store (default 0)
	RetryDelay    string     `yaml:"retryDelay"`    // Delay between attempts (default 1s)
	Blob          BlobConfig `yaml:"blob"`
	S3            S3Config   `yaml:"s3"`
}

// BlobConfig defines the token-authenticated blob API.
type BlobConfig struct {
	Token    string `yaml:"token"`    // Empty disables the blob store
	Endpoint string `yaml:"endpoint"` // Registration endpoint (empty = default)
}

// S3Config defines an S3-compatible bucket.
type S3Config struct {
	Bucket       string `yaml:"bucket"` // Empty disables the S3 store
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"accessKey"`
	SecretKey    string `yaml:"secretKey"`
	PublicURL    string `yaml:"publicURL"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// ServerConfig defines the HTTP server.
type ServerConfig struct {
	Addr         string `yaml:"addr"`         // Listen address (default ":8080")
	MaxBodyBytes int64  `yaml:"maxBodyBytes"` // Largest accepted HTML body (default 5MB)
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info (default), warn, error
	Format string `yaml:"format"` // text (default) or json
}

// DefaultConfig returns a configuration with no override, the packaged
// browser, and local-only storage.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{Provider: "packaged", PageFormat: "a4"},
		Storage: StorageConfig{PublicDir: "public"},
		Server:  ServerConfig{Addr: DefaultAddr, MaxBodyBytes: DefaultMaxBody},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks enumerations, durations and URLs.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually or merge environment overrides.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Browser.Provider) {
	case "", "packaged", "system":
	default:
		return fmt.Errorf("%w: browser.provider %q (must be packaged or system)", ErrInvalidValue, c.Browser.Provider)
	}

	switch strings.ToLower(c.Browser.PageFormat) {
	case "", "a4", "letter", "legal":
	default:
		return fmt.Errorf("%w: browser.pageFormat %q (must be a4, letter, or legal)", ErrInvalidValue, c.Browser.PageFormat)
	}

	if _, err := parseDuration("browser.timeout", c.Browser.Timeout, DefaultTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("browser.idleWindow", c.Browser.IdleWindow, DefaultIdleWindow); err != nil {
		return err
	}
	if _, err := parseDuration("storage.retryDelay", c.Storage.RetryDelay, DefaultRetryDelay); err != nil {
		return err
	}

	if c.Storage.RemoteRetries < 0 || c.Storage.RemoteRetries > MaxRemoteRetries {
		return fmt.Errorf("%w: storage.remoteRetries must be between 0 and %d, got %d", ErrInvalidValue, MaxRemoteRetries, c.Storage.RemoteRetries)
	}

	for field, u := range map[string]string{
		"storage.baseURL":       c.Storage.BaseURL,
		"storage.blob.endpoint": c.Storage.Blob.Endpoint,
		"storage.s3.endpoint":   c.Storage.S3.Endpoint,
		"storage.s3.publicURL":  c.Storage.S3.PublicURL,
	} {
		if u != "" && !fileutil.IsURL(u) {
			return fmt.Errorf("%w: %s %q must be an http(s) URL", ErrInvalidValue, field, u)
		}
	}

	if (c.Storage.S3.AccessKey == "") != (c.Storage.S3.SecretKey == "") {
		return fmt.Errorf("%w: storage.s3.accessKey and storage.s3.secretKey must be set together", ErrInvalidValue)
	}

	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes cannot be negative", ErrInvalidValue)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}

	return nil
}

// TimeoutDuration returns the render deadline.
func (b BrowserConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration("", b.Timeout, DefaultTimeout)
	return d
}

// IdleWindowDuration returns the network quiet period.
func (b BrowserConfig) IdleWindowDuration() time.Duration {
	d, _ := parseDuration("", b.IdleWindow, DefaultIdleWindow)
	return d
}

// RetryDelayDuration returns the delay between remote attempts.
func (s StorageConfig) RetryDelayDuration() time.Duration {
	d, _ := parseDuration("", s.RetryDelay, DefaultRetryDelay)
	return d
}

// parseDuration parses a positive Go duration, returning def for empty or invalid input.
func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, field, value, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig, rejecting unknown fields, and validates the result.
func Parse(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrConfigParse)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "resumepdf", name+ext))
		}
	}
	return paths
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations:
// current directory first, then ~/.config/resumepdf/, trying .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.IsRegularFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
