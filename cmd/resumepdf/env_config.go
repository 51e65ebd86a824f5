package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-resumepdf/internal/config"
)

// envPrefix marks variables owned by resumepdf.
const envPrefix = "RESUMEPDF_"

// envConfig holds configuration from environment variables.
// Provides deploy-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // RESUMEPDF_CONFIG: config file name or path
	ChromePath string        // RESUMEPDF_CHROME_PATH (legacy CHROME_EXECUTABLE_PATH)
	Provider   string        // RESUMEPDF_BROWSER_PROVIDER: packaged, system
	Timeout    time.Duration // RESUMEPDF_TIMEOUT: render timeout
	PageFormat string        // RESUMEPDF_PAGE_FORMAT: a4, letter, legal

	// Tier 2 - Storage
	BlobToken    string // RESUMEPDF_BLOB_TOKEN (legacy VERCEL_TOKEN)
	BlobEndpoint string // RESUMEPDF_BLOB_ENDPOINT
	S3Bucket     string // RESUMEPDF_S3_BUCKET
	S3Region     string // RESUMEPDF_S3_REGION
	S3Endpoint   string // RESUMEPDF_S3_ENDPOINT
	S3AccessKey  string // RESUMEPDF_S3_ACCESS_KEY
	S3SecretKey  string // RESUMEPDF_S3_SECRET_KEY
	S3PublicURL  string // RESUMEPDF_S3_PUBLIC_URL
	S3Prefix     string // RESUMEPDF_S3_PREFIX
	PublicDir    string // RESUMEPDF_PUBLIC_DIR
	BaseURL      string // RESUMEPDF_BASE_URL (legacy NEXTAUTH_URL)

	// Tier 3 - Runtime
	Addr      string // RESUMEPDF_ADDR: serve listen address
	LogLevel  string // RESUMEPDF_LOG_LEVEL
	LogFormat string // RESUMEPDF_LOG_FORMAT
	Workers   int    // RESUMEPDF_WORKERS: parallel renders
}

// knownEnvVars lists valid RESUMEPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"RESUMEPDF_CONFIG":           true,
	"RESUMEPDF_CHROME_PATH":      true,
	"RESUMEPDF_BROWSER_PROVIDER": true,
	"RESUMEPDF_TIMEOUT":          true,
	"RESUMEPDF_PAGE_FORMAT":      true,
	// Tier 2 - Storage
	"RESUMEPDF_BLOB_TOKEN":    true,
	"RESUMEPDF_BLOB_ENDPOINT": true,
	"RESUMEPDF_S3_BUCKET":     true,
	"RESUMEPDF_S3_REGION":     true,
	"RESUMEPDF_S3_ENDPOINT":   true,
	"RESUMEPDF_S3_ACCESS_KEY": true,
	"RESUMEPDF_S3_SECRET_KEY": true,
	"RESUMEPDF_S3_PUBLIC_URL": true,
	"RESUMEPDF_S3_PREFIX":     true,
	"RESUMEPDF_PUBLIC_DIR":    true,
	"RESUMEPDF_BASE_URL":      true,
	// Tier 3 - Runtime
	"RESUMEPDF_ADDR":       true,
	"RESUMEPDF_LOG_LEVEL":  true,
	"RESUMEPDF_LOG_FORMAT": true,
	"RESUMEPDF_WORKERS":    true,
	"RESUMEPDF_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Legacy names are read only when the RESUMEPDF_* name is unset.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("RESUMEPDF_CONFIG"),
		ChromePath: firstEnv("RESUMEPDF_CHROME_PATH", "CHROME_EXECUTABLE_PATH"),
		Provider:   os.Getenv("RESUMEPDF_BROWSER_PROVIDER"),
		PageFormat: os.Getenv("RESUMEPDF_PAGE_FORMAT"),
		// Tier 2
		BlobToken:    firstEnv("RESUMEPDF_BLOB_TOKEN", "VERCEL_TOKEN"),
		BlobEndpoint: os.Getenv("RESUMEPDF_BLOB_ENDPOINT"),
		S3Bucket:     os.Getenv("RESUMEPDF_S3_BUCKET"),
		S3Region:     os.Getenv("RESUMEPDF_S3_REGION"),
		S3Endpoint:   os.Getenv("RESUMEPDF_S3_ENDPOINT"),
		S3AccessKey:  os.Getenv("RESUMEPDF_S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("RESUMEPDF_S3_SECRET_KEY"),
		S3PublicURL:  os.Getenv("RESUMEPDF_S3_PUBLIC_URL"),
		S3Prefix:     os.Getenv("RESUMEPDF_S3_PREFIX"),
		PublicDir:    os.Getenv("RESUMEPDF_PUBLIC_DIR"),
		BaseURL:      firstEnv("RESUMEPDF_BASE_URL", "NEXTAUTH_URL"),
		// Tier 3
		Addr:      os.Getenv("RESUMEPDF_ADDR"),
		LogLevel:  os.Getenv("RESUMEPDF_LOG_LEVEL"),
		LogFormat: os.Getenv("RESUMEPDF_LOG_FORMAT"),
	}

	// Parse duration for timeout
	if timeout := os.Getenv("RESUMEPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse int for workers
	if workers := os.Getenv("RESUMEPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// firstEnv returns the first non-empty value among names.
func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// warnUnknownEnvVars logs warnings for unrecognized RESUMEPDF_* variables.
// Helps catch typos like RESUMEPDF_CHROMEPATH instead of RESUMEPDF_CHROME_PATH.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable replaces the file or default value; flags are merged
// afterwards, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Browser
	setIfNotEmpty(&cfg.Browser.Path, env.ChromePath)
	setIfNotEmpty(&cfg.Browser.Provider, env.Provider)
	setIfNotEmpty(&cfg.Browser.PageFormat, env.PageFormat)
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout.String()
	}

	// Tier 2 - Storage
	setIfNotEmpty(&cfg.Storage.Blob.Token, env.BlobToken)
	setIfNotEmpty(&cfg.Storage.Blob.Endpoint, env.BlobEndpoint)
	setIfNotEmpty(&cfg.Storage.S3.Bucket, env.S3Bucket)
	setIfNotEmpty(&cfg.Storage.S3.Region, env.S3Region)
	setIfNotEmpty(&cfg.Storage.S3.Endpoint, env.S3Endpoint)
	setIfNotEmpty(&cfg.Storage.S3.AccessKey, env.S3AccessKey)
	setIfNotEmpty(&cfg.Storage.S3.SecretKey, env.S3SecretKey)
	setIfNotEmpty(&cfg.Storage.S3.PublicURL, env.S3PublicURL)
	setIfNotEmpty(&cfg.Storage.S3.Prefix, env.S3Prefix)
	setIfNotEmpty(&cfg.Storage.PublicDir, env.PublicDir)
	setIfNotEmpty(&cfg.Storage.BaseURL, env.BaseURL)

	// Tier 3 - Runtime
	setIfNotEmpty(&cfg.Server.Addr, env.Addr)
	setIfNotEmpty(&cfg.Log.Level, env.LogLevel)
	setIfNotEmpty(&cfg.Log.Format, env.LogFormat)
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
