package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
	"github.com/alnah/go-resumepdf/internal/hints"
	"github.com/alnah/go-resumepdf/internal/logging"
	"github.com/alnah/go-resumepdf/internal/metrics"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrReadHTML       = errors.New("failed to read HTML input")
	ErrWritePDF       = errors.New("failed to write PDF file")
	ErrNameWithBatch  = errors.New("--name requires a single input")
	ErrNothingToDo    = errors.New("--no-publish requires --output")
	ErrMultipleStdin  = errors.New("stdin (-) can only be read once")
	ErrUnexpectedArgs = errors.New("unexpected arguments")
	ErrConverterInit  = errors.New("failed to initialize converter")
	ErrSelfTestFailed = errors.New("self-test render failed")
)

func errUnexpectedArgs(args []string) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(args, " "))
}

// loadSettings resolves configuration with precedence
// flags > env vars > config file > defaults, and validates the result.
// The env config is returned even when loading fails.
func loadSettings(common *commonFlags, b *browserFlags, s *storageFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg := config.DefaultConfig()
	if name := configName(common, envCfg); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, envCfg, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeBrowserFlags(b, cfg)
	mergeStorageFlags(s, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, envCfg, err
	}
	return cfg, envCfg, nil
}

// configName returns the config name or path from --config, then RESUMEPDF_CONFIG.
func configName(common *commonFlags, envCfg *envConfig) string {
	if common.config != "" {
		return common.config
	}
	return envCfg.ConfigPath
}

// mergeBrowserFlags applies explicitly set browser flags over cfg.
func mergeBrowserFlags(f *browserFlags, cfg *config.Config) {
	if f.chrome != "" {
		cfg.Browser.Path = f.chrome
	}
	if f.provider != "" {
		cfg.Browser.Provider = f.provider
	}
	if f.timeout != "" {
		cfg.Browser.Timeout = f.timeout
	}
	if f.pageFormat != "" {
		cfg.Browser.PageFormat = f.pageFormat
	}
}

// mergeStorageFlags applies explicitly set storage flags over cfg.
func mergeStorageFlags(f *storageFlags, cfg *config.Config) {
	if f.publicDir != "" {
		cfg.Storage.PublicDir = f.publicDir
	}
	if f.baseURL != "" {
		cfg.Storage.BaseURL = f.baseURL
	}
	if f.token != "" {
		cfg.Storage.Blob.Token = f.token
	}
}

// initLogger installs the process logger. --quiet and --verbose override the configured level.
func initLogger(cfg *config.Config, common *commonFlags, env *Environment) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if common.verbose {
		level = slog.LevelDebug
	}
	if common.quiet {
		level = slog.LevelError
	}
	return logging.Init(level, cfg.Log.Format, env.Stderr)
}

// buildResolver wires the configured override and runtime provider behind a cache.
func buildResolver(cfg *config.Config) (resumepdf.ExecutableResolver, error) {
	provider, err := resumepdf.ProviderByName(cfg.Browser.Provider, cfg.Browser.CacheDir)
	if err != nil {
		return nil, err
	}
	return resumepdf.NewCachingResolver(resumepdf.NewResolver(cfg.Browser.Path, provider)), nil
}

// buildRemotes returns the remote stores in publish order: blob, then S3.
// The blob store is always registered so a per-request token can activate it.
func buildRemotes(ctx context.Context, st config.StorageConfig) ([]resumepdf.RemoteStore, error) {
	remotes := []resumepdf.RemoteStore{
		resumepdf.NewBlobStore(resumepdf.BlobConfig{
			Endpoint: st.Blob.Endpoint,
			Token:    st.Blob.Token,
		}),
	}

	if st.S3.Bucket != "" {
		s3, err := resumepdf.NewS3Store(ctx, resumepdf.S3Config{
			Bucket:       st.S3.Bucket,
			Region:       st.S3.Region,
			Endpoint:     st.S3.Endpoint,
			AccessKey:    st.S3.AccessKey,
			SecretKey:    st.S3.SecretKey,
			PublicURL:    st.S3.PublicURL,
			Prefix:       st.S3.Prefix,
			UsePathStyle: st.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, s3)
	}
	return remotes, nil
}

// buildConverter is the production ConverterFactory.
func buildConverter(ctx context.Context, cfg *config.Config, rec metrics.Recorder, logger *slog.Logger) (CLIConverter, error) {
	resolver, err := buildResolver(cfg)
	if err != nil {
		return nil, err
	}
	remotes, err := buildRemotes(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConverterInit, err)
	}

	pub := resumepdf.NewPublisher(resumepdf.PublisherConfig{
		Remotes:       remotes,
		Local:         resumepdf.NewLocalStore(cfg.Storage.PublicDir, cfg.Storage.BaseURL),
		RemoteRetries: cfg.Storage.RemoteRetries,
		RetryDelay:    cfg.Storage.RetryDelayDuration(),
		Logger:        logger.With(slog.String("component", "publisher")),
		Recorder:      rec,
	})

	conv, err := resumepdf.NewConverter(
		resumepdf.WithResolver(resolver),
		resumepdf.WithTimeout(cfg.Browser.TimeoutDuration()),
		resumepdf.WithIdleWindow(cfg.Browser.IdleWindowDuration()),
		resumepdf.WithPageFormat(cfg.Browser.PageFormat),
		resumepdf.WithPublisher(pub),
		resumepdf.WithLogger(logger),
		resumepdf.WithRecorder(rec),
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// describeError renders err for the terminal with an actionable hint when one applies.
func describeError(err error, publicDir, cfgName string) string {
	msg := err.Error()

	var notFound *resumepdf.ExecutableNotFoundError
	switch {
	case errors.As(err, &notFound):
		return msg + hints.ForExecutableNotFound(notFound.Override)
	case errors.Is(err, context.DeadlineExceeded):
		return msg + hints.ForTimeout()
	case errors.Is(err, resumepdf.ErrBrowserLaunch):
		return msg + hints.ForBrowserLaunch()
	case errors.Is(err, resumepdf.ErrPublish) && !errors.Is(err, resumepdf.ErrInvalidFileName):
		return msg + hints.ForPublish(publicDir)
	case errors.Is(err, config.ErrConfigNotFound):
		return msg + hints.ForConfigNotFound(config.SearchPaths(cfgName))
	}
	return msg
}
