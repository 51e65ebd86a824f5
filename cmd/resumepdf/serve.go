package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-resumepdf/internal/logging"
	"github.com/alnah/go-resumepdf/internal/metrics"
	"github.com/alnah/go-resumepdf/internal/server"
)

// runServe executes the serve command and returns an exit code.
// It blocks until ctx is canceled, then shuts the server down gracefully.
func runServe(ctx context.Context, args []string, env *Environment) int {
	f, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return parseFailureExit(err, env)
	}

	cfg, envCfg, err := loadSettings(&f.common, &f.browser, &f.storage, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, "", configName(&f.common, envCfg)))
		return exitCodeFor(err)
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	logger := initLogger(cfg, &f.common, env)

	recorder := metrics.NewPrometheusRecorder(nil)
	conv, err := env.NewConverter(ctx, cfg, recorder, logger)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, cfg.Storage.PublicDir, ""))
		return exitCodeFor(err)
	}

	srv := server.New(server.Options{
		Converter:      conv,
		PublicDir:      cfg.Storage.PublicDir,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MetricsHandler: recorder.Handler(),
		Logger:         logging.New("server"),
	})

	logger.Info("serving",
		slog.String("addr", cfg.Server.Addr),
		slog.String("publicDir", cfg.Storage.PublicDir),
		slog.String("storage", storageMode(cfg)))

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitGeneral
	}
	return ExitSuccess
}
