package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
	"github.com/alnah/go-resumepdf/internal/metrics"
)

// CLIConverter is the subset of *resumepdf.Converter the commands use.
type CLIConverter interface {
	Render(ctx context.Context, html string) (*resumepdf.Artifact, error)
	Publish(ctx context.Context, art *resumepdf.Artifact, fileName, token string) (resumepdf.PublishResult, error)
	Convert(ctx context.Context, in resumepdf.Input) (*resumepdf.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*resumepdf.Converter)(nil)

// ConverterFactory builds the pipeline for a resolved configuration.
type ConverterFactory func(ctx context.Context, cfg *config.Config, rec metrics.Recorder, logger *slog.Logger) (CLIConverter, error)

// ResolverFactory builds the browser resolver for a resolved configuration.
type ResolverFactory func(cfg *config.Config) (resumepdf.ExecutableResolver, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the factories that reach the browser and storage.
type Environment struct {
	Now          func() time.Time
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	NewConverter ConverterFactory
	NewResolver  ResolverFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		NewConverter: buildConverter,
		NewResolver:  buildResolver,
	}
}
