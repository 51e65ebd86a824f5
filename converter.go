package resumepdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-resumepdf/internal/metrics"
)

// Compile-time interface implementation checks.
var (
	_ ExecutableResolver = (*Resolver)(nil)
	_ ExecutableResolver = (*CachingResolver)(nil)
	_ Renderer           = (*RodRenderer)(nil)
	_ ArtifactPublisher  = (*Publisher)(nil)
	_ RemoteStore        = (*BlobStore)(nil)
	_ RemoteStore        = (*S3Store)(nil)
)

// Converter renders HTML to PDF and publishes the result.
// Create with NewConverter(); a Converter is safe for concurrent use when
// its renderer and publisher are.
type Converter struct {
	cfg       converterConfig
	resolver  ExecutableResolver
	renderer  Renderer
	publisher ArtifactPublisher
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// NewConverter creates a Converter with default configuration: the packaged
// browser behind a caching resolver, A4 output and local-only publishing.
// Use options to customize behavior (e.g., WithResolver, WithPublisher, WithTimeout).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{timeout: defaultTimeout, idleWindow: defaultIdleWindow},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.recorder == nil {
		c.recorder = metrics.NoopRecorder{}
	}

	if c.renderer == nil {
		if c.resolver == nil {
			c.resolver = NewCachingResolver(NewResolver("", &PackagedProvider{}))
		}
		r, err := NewRodRenderer(c.resolver, RendererConfig{
			Timeout:    c.cfg.timeout,
			IdleWindow: c.cfg.idleWindow,
			PageFormat: c.cfg.pageFormat,
			Logger:     c.logger,
		})
		if err != nil {
			return nil, err
		}
		c.renderer = r
	}

	if c.publisher == nil {
		c.publisher = NewPublisher(PublisherConfig{Logger: c.logger, Recorder: c.recorder})
	}

	return c, nil
}

// Render converts html to a PDF artifact and records the outcome.
func (c *Converter) Render(ctx context.Context, html string) (*Artifact, error) {
	start := time.Now()
	art, err := c.renderer.Render(ctx, html)
	c.recorder.ObserveRender(time.Since(start), renderResult(err))
	if err != nil {
		return nil, err
	}
	return art, nil
}

// Publish stores a rendered artifact under fileName.
func (c *Converter) Publish(ctx context.Context, art *Artifact, fileName, token string) (PublishResult, error) {
	if art == nil || art.Len() == 0 {
		return PublishResult{}, &PublishError{FileName: fileName, Err: ErrEmptyArtifact}
	}
	return c.publisher.Publish(ctx, art.Bytes(), fileName, token)
}

// Convert renders input.HTML and publishes it as input.FileName.
// The file name is checked before the browser starts, so a bad name costs nothing.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during conversion", "file", input.FileName, "panic", r)
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := ValidateFileName(input.FileName); err != nil {
		return nil, &PublishError{FileName: input.FileName, Err: err}
	}

	art, err := c.Render(ctx, input.HTML)
	if err != nil {
		return nil, err
	}

	pub, err := c.Publish(ctx, art, input.FileName, input.Token)
	if err != nil {
		return nil, err
	}

	c.logger.Info("published PDF", "file", input.FileName, "origin", pub.Origin, "store", pub.Store, "bytes", art.Len())
	return &Result{Artifact: art, Publish: pub}, nil
}

// renderResult maps a render error to its metrics label.
func renderResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrExecutableNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}
