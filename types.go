package resumepdf

import (
	"context"
	"log/slog"
	"time"

	"github.com/alnah/go-resumepdf/internal/metrics"
)

// Input contains the data for a single render-and-publish call.
type Input struct {
	HTML     string // required, complete HTML document
	FileName string // bare name of the published file, e.g. "abc123.pdf"
	Token    string // optional credential for token-based remote stores
}

// Result is the outcome of a successful Convert.
type Result struct {
	Artifact *Artifact
	Publish  PublishResult
}

// Renderer turns HTML into a PDF artifact.
type Renderer interface {
	Render(ctx context.Context, html string) (*Artifact, error)
}

// ArtifactPublisher stores PDF bytes and returns where they can be fetched.
type ArtifactPublisher interface {
	Publish(ctx context.Context, data []byte, fileName, token string) (PublishResult, error)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds settings used to build the default renderer.
type converterConfig struct {
	timeout    time.Duration
	idleWindow time.Duration
	pageFormat string
}

// WithTimeout sets the render deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("resumepdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithIdleWindow sets how long the network must stay quiet before capture.
func WithIdleWindow(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.idleWindow = d
	}
}

// WithPageFormat sets the paper size: a4 (default), letter or legal.
func WithPageFormat(name string) Option {
	return func(c *Converter) {
		c.cfg.pageFormat = name
	}
}

// WithResolver sets the executable resolver used by the default renderer.
// Ignored when WithRenderer is also given.
func WithResolver(r ExecutableResolver) Option {
	return func(c *Converter) {
		c.resolver = r
	}
}

// WithRenderer replaces the go-rod renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithPublisher replaces the default local-only publisher.
func WithPublisher(p ArtifactPublisher) Option {
	return func(c *Converter) {
		c.publisher = p
	}
}

// WithLogger sets the logger for the converter and the components it builds.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Converter) {
		c.recorder = r
	}
}
