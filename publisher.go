package resumepdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-resumepdf/internal/metrics"
)

// Origin tells callers where a published artifact lives.
type Origin string

const (
	// OriginRemote means the URL is backed by durable blob storage.
	OriginRemote Origin = "remote"
	// OriginLocal means the artifact was written to local disk; it may not
	// survive a redeployment.
	OriginLocal Origin = "local"
)

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	URL    string
	Origin Origin
	Store  string // name of the store that accepted the artifact
	Path   string // filesystem path, local origin only
}

// Object is what a RemoteStore receives.
type Object struct {
	Name  string
	Data  []byte
	Token string // per-call credential, may be empty
}

// RemoteStore uploads artifacts to durable storage.
type RemoteStore interface {
	// Name identifies the store in logs and metrics.
	Name() string
	// Active reports whether the store can be used with the given per-call token.
	Active(token string) bool
	// Put uploads obj and returns its public URL.
	Put(ctx context.Context, obj Object) (string, error)
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	Remotes       []RemoteStore // tried in order
	Local         *LocalStore   // fallback, defaults to ./public/pdfs
	RemoteRetries int           // extra attempts per remote store (default 0)
	RetryDelay    time.Duration // fixed delay between attempts
	Logger        *slog.Logger
	Recorder      metrics.Recorder
}

// Publisher uploads artifacts to the first working remote store and falls
// back to local disk when none is configured or all of them fail.
type Publisher struct {
	remotes    []RemoteStore
	local      *LocalStore
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// NewPublisher creates a Publisher.
func NewPublisher(cfg PublisherConfig) *Publisher {
	p := &Publisher{
		remotes:    cfg.Remotes,
		local:      cfg.Local,
		retries:    max(cfg.RemoteRetries, 0),
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
	}
	if p.local == nil {
		p.local = NewLocalStore(DefaultPublicDir, "")
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.recorder == nil {
		p.recorder = metrics.NoopRecorder{}
	}
	return p
}

// Publish stores data under fileName and returns a resolvable URL.
// token, when non-empty, overrides the credential configured on token-based stores.
// Remote failures are absorbed by the local fallback; a fallback failure is a *PublishError.
func (p *Publisher) Publish(ctx context.Context, data []byte, fileName, token string) (PublishResult, error) {
	if err := ValidateFileName(fileName); err != nil {
		return PublishResult{}, &PublishError{FileName: fileName, Err: err}
	}
	if len(data) == 0 {
		return PublishResult{}, &PublishError{FileName: fileName, Err: ErrEmptyArtifact}
	}

	obj := Object{Name: fileName, Data: data, Token: token}
	var remoteErrs []error
	attempted := false

	for _, store := range p.remotes {
		if !store.Active(token) {
			continue
		}
		attempted = true

		url, err := p.putWithRetry(ctx, store, obj)
		if err == nil {
			p.recorder.IncPublish(string(OriginRemote), store.Name())
			return PublishResult{URL: url, Origin: OriginRemote, Store: store.Name()}, nil
		}
		p.recorder.IncRemoteFailure(store.Name())
		p.logger.Warn("remote upload failed, trying next store", "store", store.Name(), "file", fileName, "error", err)
		remoteErrs = append(remoteErrs, fmt.Errorf("%s: %w", store.Name(), err))
	}

	// A caller that gave up must not get a local URL it never asked for.
	if err := ctx.Err(); err != nil {
		return PublishResult{}, &PublishError{FileName: fileName, Remote: remoteErrs, Err: err}
	}

	if !attempted {
		p.logger.Warn("no remote storage configured, saving PDF locally", "file", fileName)
	}

	path, url, err := p.local.Save(data, fileName)
	if err != nil {
		p.recorder.IncPublishFailure()
		p.logger.Error("local fallback failed", "file", fileName, "error", err)
		return PublishResult{}, &PublishError{FileName: fileName, Remote: remoteErrs, Err: err}
	}
	p.recorder.IncPublish(string(OriginLocal), localStoreName)
	p.logger.Warn("saved PDF locally", "path", path)

	return PublishResult{URL: url, Origin: OriginLocal, Store: localStoreName, Path: path}, nil
}

// putWithRetry makes one attempt plus the configured retries against store.
func (p *Publisher) putWithRetry(ctx context.Context, store RemoteStore, obj Object) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, p.retryDelay); err != nil {
				return "", errors.Join(lastErr, err)
			}
		}
		url, err := store.Put(ctx, obj)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ValidateFileName checks that name is a bare file name safe to use as both
// a filesystem entry and a URL path segment.
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidFileName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(name, "/\\\x00?#%"):
		return fmt.Errorf("%w: %q contains a path separator or reserved character", ErrInvalidFileName, name)
	case filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}
