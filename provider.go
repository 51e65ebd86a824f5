package resumepdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// Runtime provider names accepted by ProviderByName.
const (
	ProviderPackaged = "packaged"
	ProviderSystem   = "system"
)

// RuntimeProvider supplies the path of a packaged or extracted browser.
// The returned path may be a file or a directory to scan.
type RuntimeProvider interface {
	ExecutablePath(ctx context.Context) (string, error)
}

// RuntimeProviderFunc adapts a function to RuntimeProvider.
type RuntimeProviderFunc func(ctx context.Context) (string, error)

func (f RuntimeProviderFunc) ExecutablePath(ctx context.Context) (string, error) {
	return f(ctx)
}

// PackagedProvider uses rod's browser manager, which downloads a pinned
// Chromium revision into a cache directory on first use.
type PackagedProvider struct {
	// CacheDir overrides rod's default download directory when non-empty.
	CacheDir string
}

// ExecutablePath returns the cached Chromium binary, downloading it if needed.
func (p *PackagedProvider) ExecutablePath(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	if p.CacheDir != "" {
		b.RootDir = p.CacheDir
	}
	path, err := b.Get()
	if err != nil {
		return "", fmt.Errorf("extracting packaged chromium: %w", err)
	}
	return path, nil
}

// SystemProvider looks for a browser installed on the host.
type SystemProvider struct {
	lookPath func() (string, bool)
}

// ExecutablePath returns the first browser found in the usual install locations.
func (p *SystemProvider) ExecutablePath(_ context.Context) (string, error) {
	look := p.lookPath
	if look == nil {
		look = launcher.LookPath
	}
	path, found := look()
	if !found {
		return "", errors.New("no chrome or chromium installation found on this host")
	}
	return path, nil
}

// ProviderByName maps a configured provider name to a RuntimeProvider.
// An empty name selects the packaged provider.
func ProviderByName(name, cacheDir string) (RuntimeProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderPackaged:
		return &PackagedProvider{CacheDir: cacheDir}, nil
	case ProviderSystem:
		return &SystemProvider{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidProvider, name, ProviderPackaged, ProviderSystem)
	}
}
