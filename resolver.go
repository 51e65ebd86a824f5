package resumepdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-resumepdf/internal/fileutil"
)

// CandidateKind records which resolution strategy produced an executable.
type CandidateKind string

const (
	KindOverride   CandidateKind = "override"
	KindPackaged   CandidateKind = "packaged"
	KindDiscovered CandidateKind = "discovered"
)

// Candidate is a resolved browser executable.
type Candidate struct {
	Path string
	Kind CandidateKind
}

// ExecutableResolver locates a browser executable for a render.
type ExecutableResolver interface {
	Resolve(ctx context.Context) (Candidate, error)
}

// Well-known executable names probed directly under a scanned directory.
// Order is significant: the first existing regular file wins.
var knownExecutables = []string{
	"chrome",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"headless_shell",
	"chrome.exe",
	"chromium.exe",
	filepath.Join("Google", "Chrome", "Application", "chrome.exe"),
	filepath.Join("Chromium", "Application", "chrome.exe"),
	filepath.Join("chrome-linux", "chrome"),
	filepath.Join("chrome-linux64", "chrome"),
	filepath.Join("chrome-win", "chrome.exe"),
	filepath.Join("chrome-mac", "Chromium.app", "Contents", "MacOS", "Chromium"),
}

// Subpaths probed inside each child directory of a scanned directory.
var nestedExecutables = []string{
	"chrome",
	"chrome.exe",
	filepath.Join("Chromium", "Application", "chrome.exe"),
	filepath.Join("Google", "Chrome", "Application", "chrome.exe"),
}

// Resolver finds a browser executable by trying, in order, an explicit
// override path and a packaged runtime provider.
// A configured override that yields nothing is a hard failure: a stale
// path (for instance in RESUMEPDF_CHROME_PATH) blocks the packaged runtime
// instead of falling through to it.
type Resolver struct {
	override string
	provider RuntimeProvider
}

// NewResolver creates a Resolver. An empty override skips straight to the provider.
func NewResolver(override string, provider RuntimeProvider) *Resolver {
	return &Resolver{override: override, provider: provider}
}

// strategy returns ok=false with a nil error when it does not apply.
// A non-nil error stops resolution.
type strategy func(ctx context.Context) (Candidate, bool, error)

// Resolve runs the strategies in order and returns the first match.
func (r *Resolver) Resolve(ctx context.Context) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	return firstMatch(ctx, r.overrideStrategy, r.packagedStrategy)
}

// firstMatch short-circuits on the first strategy that matches or fails.
func firstMatch(ctx context.Context, strategies ...strategy) (Candidate, error) {
	for _, s := range strategies {
		c, ok, err := s(ctx)
		if err != nil {
			return Candidate{}, err
		}
		if ok {
			return c, nil
		}
	}
	return Candidate{}, &ExecutableNotFoundError{Reason: "no resolution strategy matched"}
}

func (r *Resolver) overrideStrategy(_ context.Context) (Candidate, bool, error) {
	if r.override == "" {
		return Candidate{}, false, nil
	}

	info, err := os.Stat(r.override)
	if err != nil {
		return Candidate{}, false, &ExecutableNotFoundError{
			Override: r.override,
			Reason:   fmt.Sprintf("override path is not accessible: %v", err),
		}
	}
	if !info.IsDir() {
		return Candidate{Path: r.override, Kind: KindOverride}, true, nil
	}

	if found, ok := scanDir(r.override); ok {
		return Candidate{Path: found, Kind: KindOverride}, true, nil
	}
	return Candidate{}, false, &ExecutableNotFoundError{
		Override: r.override,
		Reason:   "override points to a directory but no chrome executable was found inside it",
	}
}

func (r *Resolver) packagedStrategy(ctx context.Context) (Candidate, bool, error) {
	notFound := func(err error) error {
		return &ExecutableNotFoundError{Override: r.override, ProviderErr: err}
	}

	if r.provider == nil {
		return Candidate{}, false, notFound(errors.New("no runtime provider configured"))
	}

	path, err := r.provider.ExecutablePath(ctx)
	if err != nil {
		return Candidate{}, false, notFound(err)
	}
	if path == "" {
		return Candidate{}, false, notFound(errors.New("runtime provider returned an empty path"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, false, notFound(fmt.Errorf("runtime provider returned %q which does not exist", path))
	}
	if !info.IsDir() {
		return Candidate{Path: path, Kind: KindPackaged}, true, nil
	}

	if found, ok := scanDir(path); ok {
		return Candidate{Path: found, Kind: KindDiscovered}, true, nil
	}
	return Candidate{}, false, notFound(fmt.Errorf("runtime provider returned a directory (%s) and no executable was found inside it", path))
}

// scanDir looks for a browser executable in dir: well-known names first,
// then each direct child in lexical order.
func scanDir(dir string) (string, bool) {
	for _, name := range knownExecutables {
		p := filepath.Join(dir, name)
		if fileutil.IsRegularFile(p) {
			return p, true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		info, err := os.Stat(p)
		if err != nil {
			// unreadable entries are skipped
			continue
		}
		if info.Mode().IsRegular() && looksLikeBrowser(e.Name()) {
			return p, true
		}
		if !info.IsDir() {
			continue
		}
		for _, sub := range nestedExecutables {
			sp := filepath.Join(p, sub)
			if fileutil.IsRegularFile(sp) {
				return sp, true
			}
		}
	}

	return "", false
}

// looksLikeBrowser matches executable or browser-like file names.
func looksLikeBrowser(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".exe") ||
		strings.Contains(n, "chrome") ||
		strings.Contains(n, "chromium")
}
