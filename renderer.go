package resumepdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-resumepdf/internal/process"
)

// Page format constants.
const (
	PageFormatA4     = "a4"
	PageFormatLetter = "letter"
	PageFormatLegal  = "legal"
)

// Paper dimensions in inches, portrait.
var pageDimensions = map[string]struct{ width, height float64 }{
	PageFormatA4:     {8.27, 11.69},
	PageFormatLetter: {8.5, 11},
	PageFormatLegal:  {8.5, 14},
}

const (
	defaultTimeout    = 30 * time.Second
	defaultIdleWindow = 500 * time.Millisecond
)

// Chromium switches for container and serverless hosts.
var browserFlags = []flags.Flag{
	"disable-gpu",
	"disable-dev-shm-usage",
	"hide-scrollbars",
	"mute-audio",
}

// RendererConfig configures a RodRenderer.
type RendererConfig struct {
	Timeout    time.Duration // whole render deadline (default 30s)
	IdleWindow time.Duration // network quiet period before capture (default 500ms)
	PageFormat string        // a4 (default), letter, legal
	Logger     *slog.Logger
}

// RodRenderer renders HTML to PDF in a headless Chromium driven by go-rod.
// Every call launches its own browser process and tears it down before returning.
type RodRenderer struct {
	resolver ExecutableResolver
	timeout  time.Duration
	idle     time.Duration
	format   string
	logger   *slog.Logger
}

// NewRodRenderer creates a renderer that launches the executable found by resolver.
func NewRodRenderer(resolver ExecutableResolver, cfg RendererConfig) (*RodRenderer, error) {
	format, err := normalizePageFormat(cfg.PageFormat)
	if err != nil {
		return nil, err
	}
	r := &RodRenderer{
		resolver: resolver,
		timeout:  cfg.Timeout,
		idle:     cfg.IdleWindow,
		format:   format,
		logger:   cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.idle <= 0 {
		r.idle = defaultIdleWindow
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Render resolves an executable, launches it, and prints html to an A4 PDF.
// Resolution failures are returned unchanged; everything after is a *RenderError.
func (r *RodRenderer) Render(ctx context.Context, html string) (*Artifact, error) {
	if html == "" {
		return nil, ErrEmptyHTML
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidate, err := r.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sess, err := r.launch(ctx, candidate.Path)
	if err != nil {
		if inv, ok := r.resolver.(invalidator); ok {
			inv.Invalidate()
		}
		return nil, err
	}
	defer sess.release()

	r.logger.Debug("browser launched", "path", candidate.Path, "kind", candidate.Kind, "pid", sess.pid)

	data, err := sess.print(ctx, html, r.idle, r.pdfOptions())
	if err != nil {
		return nil, err
	}
	return NewArtifact(data)
}

// browserSession is one launched browser process and its CDP connection.
type browserSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	pid      int
	logger   *slog.Logger
}

func (r *RodRenderer) launch(ctx context.Context, bin string) (*browserSession, error) {
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(true).
		NoSandbox(true)
	for _, f := range browserFlags {
		l = l.Set(f)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		process.KillTree(l.PID())
		return nil, renderErr(ErrBrowserLaunch, err)
	}

	sess := &browserSession{launcher: l, pid: l.PID(), logger: r.logger}

	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		sess.release()
		return nil, renderErr(ErrBrowserConnect, err)
	}
	sess.browser = b
	return sess, nil
}

// release terminates the browser on every exit path. Close asks Chromium to
// exit gracefully; the kills cover crashed or wedged processes and their children.
func (s *browserSession) release() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Debug("browser close failed, killing process", "pid", s.pid, "error", err)
		}
	}
	s.launcher.Kill()
	process.KillTree(s.pid)
	s.launcher.Cleanup()
}

// print loads html into a fresh page, waits for the network to go idle and
// captures the PDF.
func (s *browserSession) print(ctx context.Context, html string, idle time.Duration, opts *proto.PagePrintToPDF) ([]byte, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, renderErr(ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	// The waiter must be armed before the content triggers any request.
	waitIdle := page.WaitRequestIdle(idle, nil, nil, nil)
	if err := page.SetDocumentContent(html); err != nil {
		return nil, renderErr(ErrPageLoad, err)
	}
	waitIdle()

	if err := page.WaitLoad(); err != nil {
		return nil, renderErr(ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, renderErr(ErrPageLoad, err)
	}

	reader, err := page.PDF(opts)
	if err != nil {
		return nil, renderErr(ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, renderErr(ErrPDFGeneration, fmt.Errorf("reading PDF stream: %w", err))
	}
	return data, nil
}

// pdfOptions builds the print settings: fixed paper size, no margins, backgrounds on.
func (r *RodRenderer) pdfOptions() *proto.PagePrintToPDF {
	dim := pageDimensions[r.format]
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(dim.width),
		PaperHeight:     floatPtr(dim.height),
		MarginTop:       floatPtr(0),
		MarginBottom:    floatPtr(0),
		MarginLeft:      floatPtr(0),
		MarginRight:     floatPtr(0),
		PrintBackground: true,
	}
}

// normalizePageFormat lowercases name and checks it is a known format.
// An empty name selects A4.
func normalizePageFormat(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return PageFormatA4, nil
	}
	if _, ok := pageDimensions[n]; !ok {
		return "", fmt.Errorf("%w: %q (must be a4, letter, or legal)", ErrInvalidPageFormat, name)
	}
	return n, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
