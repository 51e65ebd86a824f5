// Package server exposes rendering and publishing over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-resumepdf"
)

// TokenHeader carries an optional per-request credential for token-based remote stores.
const TokenHeader = "X-Blob-Token"

const (
	defaultMaxBody  = 5 << 20
	shutdownTimeout = 10 * time.Second
)

// Converter is the subset of resumepdf.Converter used by the server.
type Converter interface {
	Convert(ctx context.Context, in resumepdf.Input) (*resumepdf.Result, error)
}

// Options configures a Server.
type Options struct {
	Converter      Converter
	PublicDir      string       // root of locally published files; /pdfs/{name} is served from PublicDir/pdfs
	MaxBodyBytes   int64        // largest accepted request body (default 5MB)
	MetricsHandler http.Handler // mounted on /metrics when non-nil
	Logger         *slog.Logger
}

// Server routes PDF requests to a Converter.
type Server struct {
	conv    Converter
	pdfDir  string
	maxBody int64
	metrics http.Handler
	logger  *slog.Logger

	// last published URL per resume id, for GET redirects
	mu   sync.RWMutex
	urls map[string]string
}

// New constructs a Server.
func New(opts Options) *Server {
	s := &Server{
		conv:    opts.Converter,
		pdfDir:  filepath.Join(opts.PublicDir, resumepdf.DefaultPDFSubdir),
		maxBody: opts.MaxBodyBytes,
		metrics: opts.MetricsHandler,
		logger:  opts.Logger,
		urls:    make(map[string]string),
	}
	if opts.PublicDir == "" {
		s.pdfDir = filepath.Join(resumepdf.DefaultPublicDir, resumepdf.DefaultPDFSubdir)
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBody
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the routed handler wrapped in logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/pdf/{id}", s.handleRender)
	mux.HandleFunc("GET /api/pdf/{id}", s.handleRedirect)
	mux.HandleFunc("GET /pdfs/{name}", s.handleFile)
	mux.HandleFunc("GET /healthz", handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return s.recoverer(s.requestLogger(mux))
}

// Serve handles connections on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // renders can take a while
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// ListenAndServe binds addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// renderRequest is the JSON form of a render request body.
type renderRequest struct {
	HTML string `json:"html"`
}

type renderResponse struct {
	PDFURL string `json:"pdfUrl"`
	Origin string `json:"origin"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fileName := id + ".pdf"
	if err := resumepdf.ValidateFileName(fileName); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid resume id"})
		return
	}

	html, err := s.readHTML(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(html) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "HTML content cannot be empty"})
		return
	}

	res, err := s.conv.Convert(r.Context(), resumepdf.Input{
		HTML:     html,
		FileName: fileName,
		Token:    r.Header.Get(TokenHeader),
	})
	if err != nil {
		s.logger.Error("PDF generation failed", slog.String("id", id), slog.Any("error", err))
		writeJSON(w, statusFor(err), errorResponse{Error: "Failed to generate PDF"})
		return
	}

	s.mu.Lock()
	s.urls[id] = res.Publish.URL
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, renderResponse{PDFURL: res.Publish.URL, Origin: string(res.Publish.Origin)})
}

// readHTML accepts either a raw HTML body or JSON {"html": "..."}.
func (s *Server) readHTML(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return "", err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(body), nil
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("invalid JSON body: %v", err)
	}
	return req.HTML, nil
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.RLock()
	u, ok := s.urls[id]
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "PDF not found"})
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if resumepdf.ValidateFileName(name) != nil {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.pdfDir, name)
	f, err := os.Open(path) // #nosec G304 -- name validated as a bare file name
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// statusFor maps conversion errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, resumepdf.ErrEmptyHTML), errors.Is(err, resumepdf.ErrInvalidFileName):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, resumepdf.ErrExecutableNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
