package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
	"github.com/alnah/go-resumepdf/internal/metrics"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake converter, resolver and environment
// ---------------------------------------------------------------------------

// onePagePDF is a structurally valid single-page PDF readable by pdfcheck.
var onePagePDF = minimalPDF(1)

// fakeConverter records calls and returns scripted results.
type fakeConverter struct {
	mu         sync.Mutex
	pdf        []byte
	renderErr  error
	publishErr error
	rendered   []string
	published  []string
}

func (f *fakeConverter) Render(_ context.Context, html string) (*resumepdf.Artifact, error) {
	f.mu.Lock()
	f.rendered = append(f.rendered, html)
	f.mu.Unlock()
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	data := f.pdf
	if data == nil {
		data = onePagePDF
	}
	return resumepdf.NewArtifact(data)
}

func (f *fakeConverter) Publish(_ context.Context, art *resumepdf.Artifact, fileName, _ string) (resumepdf.PublishResult, error) {
	f.mu.Lock()
	f.published = append(f.published, fileName)
	f.mu.Unlock()
	if f.publishErr != nil {
		return resumepdf.PublishResult{}, f.publishErr
	}
	return resumepdf.PublishResult{
		URL:    "https://cv.example.com/pdfs/" + fileName,
		Origin: resumepdf.OriginLocal,
		Store:  "local",
	}, nil
}

func (f *fakeConverter) Convert(ctx context.Context, in resumepdf.Input) (*resumepdf.Result, error) {
	art, err := f.Render(ctx, in.HTML)
	if err != nil {
		return nil, err
	}
	res, err := f.Publish(ctx, art, in.FileName, in.Token)
	if err != nil {
		return nil, err
	}
	return &resumepdf.Result{Artifact: art, Publish: res}, nil
}

func (f *fakeConverter) publishedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.published...)
}

// fakeResolver returns a fixed candidate or error.
type fakeResolver struct {
	cand resumepdf.Candidate
	err  error
}

func (f fakeResolver) Resolve(context.Context) (resumepdf.Candidate, error) {
	return f.cand, f.err
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	// received is the config handed to the converter factory.
	received *config.Config
}

func newTestEnv(t *testing.T, conv CLIConverter) *testEnv {
	t.Helper()
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewConverter: func(_ context.Context, cfg *config.Config, _ metrics.Recorder, _ *slog.Logger) (CLIConverter, error) {
			te.received = cfg
			return conv, nil
		},
		NewResolver: func(*config.Config) (resumepdf.ExecutableResolver, error) {
			return fakeResolver{err: &resumepdf.ExecutableNotFoundError{Reason: "test"}}, nil
		},
	}
	return te
}

// minimalPDF builds a structurally valid PDF with the given number of
// empty A4 pages, computing the xref offsets.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}
