package main

// Notes:
// - loadSettings: we test the full precedence chain flags > env > file >
//   defaults. Uses t.Setenv, so no t.Parallel().
// - buildRemotes/buildConverter: built offline; S3 uses static credentials
//   so the AWS default chain never reaches the network.
// - describeError: we test that each error class gets its hint.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
	"github.com/alnah/go-resumepdf/internal/logging"
	"github.com/alnah/go-resumepdf/internal/metrics"
)

// ---------------------------------------------------------------------------
// TestLoadSettings - Precedence
// ---------------------------------------------------------------------------

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cv.yaml")
	yaml := "browser:\n  pageFormat: letter\n  timeout: 10s\nstorage:\n  publicDir: /file\n  baseURL: https://file.test\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RESUMEPDF_CONFIG", cfgPath)
	t.Setenv("RESUMEPDF_PAGE_FORMAT", "legal")
	t.Setenv("RESUMEPDF_PUBLIC_DIR", "/env")

	te := newTestEnv(t, &fakeConverter{})
	common := &commonFlags{}
	browser := &browserFlags{pageFormat: "a4"}
	storage := &storageFlags{}

	cfg, _, err := loadSettings(common, browser, storage, te.Environment)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	got := map[string]string{
		"pageFormat": cfg.Browser.PageFormat, // flag
		"publicDir":  cfg.Storage.PublicDir,  // env
		"timeout":    cfg.Browser.Timeout,    // file
		"baseURL":    cfg.Storage.BaseURL,    // file
		"provider":   cfg.Browser.Provider,   // default
	}
	want := map[string]string{
		"pageFormat": "a4",
		"publicDir":  "/env",
		"timeout":    "10s",
		"baseURL":    "https://file.test",
		"provider":   "packaged",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("precedence mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_ConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("RESUMEPDF_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "flag.yaml")
	if err := os.WriteFile(cfgPath, []byte("log:\n  format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv(t, &fakeConverter{})
	cfg, _, err := loadSettings(&commonFlags{config: cfgPath}, &browserFlags{}, &storageFlags{}, te.Environment)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json from --config file", cfg.Log.Format)
	}
}

func TestLoadSettings_EnvValidated(t *testing.T) {
	t.Setenv("RESUMEPDF_LOG_FORMAT", "xml")

	te := newTestEnv(t, &fakeConverter{})
	_, envCfg, err := loadSettings(&commonFlags{}, &browserFlags{}, &storageFlags{}, te.Environment)
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("loadSettings() error = %v, want ErrInvalidValue", err)
	}
	if envCfg == nil {
		t.Error("env config should be returned even on error")
	}
}

// ---------------------------------------------------------------------------
// TestBuild - Production wiring
// ---------------------------------------------------------------------------

func TestBuildRemotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		storage config.StorageConfig
		want    []string
	}{
		{"blob only", config.StorageConfig{}, []string{"blob"}},
		{
			name: "blob then s3",
			storage: config.StorageConfig{S3: config.S3Config{
				Bucket: "cvs", Region: "auto", Endpoint: "https://r2.test",
				AccessKey: "ak", SecretKey: "sk",
			}},
			want: []string{"blob", "s3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			remotes, err := buildRemotes(context.Background(), tt.storage)
			if err != nil {
				t.Fatalf("buildRemotes() error = %v", err)
			}
			var names []string
			for _, r := range remotes {
				names = append(names, r.Name())
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("remote order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildResolver(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	r, err := buildResolver(cfg)
	if err != nil {
		t.Fatalf("buildResolver() error = %v", err)
	}
	if _, ok := r.(*resumepdf.CachingResolver); !ok {
		t.Errorf("resolver = %T, want *CachingResolver", r)
	}

	cfg.Browser.Provider = "flatpak"
	if _, err := buildResolver(cfg); !errors.Is(err, resumepdf.ErrInvalidProvider) {
		t.Errorf("buildResolver() error = %v, want ErrInvalidProvider", err)
	}
}

func TestBuildConverter(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Storage.PublicDir = t.TempDir()

	conv, err := buildConverter(context.Background(), cfg, metrics.NoopRecorder{}, logging.Discard())
	if err != nil {
		t.Fatalf("buildConverter() error = %v", err)
	}
	if _, ok := conv.(*resumepdf.Converter); !ok {
		t.Errorf("converter = %T, want *resumepdf.Converter", conv)
	}

	// Publishing does not need the browser; with no token it lands locally.
	art, err := resumepdf.NewArtifact(onePagePDF)
	if err != nil {
		t.Fatal(err)
	}
	res, err := conv.Publish(context.Background(), art, "wired.pdf", "")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Origin != resumepdf.OriginLocal || res.URL != "/pdfs/wired.pdf" {
		t.Errorf("Publish() = %+v, want local /pdfs/wired.pdf", res)
	}
}

// ---------------------------------------------------------------------------
// TestDescribeError - Hints
// ---------------------------------------------------------------------------

func TestDescribeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{"not found with override", &resumepdf.ExecutableNotFoundError{Override: "/opt/chrome"}, "RESUMEPDF_CHROME_PATH"},
		{"not found without override", &resumepdf.ExecutableNotFoundError{}, "--provider system"},
		{"timeout", &resumepdf.RenderError{Stage: resumepdf.ErrPageLoad, Err: context.DeadlineExceeded}, "--timeout"},
		{"launch", &resumepdf.RenderError{Stage: resumepdf.ErrBrowserLaunch, Err: errors.New("exec")}, "resumepdf doctor"},
		{"publish", &resumepdf.PublishError{FileName: "x.pdf", Err: os.ErrPermission}, "/srv/public is writable"},
		{"config not found", config.ErrConfigNotFound, "--config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := describeError(tt.err, "/srv/public", "cv")
			if !strings.HasPrefix(got, tt.err.Error()) {
				t.Errorf("describeError() = %q, should start with the error", got)
			}
			if !strings.Contains(got, tt.wantHint) {
				t.Errorf("describeError() = %q, want hint containing %q", got, tt.wantHint)
			}
		})
	}

	plain := errors.New("boom")
	invalidName := &resumepdf.PublishError{FileName: "../x", Err: resumepdf.ErrInvalidFileName}
	for _, err := range []error{plain, invalidName} {
		if got := describeError(err, "", ""); strings.Contains(got, "hint:") {
			t.Errorf("describeError(%v) = %q, want no hint", err, got)
		}
	}
}
