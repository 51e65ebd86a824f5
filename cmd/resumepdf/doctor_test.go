package main

// Notes:
// - Tests use black-box approach: testing through runDoctorCmd() observable
//   outputs, with the resolver and converter factories replaced by fakes
// - Container and CI detection depend on the host and are only checked for
//   shape, except the explicit RESUMEPDF_CONTAINER override
// - publicDirWritable is tested directly for the missing-directory walk

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/config"
)

func runDoctorJSON(t *testing.T, te *testEnv, args ...string) (*doctorResult, int) {
	t.Helper()
	code := runDoctorCmd(context.Background(), append([]string{"--json"}, args...), te.Environment)

	var result doctorResult
	if err := json.Unmarshal(te.stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, te.stdout.String())
	}
	return &result, code
}

func withResolver(te *testEnv, r resumepdf.ExecutableResolver) {
	te.NewResolver = func(*config.Config) (resumepdf.ExecutableResolver, error) { return r, nil }
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Browser resolution
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_NotFound(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, &fakeConverter{})
	result, code := runDoctorJSON(t, te, "--public-dir", t.TempDir())

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if result.Status != "errors" || result.Browser.Found {
		t.Errorf("result = %+v, want errors status and browser not found", result)
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "browser executable not found") {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestRunDoctorCmd_Found(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bin := filepath.Join(dir, "chrome")
	// Not executable: the version probe fails and becomes a warning.
	if err := os.WriteFile(bin, []byte("not a browser"), 0o644); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv(t, &fakeConverter{})
	withResolver(te, fakeResolver{cand: resumepdf.Candidate{Path: bin, Kind: resumepdf.KindOverride}})

	result, code := runDoctorJSON(t, te, "--public-dir", dir, "--chrome", bin)

	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d (errors %v)", code, ExitSuccess, result.Errors)
	}
	if !result.Browser.Found || result.Browser.Path != bin || result.Browser.Source != "override" {
		t.Errorf("Browser = %+v", result.Browser)
	}
	if result.Browser.Override != bin {
		t.Errorf("Override = %q, want %q", result.Browser.Override, bin)
	}
	if result.Status != "warnings" {
		t.Errorf("Status = %q, want warnings (version probe, local storage)", result.Status)
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH || result.Env.GOMAXPROCS < 1 {
		t.Errorf("Env = %+v", result.Env)
	}
}

func TestRunDoctorCmd_ResolverFactoryError(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, &fakeConverter{})
	te.NewResolver = func(*config.Config) (resumepdf.ExecutableResolver, error) {
		return nil, resumepdf.ErrInvalidProvider
	}

	result, code := runDoctorJSON(t, te, "--public-dir", t.TempDir())
	if code != ExitGeneral || len(result.Errors) == 0 {
		t.Errorf("code = %d, errors = %v; want failure", code, result.Errors)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Self-test
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_SelfTest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		conv      *fakeConverter
		wantState string
		wantPages int
		wantErr   bool
	}{
		{"passes", &fakeConverter{}, "passed", 1, false},
		{"render fails", &fakeConverter{renderErr: &resumepdf.RenderError{Stage: resumepdf.ErrBrowserLaunch, Err: errors.New("exec")}}, "failed", 0, true},
		{"unparseable pdf", &fakeConverter{pdf: []byte("%PDF-1.4 garbage")}, "failed", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			bin := filepath.Join(dir, "chrome")
			if err := os.WriteFile(bin, nil, 0o644); err != nil {
				t.Fatal(err)
			}
			te := newTestEnv(t, tt.conv)
			withResolver(te, fakeResolver{cand: resumepdf.Candidate{Path: bin, Kind: resumepdf.KindPackaged}})

			result, _ := runDoctorJSON(t, te, "--self-test", "--public-dir", dir)

			if result.Browser.SelfTest != tt.wantState || result.Browser.SelfTestPages != tt.wantPages {
				t.Errorf("self-test = %q/%d, want %q/%d", result.Browser.SelfTest, result.Browser.SelfTestPages, tt.wantState, tt.wantPages)
			}
			hasSelfTestErr := false
			for _, e := range result.Errors {
				if strings.Contains(e, ErrSelfTestFailed.Error()) {
					hasSelfTestErr = true
				}
			}
			if hasSelfTestErr != tt.wantErr {
				t.Errorf("self-test error reported = %v, want %v (errors %v)", hasSelfTestErr, tt.wantErr, result.Errors)
			}
		})
	}
}

func TestRunDoctorCmd_SelfTestSkippedWithoutBrowser(t *testing.T) {
	t.Parallel()

	conv := &fakeConverter{}
	te := newTestEnv(t, conv)

	result, _ := runDoctorJSON(t, te, "--self-test", "--public-dir", t.TempDir())
	if result.Browser.SelfTest != "" || len(conv.rendered) != 0 {
		t.Errorf("self-test should not run without a browser, got %q", result.Browser.SelfTest)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Storage
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_StorageMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantMode    string
		wantRemotes []string
	}{
		{"local only", nil, storageLocal, nil},
		{"blob token", []string{"--token", "tok"}, storageBlob, []string{storageBlob}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, &fakeConverter{})
			result, _ := runDoctorJSON(t, te, append(tt.args, "--public-dir", t.TempDir())...)

			if result.Storage.Mode != tt.wantMode {
				t.Errorf("Storage.Mode = %q, want %q", result.Storage.Mode, tt.wantMode)
			}
			if strings.Join(result.Storage.Remotes, ",") != strings.Join(tt.wantRemotes, ",") {
				t.Errorf("Storage.Remotes = %v, want %v", result.Storage.Remotes, tt.wantRemotes)
			}
			localWarned := false
			for _, w := range result.Warnings {
				if strings.Contains(w, "No remote storage") {
					localWarned = true
				}
			}
			if localWarned != (tt.wantMode == storageLocal) {
				t.Errorf("local-only warning = %v for mode %q", localWarned, tt.wantMode)
			}
		})
	}
}

func TestStorageMode_S3(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Storage.S3.Bucket = "cvs"
	if got := storageMode(cfg); got != storageS3 {
		t.Errorf("storageMode() = %q, want s3", got)
	}
	cfg.Storage.Blob.Token = "tok"
	if got := storageMode(cfg); got != storageBlob {
		t.Errorf("storageMode() = %q, want blob first", got)
	}
}

func TestRunDoctorCmd_PublicDirNotWritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "public")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv(t, &fakeConverter{})
	result, _ := runDoctorJSON(t, te, "--public-dir", blocker)

	if result.System.PublicDirWritable {
		t.Error("PublicDirWritable should be false when the path is a file")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "Public directory not writable") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want public directory error in local mode", result.Errors)
	}
}

func TestPublicDirWritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want bool
	}{
		{"existing dir", dir, true},
		{"missing dir under writable parent", filepath.Join(dir, "a", "b"), true},
		{"file", file, false},
		{"under a file", filepath.Join(file, "sub"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := publicDirWritable(tt.dir); got != tt.want {
				t.Errorf("publicDirWritable(%q) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Human output
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, &fakeConverter{})
	runDoctorCmd(context.Background(), []string{"--public-dir", t.TempDir()}, te.Environment)

	out := te.stdout.String()
	for _, want := range []string{"resumepdf doctor", "Browser", "Environment", "Storage", "System", "[ERROR] Not found", "Status: Not ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer - Explicit override
// ---------------------------------------------------------------------------

func TestIsContainer_Override(t *testing.T) {
	t.Setenv("RESUMEPDF_CONTAINER", "1")

	got, hint := isContainer()
	if !got || hint != "RESUMEPDF_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", got, hint)
	}
}
