package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-resumepdf/internal/config"
	"github.com/alnah/go-resumepdf/internal/fileutil"
	"github.com/alnah/go-resumepdf/internal/logging"
	"github.com/alnah/go-resumepdf/internal/metrics"
	"github.com/alnah/go-resumepdf/internal/pdfcheck"
)

// versionProbeTimeout bounds "chrome --version".
const versionProbeTimeout = 5 * time.Second

// selfTestHTML is rendered by --self-test; it must fit on one page.
const selfTestHTML = `<!doctype html><html><body><h1>resumepdf self-test</h1></body></html>`

// Storage modes reported by doctor and serve.
const (
	storageLocal = "local"
	storageBlob  = "blob"
	storageS3    = "s3"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	Storage  storageInfo `json:"storage"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds executable resolution results.
type browserInfo struct {
	Provider      string `json:"provider"`
	Override      string `json:"override,omitempty"`
	Found         bool   `json:"found"`
	Path          string `json:"path,omitempty"`
	Source        string `json:"source,omitempty"` // override, packaged, discovered
	Version       string `json:"version,omitempty"`
	Sandbox       bool   `json:"sandbox"`
	SelfTest      string `json:"self_test,omitempty"` // "passed", "failed"; empty when not run
	SelfTestPages int    `json:"self_test_pages,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	GOMAXPROCS    int    `json:"gomaxprocs"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// storageInfo describes where PDFs will be published.
type storageInfo struct {
	Mode      string   `json:"mode"` // first remote that will be tried, or local
	Remotes   []string `json:"remotes,omitempty"`
	PublicDir string   `json:"public_dir"`
	BaseURL   string   `json:"base_url,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable      bool `json:"temp_writable"`
	PublicDirWritable bool `json:"public_dir_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return parseFailureExit(err, env)
	}

	cfg, envCfg, err := loadSettings(&f.common, &f.browser, &f.storage, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, "", configName(&f.common, envCfg)))
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, cfg, f.selfTest, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, selfTest bool, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	checkBrowser(ctx, cfg, env, result)
	if selfTest && result.Browser.Found {
		checkSelfTest(ctx, cfg, env, result)
	}
	checkEnvironment(result)
	checkStorage(cfg, result)
	checkSystem(cfg, result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkBrowser resolves the executable exactly as a render would.
func checkBrowser(ctx context.Context, cfg *config.Config, env *Environment, result *doctorResult) {
	result.Browser.Provider = cfg.Browser.Provider
	result.Browser.Override = cfg.Browser.Path
	// Chromium is always launched with --no-sandbox.
	result.Browser.Sandbox = false

	resolver, err := env.NewResolver(cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	cand, err := resolver.Resolve(ctx)
	if err != nil {
		result.Errors = append(result.Errors, describeError(err, cfg.Storage.PublicDir, ""))
		return
	}

	result.Browser.Found = true
	result.Browser.Path = cand.Path
	result.Browser.Source = string(cand.Kind)

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, cand.Path, "--version").Output() // #nosec G204 -- resolved browser path
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
	}
}

// checkSelfTest renders a one-page document and verifies the PDF.
func checkSelfTest(ctx context.Context, cfg *config.Config, env *Environment, result *doctorResult) {
	result.Browser.SelfTest = "failed"

	conv, err := env.NewConverter(ctx, cfg, metrics.NoopRecorder{}, logging.Discard())
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%v: %v", ErrSelfTestFailed, err))
		return
	}
	art, err := conv.Render(ctx, selfTestHTML)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%v: %s", ErrSelfTestFailed, describeError(err, "", "")))
		return
	}
	pages, err := pdfcheck.PageCount(art.Bytes())
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%v: %v", ErrSelfTestFailed, err))
		return
	}

	result.Browser.SelfTest = "passed"
	result.Browser.SelfTestPages = pages
	if pages != 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Self-test produced %d pages, expected 1", pages))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer()

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("RESUMEPDF_CONTAINER") == "1" {
		return true, "RESUMEPDF_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkStorage reports which stores a publish will try.
func checkStorage(cfg *config.Config, result *doctorResult) {
	result.Storage = storageInfo{
		Mode:      storageMode(cfg),
		Remotes:   remoteNames(cfg),
		PublicDir: cfg.Storage.PublicDir,
		BaseURL:   cfg.Storage.BaseURL,
	}

	if result.Storage.Mode == storageLocal {
		result.Warnings = append(result.Warnings,
			"No remote storage configured; PDFs are written to local disk and may not survive a redeploy")
	}
	if cfg.Storage.S3.Bucket != "" && cfg.Storage.S3.PublicURL == "" && cfg.Storage.S3.Endpoint == "" {
		result.Warnings = append(result.Warnings,
			"storage.s3.publicURL is not set; returned URLs use the virtual-hosted AWS form")
	}
}

// remoteNames lists the remote stores active without a per-request token, in publish order.
func remoteNames(cfg *config.Config) []string {
	var names []string
	if cfg.Storage.Blob.Token != "" {
		names = append(names, storageBlob)
	}
	if cfg.Storage.S3.Bucket != "" {
		names = append(names, storageS3)
	}
	return names
}

// storageMode names the first store a publish will try.
func storageMode(cfg *config.Config) string {
	if names := remoteNames(cfg); len(names) > 0 {
		return names[0]
	}
	return storageLocal
}

// checkSystem verifies system requirements.
func checkSystem(cfg *config.Config, result *doctorResult) {
	// Chromium writes its profile under the temp directory
	tmpDir := os.TempDir()
	if fileutil.DirWritable(tmpDir) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	}

	if publicDirWritable(cfg.Storage.PublicDir) {
		result.System.PublicDirWritable = true
	} else if result.Storage.Mode == storageLocal {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Public directory not writable: %s", cfg.Storage.PublicDir))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Public directory not writable: %s (local fallback will fail)", cfg.Storage.PublicDir))
	}
}

// publicDirWritable checks dir, or its nearest existing ancestor when dir
// does not exist yet, since the local store creates it on first publish.
func publicDirWritable(dir string) bool {
	if dir == "" {
		dir = "."
	}
	for {
		if fileutil.IsDir(dir) {
			return fileutil.DirWritable(dir)
		}
		if _, err := os.Lstat(dir); err == nil {
			return false // exists but is not a directory
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "resumepdf doctor")
	fmt.Fprintln(w)

	// Browser section
	fmt.Fprintln(w, "Browser")
	fmt.Fprintf(w, "  [OK] Provider: %s\n", r.Browser.Provider)
	if r.Browser.Override != "" {
		fmt.Fprintf(w, "  [OK] Override: %s\n", r.Browser.Override)
	}
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s (%s)\n", r.Browser.Path, r.Browser.Source)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		fmt.Fprintln(w, "  [OK] Sandbox: disabled (--no-sandbox)")
		switch r.Browser.SelfTest {
		case "passed":
			fmt.Fprintf(w, "  [OK] Self-test: %d page PDF\n", r.Browser.SelfTestPages)
		case "failed":
			fmt.Fprintln(w, "  [ERROR] Self-test: failed")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.Env.GOMAXPROCS)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// Storage section
	fmt.Fprintln(w, "Storage")
	if r.Storage.Mode == storageLocal {
		fmt.Fprintln(w, "  [WARN] Mode: local only")
	} else {
		fmt.Fprintf(w, "  [OK] Mode: %s (remotes: %s)\n", r.Storage.Mode, strings.Join(r.Storage.Remotes, ", "))
	}
	if r.System.PublicDirWritable {
		fmt.Fprintf(w, "  [OK] Public directory: %s (writable)\n", r.Storage.PublicDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Public directory: %s (not writable)\n", r.Storage.PublicDir)
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
