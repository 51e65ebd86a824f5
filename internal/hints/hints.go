// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-resumepdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.IsRegularFile("/.dockerenv")
}

// inCI reports whether a known CI environment variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForExecutableNotFound returns hints for an exhausted browser lookup.
// override is the configured override path, empty when none was set.
func ForExecutableNotFound(override string) string {
	var hints []string

	if override != "" {
		hints = append(hints, "point RESUMEPDF_CHROME_PATH at the chrome binary itself, or unset it")
	} else {
		hints = append(hints, "set RESUMEPDF_CHROME_PATH or use --chrome /path/to/chrome")
		hints = append(hints, "use --provider system to use an installed Chrome")
	}

	if inCI() || IsInContainer() {
		hints = append(hints, "install chromium in the image if downloads are blocked")
	}

	return formatHints(hints)
}

// ForBrowserLaunch returns hints for a browser that was found but failed to start.
func ForBrowserLaunch() string {
	var hints []string
	if inCI() || IsInContainer() {
		hints = append(hints, "containers need shared libraries such as libnss3 and a writable /tmp")
	}
	hints = append(hints, "run 'resumepdf doctor' to check the browser setup")
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow renders.
func ForTimeout() string {
	return format("for documents with many remote images, use --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/resumepdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/resumepdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForPublish returns hints for a failed local fallback.
func ForPublish(publicDir string) string {
	if publicDir == "" {
		publicDir = "public"
	}
	return format("check that " + publicDir + " is writable or configure remote storage")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
