package hints

// Notes:
// - Tests that touch CI detection cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func TestForExecutableNotFound_NoOverride(t *testing.T) {
	clearCI(t)
	stubContainer(t, false)

	hint := ForExecutableNotFound("")

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("expected hint prefix, got %q", hint)
	}
	if !strings.Contains(hint, "RESUMEPDF_CHROME_PATH") {
		t.Error("expected RESUMEPDF_CHROME_PATH suggestion")
	}
	if !strings.Contains(hint, "--provider system") {
		t.Error("expected --provider suggestion")
	}
	if strings.Contains(hint, "image") {
		t.Error("container hint outside a container")
	}
}

func TestForExecutableNotFound_WithOverride(t *testing.T) {
	clearCI(t)
	stubContainer(t, false)

	hint := ForExecutableNotFound("/opt/chrome")

	if !strings.Contains(hint, "chrome binary itself") {
		t.Errorf("expected override hint, got %q", hint)
	}
	if strings.Contains(hint, "--provider") {
		t.Error("provider hint is irrelevant when an override is set")
	}
}

func TestForExecutableNotFound_InContainer(t *testing.T) {
	clearCI(t)
	stubContainer(t, true)

	if hint := ForExecutableNotFound(""); !strings.Contains(hint, "install chromium") {
		t.Errorf("expected container hint, got %q", hint)
	}
}

func TestForBrowserLaunch(t *testing.T) {
	clearCI(t)
	t.Setenv("CI", "true")
	stubContainer(t, false)

	hint := ForBrowserLaunch()
	if !strings.Contains(hint, "libnss3") {
		t.Errorf("expected shared library hint in CI, got %q", hint)
	}
	if !strings.Contains(hint, "resumepdf doctor") {
		t.Errorf("expected doctor hint, got %q", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
		wantNot  string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"resumepdf.yaml", "/home/u/.config/resumepdf/resumepdf.yaml"},
			want:     "or create /home/u/.config/resumepdf/resumepdf.yaml",
		},
		{
			name:     "no user config path",
			searched: []string{"resumepdf.yaml"},
			want:     "use --config",
			wantNot:  "or create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ForConfigNotFound(tt.searched)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want substring %q", got, tt.want)
			}
			if tt.wantNot != "" && strings.Contains(got, tt.wantNot) {
				t.Errorf("ForConfigNotFound() = %q, must not contain %q", got, tt.wantNot)
			}
		})
	}
}

func TestForPublish(t *testing.T) {
	t.Parallel()

	if got := ForPublish(""); !strings.Contains(got, "public is writable") {
		t.Errorf("ForPublish(\"\") = %q", got)
	}
	if got := ForPublish("/srv/www"); !strings.Contains(got, "/srv/www") {
		t.Errorf("ForPublish(/srv/www) = %q", got)
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
}
