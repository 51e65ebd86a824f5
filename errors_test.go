package resumepdf

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExecutableNotFoundError(t *testing.T) {
	t.Parallel()

	providerErr := errors.New("download blocked")
	err := error(&ExecutableNotFoundError{Override: "/opt/empty", ProviderErr: providerErr, Reason: "exhausted"})

	msg := err.Error()
	for _, want := range []string{"browser executable not found", "exhausted", `"/opt/empty"`, "download blocked"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Error("errors.Is(err, ErrExecutableNotFound) = false")
	}
	if !errors.Is(err, providerErr) {
		t.Error("errors.Is(err, providerErr) = false")
	}
	if errors.Is(err, ErrRender) {
		t.Error("not-found must not classify as a render failure")
	}
}

func TestExecutableNotFoundError_EmptyOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ExecutableNotFoundError
		want string
	}{
		{"nothing configured", &ExecutableNotFoundError{}, "browser executable not found"},
		{"provider only", &ExecutableNotFoundError{ProviderErr: errors.New("offline")}, "browser executable not found (runtime provider: offline)"},
		{"override only", &ExecutableNotFoundError{Override: "/opt/chrome"}, `browser executable not found (override path "/opt/chrome")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	cause := context.DeadlineExceeded
	err := renderErr(ErrPageLoad, cause)

	for _, target := range []error{ErrRender, ErrPageLoad, context.DeadlineExceeded} {
		if !errors.Is(err, target) {
			t.Errorf("errors.Is(err, %v) = false", target)
		}
	}
	if errors.Is(err, ErrBrowserLaunch) {
		t.Error("errors.Is(err, ErrBrowserLaunch) = true, want false")
	}

	var re *RenderError
	if !errors.As(err, &re) || re.Stage != ErrPageLoad {
		t.Errorf("errors.As() stage = %v, want ErrPageLoad", re)
	}
	if got := (&RenderError{Stage: ErrPDFGeneration}).Error(); got != "PDF render failed: PDF generation failed" {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestPublishError(t *testing.T) {
	t.Parallel()

	err := error(&PublishError{
		FileName: "abc.pdf",
		Remote:   []error{errors.New("blob: 503"), errors.New("s3: access denied")},
		Err:      errors.New("read-only file system"),
	})

	if !errors.Is(err, ErrPublish) {
		t.Error("errors.Is(err, ErrPublish) = false")
	}
	msg := err.Error()
	for _, want := range []string{"abc.pdf", "read-only file system", "2 remote failure(s)", "blob: 503", "access denied"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
