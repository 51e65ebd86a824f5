package resumepdf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrEmptyHTML          = errors.New("HTML content cannot be empty")
	ErrExecutableNotFound = errors.New("browser executable not found")
	ErrRender             = errors.New("PDF render failed")
	ErrPublish            = errors.New("PDF publish failed")

	// Render stages. Always wrapped together with ErrRender.
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Publish validation.
	ErrInvalidFileName   = errors.New("invalid file name")
	ErrInvalidPageFormat = errors.New("invalid page format")
	ErrInvalidProvider   = errors.New("invalid runtime provider")
	ErrEmptyArtifact     = errors.New("artifact is empty")

	// Remote store responses.
	ErrRemoteStatus   = errors.New("unexpected remote status")
	ErrRemoteResponse = errors.New("incomplete remote response")
)

// ExecutableNotFoundError reports an exhausted executable resolution.
// It carries the configured override and the provider failure for diagnostics.
type ExecutableNotFoundError struct {
	Override    string // configured override path, may be empty
	ProviderErr error  // packaged runtime failure, nil when resolution stopped at the override
	Reason      string
}

func (e *ExecutableNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(ErrExecutableNotFound.Error())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	var details []string
	if e.Override != "" {
		details = append(details, fmt.Sprintf("override path %q", e.Override))
	}
	if e.ProviderErr != nil {
		details = append(details, fmt.Sprintf("runtime provider: %v", e.ProviderErr))
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, "; "))
	}
	return b.String()
}

func (e *ExecutableNotFoundError) Is(target error) bool {
	return target == ErrExecutableNotFound
}

func (e *ExecutableNotFoundError) Unwrap() error {
	return e.ProviderErr
}

// RenderError reports a failed render. Stage is one of the stage sentinels.
type RenderError struct {
	Stage error
	Err   error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", ErrRender, e.Stage)
	}
	return fmt.Sprintf("%v: %v: %v", ErrRender, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() []error {
	errs := []error{ErrRender}
	if e.Stage != nil {
		errs = append(errs, e.Stage)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// PublishError reports that neither remote storage nor the local fallback
// accepted the artifact. Remote holds the absorbed remote failures, if any.
type PublishError struct {
	FileName string
	Remote   []error
	Err      error
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("%v: %s: %v", ErrPublish, e.FileName, e.Err)
	if len(e.Remote) > 0 {
		msg += fmt.Sprintf(" (after %d remote failure(s): %v)", len(e.Remote), errors.Join(e.Remote...))
	}
	return msg
}

func (e *PublishError) Unwrap() []error {
	return []error{ErrPublish, e.Err}
}

func renderErr(stage, err error) error {
	return &RenderError{Stage: stage, Err: err}
}
