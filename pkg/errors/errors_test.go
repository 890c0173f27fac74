// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/rulesmith/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "source not found",
			wantStr: "[NOT_FOUND] source not found",
		},
		{
			name:    "symlink_escape_error",
			code:    errors.ErrSymlinkEscape,
			message: "source escapes project root",
			wantStr: "[SYMLINK_ESCAPE] source escapes project root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := stderrors.New("permission denied")
	err := errors.Wrap(inner, errors.ErrFileWrite, "writing CLAUDE.md")

	if !stderrors.Is(err, inner) {
		t.Error("wrapped error should match with errors.Is")
	}
	want := "[FILE_WRITE] writing CLAUDE.md: permission denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Wrap(nil, errors.ErrFileWrite, "noop") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrAgentUnknown, "no agent %q", "emacs")
	wrapped := errors.Wrap(err, errors.ErrInternal, "outer")

	if !errors.IsErrorCode(err, errors.ErrAgentUnknown) {
		t.Error("IsErrorCode should match the direct code")
	}
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		t.Error("IsErrorCode should not match a different code")
	}
	// The outermost code wins for wrapped chains.
	if got := errors.GetErrorCode(wrapped); got != errors.ErrInternal {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrInternal)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(plain) = %v, want %v", got, errors.ErrUnknown)
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrSymlinkCreate, "link failed").
		WithDetail("source", "rules/base.md").
		WithDetail("destination", ".cursor/rules/base.mdc")

	details := errors.GetErrorDetails(err)
	if details["source"] != "rules/base.md" {
		t.Errorf("detail source = %v", details["source"])
	}
	if details["destination"] != ".cursor/rules/base.mdc" {
		t.Errorf("detail destination = %v", details["destination"])
	}
}
