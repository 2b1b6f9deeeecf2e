package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad symbol %q", "x")
	if !Is(err, ErrCodeInvalidInput) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if got := err.Error(); got != `INVALID_INPUT: bad symbol "x"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeInternal, cause, "write cache")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if GetCode(err) != ErrCodeInternal {
		t.Errorf("code = %s", GetCode(err))
	}
}

// Codes must survive further fmt.Errorf %w wrapping, since callers add
// context at each layer.
func TestGetCodeThroughWrapChain(t *testing.T) {
	inner := New(ErrCodeInvalidConfig, "max_nodes must be positive")
	outer := fmt.Errorf("invalid options: %w", inner)

	if GetCode(outer) != ErrCodeInvalidConfig {
		t.Errorf("code through chain = %s, want INVALID_CONFIG", GetCode(outer))
	}
	if !Is(outer, ErrCodeInvalidConfig) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
}

func TestGetCodeNonCoded(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("plain error code = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidOverride, "override 3 has empty source")
	if got := UserMessage(err); got != "override 3 has empty source" {
		t.Errorf("UserMessage = %q, should drop the code prefix", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
