package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegisteredCode(t *testing.T) {
	err := New(CodeTargetNotFound)

	if err.Code != "G001" {
		t.Errorf("expected code G001, got %q", err.Code)
	}
	if err.Category != CategoryRuntime {
		t.Errorf("expected runtime category, got %q", err.Category)
	}
	if !strings.Contains(err.Error(), "G001") {
		t.Errorf("Error() should include the code: %q", err.Error())
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("G999")
	if err.Message != "Unknown error" {
		t.Errorf("expected unknown-error fallback, got %q", err.Message)
	}
	if err.Code != "G999" {
		t.Errorf("code should be preserved, got %q", err.Code)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(CodeSearchFailed).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var ge *Error
	if !stderrors.As(err, &ge) || ge.Code != CodeSearchFailed {
		t.Error("errors.As should yield the coded error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeSearchFailed) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeVaultNotFound)
	if got := FromError(orig, CodeSearchFailed); got != orig {
		t.Error("FromError should pass through an existing coded error")
	}

	wrapped := FromError(stderrors.New("boom"), CodeVaultNotFound)
	if wrapped.Code != CodeVaultNotFound || wrapped.Wrapped == nil {
		t.Errorf("FromError should wrap under the given code, got %+v", wrapped)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown command %q", "servee")
	if err.Code != "" {
		t.Errorf("Newf should not assign a code, got %q", err.Code)
	}
	if err.Error() != `unknown command "servee"` {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRegister(t *testing.T) {
	Register("G900", Template{Category: CategoryRuntime, Message: "custom"})
	if got := New("G900").Message; got != "custom" {
		t.Errorf("expected registered template, got %q", got)
	}
}
