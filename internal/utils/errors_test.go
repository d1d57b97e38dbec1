package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError("anchor.drop", "telemetry unavailable", fmt.Errorf("dial tcp: refused"))
	want := "anchor.drop: telemetry unavailable: dial tcp: refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := NewValidationError("anchor.setRadius", "radius must be positive")
	if bare.Error() != "anchor.setRadius: radius must be positive" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", NewValidationError("op", "msg"), KindValidation},
		{"conflict", NewConflictError("op", "msg"), KindConflict},
		{"unavailable", NewUnavailableError("op", "msg"), KindUnavailable},
		{"internal", NewAppError("op", "msg", nil), KindInternal},
		{"plain error", fmt.Errorf("boom"), KindInternal},
		{"wrapped", fmt.Errorf("outer: %w", NewConflictError("op", "msg")), KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := NewAppError("op", "msg", inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the wrapped error")
	}
}
