package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: CodeUnknown},
		{name: "plain error", err: cause, want: CodeUnknown},
		{name: "config", err: NewConfigError("bad", cause), want: CodeConfig},
		{name: "authorization", err: NewAuthorizationError(42), want: CodeAuthorization},
		{name: "persistence", err: NewPersistenceError("append", cause), want: CodePersistence},
		{name: "delivery", err: NewDeliveryError("send", cause), want: CodeDelivery},
		{name: "scheduling", err: NewSchedulingError("cycle", cause), want: CodeScheduling},
		{name: "wrapped", err: fmt.Errorf("outer: %w", NewPersistenceError("list", cause)), want: CodePersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewPersistenceError("append note", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("errors.Is(%v, DeadlineExceeded) = false", err)
	}
	if got, want := err.Error(), "append note: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !HasCode(err, CodePersistence) {
		t.Error("HasCode(CodePersistence) = false")
	}
	if HasCode(nil, CodeUnknown) {
		t.Error("HasCode(nil) = true")
	}
}

func TestAuthorizationErrorMessage(t *testing.T) {
	t.Parallel()

	if got, want := NewAuthorizationError(7).Error(), "sender 7 is not authorized"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
