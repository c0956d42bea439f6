package order

import (
	"errors"
	"testing"

	"github.com/kraijai/api/internal/enum"
)

var allStatuses = []string{
	enum.OrderStatusPending,
	enum.OrderStatusPreparing,
	enum.OrderStatusReady,
	enum.OrderStatusCompleted,
	enum.OrderStatusCancelled,
}

func TestCanTransition_Table(t *testing.T) {
	allowed := map[[2]string]bool{
		{enum.OrderStatusPending, enum.OrderStatusPreparing}:   true,
		{enum.OrderStatusPreparing, enum.OrderStatusReady}:     true,
		{enum.OrderStatusReady, enum.OrderStatusCompleted}:     true,
		{enum.OrderStatusPending, enum.OrderStatusCancelled}:   true,
		{enum.OrderStatusPreparing, enum.OrderStatusCancelled}: true,
		{enum.OrderStatusReady, enum.OrderStatusCancelled}:     true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			if got != allowed[[2]string{from, to}] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, got)
			}
		}
	}
}

func TestValidateTransition_Errors(t *testing.T) {
	tests := []struct {
		from, to string
		want     error
	}{
		{enum.OrderStatusPending, enum.OrderStatusPreparing, nil},
		{enum.OrderStatusPending, enum.OrderStatusReady, ErrInvalidTransition},
		{enum.OrderStatusReady, enum.OrderStatusPending, ErrInvalidTransition},
		{enum.OrderStatusPending, enum.OrderStatusPending, ErrInvalidTransition},
		{enum.OrderStatusCompleted, enum.OrderStatusCancelled, ErrTerminalStatus},
		{enum.OrderStatusCancelled, enum.OrderStatusPending, ErrTerminalStatus},
		{enum.OrderStatusPending, "shipped", ErrInvalidStatus},
	}
	for _, tt := range tests {
		err := ValidateTransition(tt.from, tt.to)
		if tt.want == nil {
			if err != nil {
				t.Errorf("%s → %s: unexpected error %v", tt.from, tt.to, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s → %s: got %v, want %v", tt.from, tt.to, err, tt.want)
		}
	}
}

func TestNextStatus(t *testing.T) {
	s := enum.OrderStatusPending
	var path []string
	for {
		next, ok := NextStatus(s)
		if !ok {
			break
		}
		path = append(path, next)
		s = next
	}
	if len(path) != 3 || path[2] != enum.OrderStatusCompleted {
		t.Fatalf("forward path: got %v", path)
	}
	if _, ok := NextStatus(enum.OrderStatusCancelled); ok {
		t.Error("cancelled has no next status")
	}
}

func TestValidateCancel(t *testing.T) {
	reason, err := ValidateCancel(enum.OrderStatusPreparing, "  customer left  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "customer left" {
		t.Errorf("reason: got %q", reason)
	}

	for _, r := range []string{"", "   ", "\t\n"} {
		if _, err := ValidateCancel(enum.OrderStatusPending, r); !errors.Is(err, ErrCancelReasonRequired) {
			t.Errorf("reason %q: expected ErrCancelReasonRequired, got: %v", r, err)
		}
	}

	if _, err := ValidateCancel(enum.OrderStatusCompleted, "oops"); !errors.Is(err, ErrTerminalStatus) {
		t.Errorf("completed: expected ErrTerminalStatus, got: %v", err)
	}
	if IsValidation(ErrTerminalStatus) {
		t.Error("terminal status is a conflict, not a validation error")
	}
}
