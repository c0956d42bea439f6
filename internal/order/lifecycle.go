package order

import (
	"fmt"
	"strings"

	"github.com/kraijai/api/internal/enum"
)

// forward maps each non-terminal status to its single forward successor.
var forward = map[string]string{
	enum.OrderStatusPending:   enum.OrderStatusPreparing,
	enum.OrderStatusPreparing: enum.OrderStatusReady,
	enum.OrderStatusReady:     enum.OrderStatusCompleted,
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
		enum.OrderStatusCompleted,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

func IsTerminal(s string) bool {
	return s == enum.OrderStatusCompleted || s == enum.OrderStatusCancelled
}

// IsActive reports whether the order is still being worked on.
func IsActive(s string) bool {
	_, ok := forward[s]
	return ok
}

// NextStatus returns the forward successor of s, if any.
func NextStatus(s string) (string, bool) {
	next, ok := forward[s]
	return next, ok
}

// CanTransition allows only the next forward step, or cancellation from a
// non-terminal status.
func CanTransition(from, to string) bool {
	if !IsActive(from) {
		return false
	}
	if to == enum.OrderStatusCancelled {
		return true
	}
	return forward[from] == to
}

// ValidateTransition explains why from → to is rejected, or returns nil.
func ValidateTransition(from, to string) error {
	if !IsValidStatus(to) {
		return ErrInvalidStatus
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: order is %s", ErrTerminalStatus, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot go from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CancelReason trims reason and rejects it when empty.
func CancelReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	if r == "" {
		return "", ErrCancelReasonRequired
	}
	return r, nil
}

// ValidateCancel checks both the reason and that from may be cancelled.
// It returns the trimmed reason to store.
func ValidateCancel(from, reason string) (string, error) {
	r, err := CancelReason(reason)
	if err != nil {
		return "", err
	}
	if err := ValidateTransition(from, enum.OrderStatusCancelled); err != nil {
		return "", err
	}
	return r, nil
}
