package order

import "errors"

// ValidationError is returned when caller input is rejected before any
// persistence attempt. Handlers map it to 400 Bad Request.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func newValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validation errors.
var (
	ErrCustomerNameRequired   = newValidationError("customer_name is required")
	ErrEmptyItems             = newValidationError("items are required")
	ErrInvalidOrderType       = newValidationError("invalid order_type")
	ErrInvalidQuantity        = newValidationError("quantity must be > 0")
	ErrInvalidToppingQuantity = newValidationError("topping quantity must be >= 0")
	ErrMenuItemNotFound       = newValidationError("menu item not found or unavailable")
	ErrToppingNotFound        = newValidationError("topping not found or unavailable")
	ErrToppingNotEligible     = newValidationError("topping is not eligible for this menu item")
	ErrToppingsNotAllowed     = newValidationError("menu item does not allow toppings")
	ErrLineNotFound           = newValidationError("line not found in draft")
	ErrTotalMismatch          = newValidationError("line total does not reconcile with its components")
	ErrTotalTooLarge          = newValidationError("order total is too large")
	ErrCancelReasonRequired   = newValidationError("cancel_reason is required")
	ErrInvalidStatus          = newValidationError("invalid status")
	ErrInvalidDate            = newValidationError("invalid date format, use YYYY-MM-DD")
	ErrDateRangeOrder         = newValidationError("end_date must not be before start_date")
	ErrDateRangeTooLong       = newValidationError("date range is too long")
)

// Lifecycle conflicts. These are not validation errors: the request is
// well-formed but the order's current state forbids it.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTerminalStatus    = errors.New("order is in a terminal status")
)
