package order

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kraijai/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Header carries the customer-facing fields of an order.
type Header struct {
	CustomerName   string
	CustomerPhone  string
	OrderType      string
	Notes          string
	IdempotencyKey string
}

// Submission is a fully priced order ready to be persisted.
type Submission struct {
	Header
	Items []LineItem
}

// ValidOrderType reports whether s is a known order type.
func ValidOrderType(s string) bool {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeDelivery:
		return true
	}
	return false
}

// ValidateHeader checks the fields that can be rejected without looking at
// the catalog.
func ValidateHeader(h Header, itemCount int) error {
	if strings.TrimSpace(h.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if !ValidOrderType(h.OrderType) {
		return ErrInvalidOrderType
	}
	if itemCount == 0 {
		return ErrEmptyItems
	}
	return nil
}

// Normalize trims whitespace from the free-text header fields.
func (h Header) Normalize() Header {
	h.CustomerName = strings.TrimSpace(h.CustomerName)
	h.CustomerPhone = strings.TrimSpace(h.CustomerPhone)
	h.Notes = strings.TrimSpace(h.Notes)
	h.IdempotencyKey = strings.TrimSpace(h.IdempotencyKey)
	return h
}

// MaxAmount is the largest amount a NUMERIC(12,2) column can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Validate checks the header, that every line reconciles with its parts and
// that the order total fits in MaxAmount. Line and topping totals never
// exceed the order total.
func (s Submission) Validate() error {
	if err := ValidateHeader(s.Header, len(s.Items)); err != nil {
		return err
	}
	for i, it := range s.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if !it.Reconciles() {
			return fmt.Errorf("items[%d]: %w", i, ErrTotalMismatch)
		}
	}
	if s.Total().GreaterThan(MaxAmount) {
		return ErrTotalTooLarge
	}
	return nil
}

// Total is the order total_amount: the sum of its line totals.
func (s Submission) Total() decimal.Decimal {
	return Total(s.Items)
}

// Total sums line item totals.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// NumberGenerator produces human-readable order numbers.
type NumberGenerator interface {
	Next(now time.Time) string
}

// TimestampNumbers formats order numbers as PREFIX-NNNNNN where NNNNNN is the
// last six digits of the millisecond clock. Tokens are strictly increasing
// within a process; separate processes can still collide, so the store
// must enforce uniqueness.
type TimestampNumbers struct {
	prefix string
	last   atomic.Int64
}

func NewTimestampNumbers(prefix string) *TimestampNumbers {
	if prefix == "" {
		prefix = "ORD"
	}
	return &TimestampNumbers{prefix: prefix}
}

func (g *TimestampNumbers) Next(now time.Time) string {
	ms := now.UnixMilli()
	for {
		prev := g.last.Load()
		next := ms
		if next <= prev {
			next = prev + 1
		}
		if g.last.CompareAndSwap(prev, next) {
			return fmt.Sprintf("%s-%06d", g.prefix, next%1_000_000)
		}
	}
}
