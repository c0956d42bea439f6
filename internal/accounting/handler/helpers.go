package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/order"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

// isCents reports whether d has at most two decimal places, so storing it
// as NUMERIC(12,2) does not round it.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// uuidToPgUUID converts google/uuid.UUID to pgtype.UUID.
func uuidToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// parseDay parses a YYYY-MM-DD calendar day into a pgtype.Date. An empty
// string yields an invalid (unbounded) date.
func parseDay(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(order.DateLayout, s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func formatDay(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(order.DateLayout)
}

// today returns the current calendar day in loc as a pgtype.Date.
func today(now time.Time, loc *time.Location) pgtype.Date {
	local := now.In(loc)
	return pgtype.Date{
		Time:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

// dateRangeParams reads start_date and end_date as calendar days. When both
// are set end must not precede start.
func dateRangeParams(r *http.Request) (pgtype.Date, pgtype.Date, error) {
	start, err := parseDay(r.URL.Query().Get("start_date"))
	if err != nil {
		return pgtype.Date{}, pgtype.Date{}, order.ErrInvalidDate
	}
	end, err := parseDay(r.URL.Query().Get("end_date"))
	if err != nil {
		return pgtype.Date{}, pgtype.Date{}, order.ErrInvalidDate
	}
	if start.Valid && end.Valid && end.Time.Before(start.Time) {
		return pgtype.Date{}, pgtype.Date{}, order.ErrDateRangeOrder
	}
	return start, end, nil
}
