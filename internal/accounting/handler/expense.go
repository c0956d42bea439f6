package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/middleware"
	"github.com/kraijai/api/internal/order"
	"github.com/shopspring/decimal"
)

// --- Store interface ---

// ExpenseStore defines the database methods needed by expense handlers.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error)
}

// --- ExpenseHandler ---

// ExpenseHandler handles expense bookkeeping endpoints.
type ExpenseHandler struct {
	store ExpenseStore
	loc   *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler. Expenses submitted without a
// date are booked on the current day in loc.
func NewExpenseHandler(store ExpenseStore, loc *time.Location) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseHandler{store: store, loc: loc}
}

// RegisterRoutes registers expense endpoints.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListExpenses)
	r.Post("/", h.CreateExpense)
	r.Delete("/{id}", h.DeleteExpense)
}

// --- Request / Response types ---

type createExpenseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"` // decimal string
	Category    string `json:"category"`
	ExpenseDate string `json:"expense_date"` // "2026-01-20", defaults to today
}

type expenseResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Amount      string     `json:"amount"`
	Category    string     `json:"category"`
	ExpenseDate string     `json:"expense_date"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

type expenseListResponse struct {
	Expenses    []expenseResponse `json:"expenses"`
	TotalAmount string            `json:"total_amount"`
}

// --- Handlers ---

// ListExpenses returns expenses in the optional date range with their sum.
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), database.ListExpensesParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total := decimal.Zero
	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		total = total.Add(numericToDecimal(e.Amount))
		resp = append(resp, toExpenseResponse(e))
	}

	writeJSON(w, http.StatusOK, expenseListResponse{
		Expenses:    resp,
		TotalAmount: total.StringFixed(2),
	})
}

// CreateExpense records a single expense.
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount format"})
		return
	}
	if !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be > 0"})
		return
	}
	if !isCents(amount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must have at most 2 decimal places"})
		return
	}
	if amount.GreaterThan(order.MaxAmount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount is too large"})
		return
	}
	amountPg, err := decimalToNumeric(amount)
	if err != nil {
		log.Printf("ERROR: scan amount: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	date, err := parseDay(req.ExpenseDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense_date format, expected YYYY-MM-DD"})
		return
	}
	if !date.Valid {
		date = today(time.Now(), h.loc)
	}

	var createdBy pgtype.UUID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		createdBy = uuidToPgUUID(claims.UserID)
	}

	var description pgtype.Text
	if d := strings.TrimSpace(req.Description); d != "" {
		description = pgtype.Text{String: d, Valid: true}
	}

	expense, err := h.store.CreateExpense(r.Context(), database.CreateExpenseParams{
		Title:       req.Title,
		Description: description,
		Amount:      amountPg,
		Category:    req.Category,
		ExpenseDate: date,
		CreatedBy:   createdBy,
	})
	if err != nil {
		log.Printf("ERROR: create expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// DeleteExpense removes an expense.
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	n, err := h.store.DeleteExpense(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toExpenseResponse(e database.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      numericToString(e.Amount),
		Category:    e.Category,
		ExpenseDate: formatDay(e.ExpenseDate),
		CreatedAt:   e.CreatedAt,
	}
	if e.Description.Valid {
		resp.Description = &e.Description.String
	}
	if e.CreatedBy.Valid {
		id := uuid.UUID(e.CreatedBy.Bytes)
		resp.CreatedBy = &id
	}
	return resp
}
