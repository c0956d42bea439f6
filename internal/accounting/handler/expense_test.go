package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/accounting/handler"
	"github.com/kraijai/api/internal/auth"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/enum"
	"github.com/kraijai/api/internal/middleware"
)

var testLoc = time.FixedZone("ICT", 7*60*60)

// --- Mock Expense Store ---

type mockExpenseStore struct {
	expenses  []database.Expense
	lastList  database.ListExpensesParams
	created   *database.CreateExpenseParams
	deleted   []uuid.UUID
	createErr error
}

func (m *mockExpenseStore) ListExpenses(_ context.Context, arg database.ListExpensesParams) ([]database.Expense, error) {
	m.lastList = arg
	return m.expenses, nil
}

func (m *mockExpenseStore) CreateExpense(_ context.Context, arg database.CreateExpenseParams) (database.Expense, error) {
	if m.createErr != nil {
		return database.Expense{}, m.createErr
	}
	m.created = &arg
	e := database.Expense{
		ID:          uuid.New(),
		Title:       arg.Title,
		Description: arg.Description,
		Amount:      arg.Amount,
		Category:    arg.Category,
		ExpenseDate: arg.ExpenseDate,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   time.Now(),
	}
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *mockExpenseStore) DeleteExpense(_ context.Context, id uuid.UUID) (int64, error) {
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			m.deleted = append(m.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}

// --- Helper functions ---

func setupExpenseRouter(store handler.ExpenseStore) *chi.Mux {
	h := handler.NewExpenseHandler(store, testLoc)
	r := chi.NewRouter()
	r.Route("/admin/expenses", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func numeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("numeric %q: %v", s, err)
	}
	return n
}

func day(t *testing.T, s string) pgtype.Date {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("date %q: %v", s, err)
	}
	return pgtype.Date{Time: d, Valid: true}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: enum.UserRoleAdmin}
}

// --- Tests ---

func TestCreateExpense_HappyPath(t *testing.T) {
	store := &mockExpenseStore{}
	router := setupExpenseRouter(store)
	claims := adminClaims()

	rec := doRequest(t, router, "POST", "/admin/expenses/", map[string]interface{}{
		"title":        "  Gas refill ",
		"description":  "kitchen tank",
		"amount":       "850.5",
		"category":     "Utilities",
		"expense_date": "2026-03-02",
	}, claims)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.created == nil {
		t.Fatal("expected expense to be created")
	}
	if store.created.Title != "Gas refill" {
		t.Errorf("title should be trimmed, got %q", store.created.Title)
	}
	if !store.created.CreatedBy.Valid || uuid.UUID(store.created.CreatedBy.Bytes) != claims.UserID {
		t.Errorf("created_by: got %v", store.created.CreatedBy)
	}

	resp := decodeBody(t, rec)
	if resp["amount"] != "850.50" {
		t.Errorf("amount: got %v", resp["amount"])
	}
	if resp["expense_date"] != "2026-03-02" {
		t.Errorf("expense_date: got %v", resp["expense_date"])
	}
	if resp["description"] != "kitchen tank" {
		t.Errorf("description: got %v", resp["description"])
	}
}

func TestCreateExpense_DefaultsToToday(t *testing.T) {
	store := &mockExpenseStore{}
	router := setupExpenseRouter(store)

	before := time.Now().In(testLoc).Format("2006-01-02")
	rec := doRequest(t, router, "POST", "/admin/expenses/", map[string]interface{}{
		"title":    "Ice",
		"amount":   "40",
		"category": "Supplies",
	}, adminClaims())
	after := time.Now().In(testLoc).Format("2006-01-02")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	got := store.created.ExpenseDate.Time.Format("2006-01-02")
	if got != before && got != after {
		t.Errorf("expense_date: got %s, want %s", got, before)
	}
	if store.created.Description.Valid {
		t.Error("empty description should be stored as NULL")
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"amount": "10", "category": "X"}},
		{"missing category", map[string]interface{}{"title": "A", "amount": "10", "category": "  "}},
		{"zero amount", map[string]interface{}{"title": "A", "amount": "0", "category": "X"}},
		{"negative amount", map[string]interface{}{"title": "A", "amount": "-5", "category": "X"}},
		{"bad amount", map[string]interface{}{"title": "A", "amount": "ten", "category": "X"}},
		{"sub-cent amount", map[string]interface{}{"title": "A", "amount": "10.125", "category": "X"}},
		{"amount too large", map[string]interface{}{"title": "A", "amount": "10000000000", "category": "X"}},
		{"bad date", map[string]interface{}{"title": "A", "amount": "10", "category": "X", "expense_date": "02/03/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockExpenseStore{}
			router := setupExpenseRouter(store)

			rec := doRequest(t, router, "POST", "/admin/expenses/", tt.body, adminClaims())
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if store.created != nil {
				t.Error("store should not be called")
			}
		})
	}
}

func TestCreateExpense_StoreError(t *testing.T) {
	store := &mockExpenseStore{createErr: errors.New("db down")}
	router := setupExpenseRouter(store)

	rec := doRequest(t, router, "POST", "/admin/expenses/", map[string]interface{}{
		"title": "A", "amount": "10", "category": "X",
	}, adminClaims())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestListExpenses_SumsTotal(t *testing.T) {
	store := &mockExpenseStore{expenses: []database.Expense{
		{ID: uuid.New(), Title: "Gas", Amount: numeric(t, "850.50"), Category: "Utilities", ExpenseDate: day(t, "2026-03-02")},
		{ID: uuid.New(), Title: "Ice", Amount: numeric(t, "40"), Category: "Supplies", ExpenseDate: day(t, "2026-03-01")},
	}}
	router := setupExpenseRouter(store)

	rec := doRequest(t, router, "GET", "/admin/expenses/?start_date=2026-03-01&end_date=2026-03-31", nil, adminClaims())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["total_amount"] != "890.50" {
		t.Errorf("total_amount: got %v", resp["total_amount"])
	}
	if got := len(resp["expenses"].([]interface{})); got != 2 {
		t.Errorf("expected 2 expenses, got %d", got)
	}
	if store.lastList.StartDate.Time.Format("2006-01-02") != "2026-03-01" || !store.lastList.EndDate.Valid {
		t.Errorf("date filter not passed: %+v", store.lastList)
	}
}

func TestListExpenses_BadRange(t *testing.T) {
	router := setupExpenseRouter(&mockExpenseStore{})

	rec := doRequest(t, router, "GET", "/admin/expenses/?start_date=2026-03-05&end_date=2026-03-01", nil, adminClaims())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	id := uuid.New()
	store := &mockExpenseStore{expenses: []database.Expense{{ID: id, Title: "Gas", Amount: numeric(t, "10")}}}
	router := setupExpenseRouter(store)

	rec := doRequest(t, router, "DELETE", "/admin/expenses/"+id.String(), nil, adminClaims())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, router, "DELETE", "/admin/expenses/"+id.String(), nil, adminClaims())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = doRequest(t, router, "DELETE", "/admin/expenses/nope", nil, adminClaims())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
