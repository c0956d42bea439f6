package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/order"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 10

// --- Store interface ---

// DashboardStore defines the database methods needed by dashboard handlers.
type DashboardStore interface {
	ListOrdersInRange(ctx context.Context, arg database.ListOrdersInRangeParams) ([]database.Order, error)
	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	ListPurchases(ctx context.Context, arg database.ListPurchasesParams) ([]database.Purchase, error)
}

// --- DashboardHandler ---

// DashboardHandler handles the admin dashboard endpoint.
type DashboardHandler struct {
	store   DashboardStore
	loc     *time.Location
	maxDays int
}

// NewDashboardHandler creates a new DashboardHandler. Date filters are read
// as calendar days in loc and may span at most maxDays.
func NewDashboardHandler(store DashboardStore, loc *time.Location, maxDays int) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{store: store, loc: loc, maxDays: maxDays}
}

// RegisterRoutes registers dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetDashboard)
}

// --- Response types ---

type dashboardResponse struct {
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	Orders         orderStatsResponse    `json:"orders"`
	ExpensesTotal  string                `json:"expenses_total"`
	PurchasesTotal string                `json:"purchases_total"`
	NetIncome      string                `json:"net_income"`
	RecentOrders   []recentOrderResponse `json:"recent_orders"`
}

type orderStatsResponse struct {
	TotalOrders     int            `json:"total_orders"`
	TotalRevenue    string         `json:"total_revenue"`
	ActiveOrders    int            `json:"active_orders"`
	CompletedOrders int            `json:"completed_orders"`
	CancelledOrders int            `json:"cancelled_orders"`
	ByType          map[string]int `json:"by_type"`
}

type recentOrderResponse struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	OrderType    string    `json:"order_type"`
	Status       string    `json:"status"`
	TotalAmount  string    `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Handler ---

// GetDashboard summarizes orders, expenses and purchases for
// start_date..end_date. Both default to today; a single date covers that day.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	switch {
	case startStr == "" && endStr == "":
		startStr = time.Now().In(h.loc).Format(order.DateLayout)
		endStr = startStr
	case startStr == "":
		startStr = endStr
	case endStr == "":
		endStr = startStr
	}

	rng, err := order.ParseDateRange(startStr, endStr, h.loc, h.maxDays)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// ParseDateRange has already validated both strings.
	startDay, _ := parseDay(startStr)
	endDay, _ := parseDay(endStr)

	orders, err := h.store.ListOrdersInRange(ctx, database.ListOrdersInRangeParams{
		StartDate: rng.Start,
		EndDate:   rng.End,
	})
	if err != nil {
		log.Printf("ERROR: list orders in range: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	expenses, err := h.store.ListExpenses(ctx, database.ListExpensesParams{StartDate: startDay, EndDate: endDay})
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	purchases, err := h.store.ListPurchases(ctx, database.ListPurchasesParams{StartDate: startDay, EndDate: endDay})
	if err != nil {
		log.Printf("ERROR: list purchases: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	stats := order.Summarize(toSnapshots(orders))

	expensesTotal := decimal.Zero
	for _, e := range expenses {
		expensesTotal = expensesTotal.Add(numericToDecimal(e.Amount))
	}
	purchasesTotal := decimal.Zero
	for _, p := range purchases {
		purchasesTotal = purchasesTotal.Add(numericToDecimal(p.TotalAmount))
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		StartDate:      startStr,
		EndDate:        endStr,
		Orders:         buildOrderStats(stats),
		ExpensesTotal:  expensesTotal.StringFixed(2),
		PurchasesTotal: purchasesTotal.StringFixed(2),
		NetIncome:      stats.TotalRevenue.Sub(expensesTotal).Sub(purchasesTotal).StringFixed(2),
		RecentOrders:   buildRecentOrders(orders),
	})
}

// --- Response builders ---

func toSnapshots(orders []database.Order) []order.Snapshot {
	out := make([]order.Snapshot, 0, len(orders))
	for _, o := range orders {
		out = append(out, order.Snapshot{
			Status:      o.Status,
			OrderType:   o.OrderType,
			TotalAmount: numericToDecimal(o.TotalAmount),
		})
	}
	return out
}

func buildOrderStats(s order.Stats) orderStatsResponse {
	return orderStatsResponse{
		TotalOrders:     s.TotalOrders,
		TotalRevenue:    s.TotalRevenue.StringFixed(2),
		ActiveOrders:    s.ActiveOrders,
		CompletedOrders: s.CompletedOrders,
		CancelledOrders: s.CancelledOrders,
		ByType:          s.ByType,
	}
}

// buildRecentOrders takes the newest orders; the store returns them
// newest first.
func buildRecentOrders(orders []database.Order) []recentOrderResponse {
	n := len(orders)
	if n > recentOrdersLimit {
		n = recentOrdersLimit
	}
	result := make([]recentOrderResponse, 0, n)
	for _, o := range orders[:n] {
		result = append(result, recentOrderResponse{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
			OrderType:    o.OrderType,
			Status:       o.Status,
			TotalAmount:  numericToString(o.TotalAmount),
			CreatedAt:    o.CreatedAt,
		})
	}
	return result
}
