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

// PurchaseStore defines the database methods needed by purchase handlers.
type PurchaseStore interface {
	ListPurchases(ctx context.Context, arg database.ListPurchasesParams) ([]database.Purchase, error)
	CreatePurchase(ctx context.Context, arg database.CreatePurchaseParams) (database.Purchase, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) (int64, error)
}

// --- PurchaseHandler ---

// PurchaseHandler handles ingredient and supply purchase endpoints.
type PurchaseHandler struct {
	store PurchaseStore
	loc   *time.Location
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(store PurchaseStore, loc *time.Location) *PurchaseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PurchaseHandler{store: store, loc: loc}
}

// RegisterRoutes registers purchase endpoints.
func (h *PurchaseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListPurchases)
	r.Post("/", h.CreatePurchase)
	r.Delete("/{id}", h.DeletePurchase)
}

// --- Request / Response types ---

type createPurchaseRequest struct {
	SupplierName string `json:"supplier_name"`
	ItemName     string `json:"item_name"`
	Quantity     int32  `json:"quantity"`
	UnitPrice    string `json:"unit_price"`    // decimal string
	PurchaseDate string `json:"purchase_date"` // "2026-01-20", defaults to today
}

type purchaseResponse struct {
	ID           uuid.UUID  `json:"id"`
	SupplierName string     `json:"supplier_name"`
	ItemName     string     `json:"item_name"`
	Quantity     int32      `json:"quantity"`
	UnitPrice    string     `json:"unit_price"`
	TotalAmount  string     `json:"total_amount"`
	PurchaseDate string     `json:"purchase_date"`
	CreatedBy    *uuid.UUID `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

type purchaseListResponse struct {
	Purchases   []purchaseResponse `json:"purchases"`
	TotalAmount string             `json:"total_amount"`
}

// --- Handlers ---

// ListPurchases returns purchases in the optional date range with their sum.
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	purchases, err := h.store.ListPurchases(r.Context(), database.ListPurchasesParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: list purchases: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total := decimal.Zero
	resp := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		total = total.Add(numericToDecimal(p.TotalAmount))
		resp = append(resp, toPurchaseResponse(p))
	}

	writeJSON(w, http.StatusOK, purchaseListResponse{
		Purchases:   resp,
		TotalAmount: total.StringFixed(2),
	})
}

// CreatePurchase records a purchase. The total is always quantity times
// unit price; a client-supplied total is not accepted.
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.SupplierName = strings.TrimSpace(req.SupplierName)
	req.ItemName = strings.TrimSpace(req.ItemName)
	if req.SupplierName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "supplier_name is required"})
		return
	}
	if req.ItemName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_name is required"})
		return
	}
	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be > 0"})
		return
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.UnitPrice))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid unit_price format"})
		return
	}
	if price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit_price must be >= 0"})
		return
	}
	if !isCents(price) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit_price must have at most 2 decimal places"})
		return
	}
	total := price.Mul(decimal.NewFromInt32(req.Quantity))
	if total.GreaterThan(order.MaxAmount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total_amount is too large"})
		return
	}

	pricePg, err := decimalToNumeric(price)
	if err != nil {
		log.Printf("ERROR: scan unit price: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	totalPg, err := decimalToNumeric(total)
	if err != nil {
		log.Printf("ERROR: scan total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	date, err := parseDay(req.PurchaseDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid purchase_date format, expected YYYY-MM-DD"})
		return
	}
	if !date.Valid {
		date = today(time.Now(), h.loc)
	}

	var createdBy pgtype.UUID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		createdBy = uuidToPgUUID(claims.UserID)
	}

	purchase, err := h.store.CreatePurchase(r.Context(), database.CreatePurchaseParams{
		SupplierName: req.SupplierName,
		ItemName:     req.ItemName,
		Quantity:     req.Quantity,
		UnitPrice:    pricePg,
		TotalAmount:  totalPg,
		PurchaseDate: date,
		CreatedBy:    createdBy,
	})
	if err != nil {
		log.Printf("ERROR: create purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toPurchaseResponse(purchase))
}

// DeletePurchase removes a purchase.
func (h *PurchaseHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid purchase ID"})
		return
	}

	n, err := h.store.DeletePurchase(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPurchaseResponse(p database.Purchase) purchaseResponse {
	resp := purchaseResponse{
		ID:           p.ID,
		SupplierName: p.SupplierName,
		ItemName:     p.ItemName,
		Quantity:     p.Quantity,
		UnitPrice:    numericToString(p.UnitPrice),
		TotalAmount:  numericToString(p.TotalAmount),
		PurchaseDate: formatDay(p.PurchaseDate),
		CreatedAt:    p.CreatedAt,
	}
	if p.CreatedBy.Valid {
		id := uuid.UUID(p.CreatedBy.Bytes)
		resp.CreatedBy = &id
	}
	return resp
}
