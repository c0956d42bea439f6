package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/middleware"
	"github.com/kraijai/api/internal/order"
	"github.com/kraijai/api/internal/service"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client's per-submission token.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	SubmitOrder(ctx context.Context, req service.SubmitOrderRequest) (*service.OrderResult, error)
	QuoteOrder(ctx context.Context, items []service.OrderLineRequest) (*service.Quote, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*service.OrderResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (database.Order, error)
}

// OrderStore defines the database methods needed by the order list.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	loc   *time.Location
}

// NewOrderHandler creates a new OrderHandler. loc is the zone calendar-day
// filters are interpreted in.
func NewOrderHandler(svc OrderServicer, store OrderStore, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{svc: svc, store: store, loc: loc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/quote", h.Quote)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	OrderType     string             `json:"order_type"`
	Notes         string             `json:"notes"`
	Items         []orderLineRequest `json:"items"`
}

type orderLineRequest struct {
	MenuItemID          string               `json:"menu_item_id"`
	Quantity            int32                `json:"quantity"`
	SpecialInstructions string               `json:"special_instructions"`
	Toppings            []toppingPickRequest `json:"toppings"`
}

type toppingPickRequest struct {
	ToppingID string `json:"topping_id"`
	Quantity  int32  `json:"quantity"`
}

type quoteRequest struct {
	Items []orderLineRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone *string             `json:"customer_phone"`
	OrderType     string              `json:"order_type"`
	Status        string              `json:"status"`
	NextStatus    *string             `json:"next_status"`
	TotalAmount   string              `json:"total_amount"`
	Notes         *string             `json:"notes"`
	CancelReason  *string             `json:"cancel_reason"`
	CreatedBy     *uuid.UUID          `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID                  uuid.UUID                  `json:"id"`
	MenuItemID          uuid.UUID                  `json:"menu_item_id"`
	Name                string                     `json:"name"`
	LineNumber          int32                      `json:"line_number"`
	Quantity            int32                      `json:"quantity"`
	UnitPrice           string                     `json:"unit_price"`
	TotalPrice          string                     `json:"total_price"`
	SpecialInstructions *string                    `json:"special_instructions"`
	Toppings            []orderItemToppingResponse `json:"toppings"`
}

type orderItemToppingResponse struct {
	ID              uuid.UUID `json:"id"`
	ToppingID       uuid.UUID `json:"topping_id"`
	Name            string    `json:"name"`
	PerItemQuantity int32     `json:"per_item_quantity"`
	Quantity        int32     `json:"quantity"`
	UnitPrice       string    `json:"unit_price"`
	TotalPrice      string    `json:"total_price"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type quoteResponse struct {
	Items       []quoteLineResponse `json:"items"`
	TotalAmount string              `json:"total_amount"`
}

type quoteLineResponse struct {
	MenuItemID uuid.UUID              `json:"menu_item_id"`
	Name       string                 `json:"name"`
	Quantity   int32                  `json:"quantity"`
	UnitPrice  string                 `json:"unit_price"`
	TotalPrice string                 `json:"total_price"`
	Toppings   []quoteToppingResponse `json:"toppings"`
}

type quoteToppingResponse struct {
	ToppingID       uuid.UUID `json:"topping_id"`
	Name            string    `json:"name"`
	PerItemQuantity int32     `json:"per_item_quantity"`
	Quantity        int32     `json:"quantity"`
	UnitPrice       string    `json:"unit_price"`
	TotalPrice      string    `json:"total_price"`
}

// --- Handlers ---

// Create handles POST /orders. A repeated Idempotency-Key returns the order
// created by the first request with 200 instead of 201.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.SubmitOrder(r.Context(), service.SubmitOrderRequest{
		CreatedBy: claims.UserID,
		Header: order.Header{
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			OrderType:      req.OrderType,
			Notes:          req.Notes,
			IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
		},
		Items: toServiceLines(req.Items),
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, toOrderResponse(result))
}

// Quote handles POST /orders/quote: prices a draft without saving it.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	q, err := h.svc.QuoteOrder(r.Context(), toServiceLines(req.Items))
	if err != nil {
		writeServiceError(w, "quote order", err)
		return
	}

	resp := quoteResponse{
		Items:       make([]quoteLineResponse, len(q.Items)),
		TotalAmount: q.Total.StringFixed(2),
	}
	for i, li := range q.Items {
		line := quoteLineResponse{
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice.StringFixed(2),
			TotalPrice: li.TotalPrice.StringFixed(2),
			Toppings:   make([]quoteToppingResponse, len(li.Toppings)),
		}
		for j, t := range li.Toppings {
			line.Toppings[j] = quoteToppingResponse{
				ToppingID:       t.ToppingID,
				Name:            t.Name,
				PerItemQuantity: t.PerItemQuantity,
				Quantity:        t.Quantity,
				UnitPrice:       t.UnitPrice.StringFixed(2),
				TotalPrice:      t.TotalPrice.StringFixed(2),
			}
		}
		resp.Items[i] = line
	}

	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /orders.
// Query: start_date, end_date (YYYY-MM-DD), status, order_type, search, limit, offset.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rng, err := order.ParseDateRange(q.Get("start_date"), q.Get("end_date"), h.loc, 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	filter := order.ListFilter{
		Range:     rng,
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		OrderType: q.Get("order_type"),
	}
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			filter.Limit = v
		}
	}
	if s := q.Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			filter.Offset = v
		}
	}
	filter, err = filter.Normalize()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orders, err := h.store.ListOrders(r.Context(), toListOrdersParams(filter))
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	result, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cancelled, err := h.svc.CancelOrder(r.Context(), orderID, req.Reason)
	if err != nil {
		writeServiceError(w, "cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(cancelled))
}

// --- Helpers ---

// writeServiceError maps order service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case order.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrTerminalStatus),
		errors.Is(err, service.ErrStatusChanged):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toServiceLines(items []orderLineRequest) []service.OrderLineRequest {
	out := make([]service.OrderLineRequest, len(items))
	for i, it := range items {
		toppings := make([]service.ToppingRequest, len(it.Toppings))
		for j, t := range it.Toppings {
			toppings[j] = service.ToppingRequest{ToppingID: t.ToppingID, Quantity: t.Quantity}
		}
		out[i] = service.OrderLineRequest{
			MenuItemID:          it.MenuItemID,
			Quantity:            it.Quantity,
			SpecialInstructions: it.SpecialInstructions,
			Toppings:            toppings,
		}
	}
	return out
}

func toListOrdersParams(f order.ListFilter) database.ListOrdersParams {
	params := database.ListOrdersParams{
		Limit:  int32(f.Limit),
		Offset: int32(f.Offset),
	}
	if !f.Range.Start.IsZero() {
		params.StartDate = pgtype.Timestamptz{Time: f.Range.Start, Valid: true}
	}
	if !f.Range.End.IsZero() {
		params.EndDate = pgtype.Timestamptz{Time: f.Range.End, Valid: true}
	}
	if f.Status != "" {
		params.Status = pgtype.Text{String: f.Status, Valid: true}
	}
	if f.OrderType != "" {
		params.OrderType = pgtype.Text{String: f.OrderType, Valid: true}
	}
	if f.Search != "" {
		params.Search = pgtype.Text{String: f.Search, Valid: true}
	}
	return params
}

func toOrderResponse(result *service.OrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, ir := range result.Items {
		resp.Items[i] = toOrderItemResponse(ir)
	}
	return resp
}

func toOrderItemResponse(ir service.OrderItemResult) orderItemResponse {
	item := ir.Item
	resp := orderItemResponse{
		ID:         item.ID,
		MenuItemID: item.MenuItemID,
		Name:       ir.Name,
		LineNumber: item.LineNumber,
		Quantity:   item.Quantity,
		UnitPrice:  numericToString(item.UnitPrice),
		TotalPrice: numericToString(item.TotalPrice),
		Toppings:   make([]orderItemToppingResponse, len(ir.Toppings)),
	}
	if item.SpecialInstructions.Valid {
		resp.SpecialInstructions = &item.SpecialInstructions.String
	}
	for j, t := range ir.Toppings {
		resp.Toppings[j] = orderItemToppingResponse{
			ID:              t.Topping.ID,
			ToppingID:       t.Topping.ToppingID,
			Name:            t.Name,
			PerItemQuantity: t.Topping.PerItemQuantity,
			Quantity:        t.Topping.Quantity,
			UnitPrice:       numericToString(t.Topping.UnitPrice),
			TotalPrice:      numericToString(t.Topping.TotalPrice),
		}
	}
	return resp
}

// dbOrderToResponse converts a database.Order to an orderResponse without items.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		OrderType:    o.OrderType,
		Status:       o.Status,
		TotalAmount:  numericToString(o.TotalAmount),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if next, ok := order.NextStatus(o.Status); ok {
		resp.NextStatus = &next
	}
	if o.CustomerPhone.Valid {
		resp.CustomerPhone = &o.CustomerPhone.String
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.CancelReason.Valid {
		resp.CancelReason = &o.CancelReason.String
	}
	if o.CreatedBy.Valid {
		id := uuid.UUID(o.CreatedBy.Bytes)
		resp.CreatedBy = &id
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	str, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero
	}
	return d
}
