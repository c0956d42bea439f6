package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/enum"
	"github.com/kraijai/api/internal/order"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

const (
	orderNumberConstraint    = "orders_order_number_key"
	idempotencyKeyConstraint = "orders_idempotency_key_key"
)

// Errors returned by the order service. Validation failures come from the
// order package and can be detected with order.IsValidation.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrStatusChanged = errors.New("order status changed, reload and try again")
)

// PersistenceError wraps a failure of the underlying store. Nothing of the
// order it belongs to has been committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListAvailableToppings(ctx context.Context) ([]database.Topping, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemTopping(ctx context.Context, arg database.CreateOrderItemToppingParams) (database.OrderItemTopping, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
	ListOrderItemToppingsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemToppingsByOrderRow, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// SubmitOrderRequest is the caller's order: header fields plus the lines
// as selected by staff. Prices are never taken from the caller.
type SubmitOrderRequest struct {
	CreatedBy uuid.UUID
	Header    order.Header
	Items     []OrderLineRequest
}

// OrderLineRequest is a single dish in the order.
type OrderLineRequest struct {
	MenuItemID          string
	Quantity            int32
	SpecialInstructions string
	Toppings            []ToppingRequest
}

// ToppingRequest is a topping on each unit of the line's dish.
type ToppingRequest struct {
	ToppingID string
	Quantity  int32
}

// OrderResult is an order with its items and their toppings.
type OrderResult struct {
	Order database.Order
	Items []OrderItemResult
	// Replayed is set when an earlier order with the same idempotency key
	// was returned instead of creating a new one.
	Replayed bool
}

// OrderItemResult is an item with its toppings.
type OrderItemResult struct {
	Item     database.OrderItem
	Name     string
	Toppings []OrderItemToppingResult
}

type OrderItemToppingResult struct {
	Topping database.OrderItemTopping
	Name    string
}

// Quote is a priced draft that was not persisted.
type Quote struct {
	Items []order.LineItem
	Total decimal.Decimal
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	numbers  order.NumberGenerator
	now      func() time.Time
}

// NewOrderService creates a new OrderService. A nil numbers generator
// falls back to order.NewTimestampNumbers with the default prefix.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, numbers order.NumberGenerator) *OrderService {
	if numbers == nil {
		numbers = order.NewTimestampNumbers("")
	}
	return &OrderService{pool: pool, newStore: newStore, numbers: numbers, now: time.Now}
}

// SubmitOrder prices and stores an order atomically: header, items and
// toppings are written in one transaction or not at all.
//
// Header fields are checked before the store is touched. Catalog prices are
// read inside the transaction so the snapshot matches what is stored.
// Retries up to maxOrderNumberRetries times when the generated order number
// is already taken.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*OrderResult, error) {
	req.Header = req.Header.Normalize()
	if err := order.ValidateHeader(req.Header, len(req.Items)); err != nil {
		return nil, err
	}

	if key := req.Header.IdempotencyKey; key != "" {
		existing, err := s.findByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.submitOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, orderNumberConstraint) {
			lastErr = err
			continue
		}
		if isUniqueViolation(err, idempotencyKeyConstraint) {
			// A concurrent request with the same key won the race.
			existing, findErr := s.findByIdempotencyKey(ctx, req.Header.IdempotencyKey)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *OrderService) submitOrderTx(ctx context.Context, req SubmitOrderRequest) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistence("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	catalog, err := loadCatalog(ctx, store)
	if err != nil {
		return nil, err
	}
	draft, err := buildDraft(catalog, req.Items)
	if err != nil {
		return nil, err
	}
	sub, err := draft.ToSubmission(req.Header)
	if err != nil {
		return nil, err
	}

	createdBy := pgtype.UUID{}
	if req.CreatedBy != uuid.Nil {
		createdBy = pgtype.UUID{Bytes: req.CreatedBy, Valid: true}
	}

	o, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:    s.numbers.Next(s.now()),
		CustomerName:   sub.CustomerName,
		CustomerPhone:  optionalText(sub.CustomerPhone),
		OrderType:      sub.OrderType,
		TotalAmount:    decimalToNumeric(sub.Total()),
		Notes:          optionalText(sub.Notes),
		IdempotencyKey: optionalText(sub.IdempotencyKey),
		CreatedBy:      createdBy,
	})
	if err != nil {
		return nil, persistence("create order", err)
	}

	items := make([]OrderItemResult, 0, len(sub.Items))
	for i, li := range sub.Items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:             o.ID,
			MenuItemID:          li.MenuItemID,
			LineNumber:          int32(i + 1),
			Quantity:            li.Quantity,
			UnitPrice:           decimalToNumeric(li.UnitPrice),
			TotalPrice:          decimalToNumeric(li.TotalPrice),
			SpecialInstructions: optionalText(li.SpecialInstructions),
		})
		if err != nil {
			return nil, persistence("create order item", err)
		}

		toppings := make([]OrderItemToppingResult, 0, len(li.Toppings))
		for _, lt := range li.Toppings {
			oit, err := store.CreateOrderItemTopping(ctx, database.CreateOrderItemToppingParams{
				OrderItemID:     item.ID,
				ToppingID:       lt.ToppingID,
				PerItemQuantity: lt.PerItemQuantity,
				Quantity:        lt.Quantity,
				UnitPrice:       decimalToNumeric(lt.UnitPrice),
				TotalPrice:      decimalToNumeric(lt.TotalPrice),
			})
			if err != nil {
				return nil, persistence("create order item topping", err)
			}
			toppings = append(toppings, OrderItemToppingResult{Topping: oit, Name: lt.Name})
		}

		items = append(items, OrderItemResult{Item: item, Name: li.Name, Toppings: toppings})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistence("commit tx", err)
	}

	return &OrderResult{Order: o, Items: items}, nil
}

// QuoteOrder prices the requested lines against the current catalog without
// storing anything.
func (s *OrderService) QuoteOrder(ctx context.Context, items []OrderLineRequest) (*Quote, error) {
	if len(items) == 0 {
		return nil, order.ErrEmptyItems
	}

	var q *Quote
	err := s.readTx(ctx, func(store OrderStore) error {
		catalog, err := loadCatalog(ctx, store)
		if err != nil {
			return err
		}
		draft, err := buildDraft(catalog, items)
		if err != nil {
			return err
		}
		lines, err := draft.Lines()
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return order.ErrEmptyItems
		}
		q = &Quote{Items: lines, Total: order.Total(lines)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetOrder loads an order with its items and toppings from one snapshot.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResult, error) {
	var result *OrderResult
	err := s.readTx(ctx, func(store OrderStore) error {
		o, err := store.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return persistence("get order", err)
		}
		result, err = loadOrderLines(ctx, store, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves an order one step forward through its lifecycle.
// Cancellation needs a reason and goes through CancelOrder instead.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (database.Order, error) {
	if status == enum.OrderStatusCancelled {
		return database.Order{}, order.ErrCancelReasonRequired
	}
	if !order.IsValidStatus(status) {
		return database.Order{}, order.ErrInvalidStatus
	}

	return s.mutateOrder(ctx, id, func(store OrderStore, cur database.Order) (database.Order, error) {
		if err := order.ValidateTransition(cur.Status, status); err != nil {
			return database.Order{}, err
		}
		return store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:            id,
			Status:        status,
			CurrentStatus: cur.Status,
		})
	})
}

// CancelOrder cancels a non-terminal order, storing the trimmed reason in
// the same statement as the status change.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (database.Order, error) {
	reason, err := order.CancelReason(reason)
	if err != nil {
		return database.Order{}, err
	}

	return s.mutateOrder(ctx, id, func(store OrderStore, cur database.Order) (database.Order, error) {
		r, err := order.ValidateCancel(cur.Status, reason)
		if err != nil {
			return database.Order{}, err
		}
		return store.CancelOrder(ctx, database.CancelOrderParams{ID: id, CancelReason: r})
	})
}

// mutateOrder loads the order, lets apply check the transition and write it,
// then commits. A write that matches no row means the order moved on since
// it was read.
func (s *OrderService) mutateOrder(ctx context.Context, id uuid.UUID, apply func(OrderStore, database.Order) (database.Order, error)) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, persistence("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cur, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, persistence("get order", err)
	}

	updated, err := apply(store, cur)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusChanged
		}
		if order.IsValidation(err) || errors.Is(err, order.ErrInvalidTransition) || errors.Is(err, order.ErrTerminalStatus) {
			return database.Order{}, err
		}
		return database.Order{}, persistence("update order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, persistence("commit tx", err)
	}
	return updated, nil
}

// readTx runs fn against a store bound to a transaction that is always
// rolled back.
func (s *OrderService) readTx(ctx context.Context, fn func(OrderStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return persistence("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	return fn(s.newStore(tx))
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, key string) (*OrderResult, error) {
	var result *OrderResult
	err := s.readTx(ctx, func(store OrderStore) error {
		o, err := store.GetOrderByIdempotencyKey(ctx, key)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return persistence("get order by idempotency key", err)
		}
		result, err = loadOrderLines(ctx, store, o)
		if result != nil {
			result.Replayed = true
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadOrderLines(ctx context.Context, store OrderStore, o database.Order) (*OrderResult, error) {
	rows, err := store.ListOrderItemsByOrder(ctx, o.ID)
	if err != nil {
		return nil, persistence("list order items", err)
	}
	toppingRows, err := store.ListOrderItemToppingsByOrder(ctx, o.ID)
	if err != nil {
		return nil, persistence("list order item toppings", err)
	}

	byItem := make(map[uuid.UUID][]OrderItemToppingResult, len(rows))
	for _, t := range toppingRows {
		byItem[t.OrderItemID] = append(byItem[t.OrderItemID], OrderItemToppingResult{
			Topping: t.OrderItemTopping,
			Name:    t.ToppingName,
		})
	}

	items := make([]OrderItemResult, 0, len(rows))
	for _, r := range rows {
		toppings := byItem[r.ID]
		if toppings == nil {
			toppings = []OrderItemToppingResult{}
		}
		items = append(items, OrderItemResult{Item: r.OrderItem, Name: r.MenuItemName, Toppings: toppings})
	}
	return &OrderResult{Order: o, Items: items}, nil
}

// loadCatalog reads the orderable menu through store.
func loadCatalog(ctx context.Context, store OrderStore) (*order.Catalog, error) {
	dbItems, err := store.ListAvailableMenuItems(ctx)
	if err != nil {
		return nil, persistence("list menu items", err)
	}
	dbToppings, err := store.ListAvailableToppings(ctx)
	if err != nil {
		return nil, persistence("list toppings", err)
	}
	return CatalogFromRows(dbItems, dbToppings), nil
}

// CatalogFromRows converts database rows into an order.Catalog.
func CatalogFromRows(dbItems []database.MenuItem, dbToppings []database.Topping) *order.Catalog {
	items := make([]order.MenuItem, 0, len(dbItems))
	for _, m := range dbItems {
		items = append(items, order.MenuItem{
			ID:            m.ID,
			Name:          m.Name,
			Description:   m.Description.String,
			Price:         numericToDecimal(m.Price),
			Category:      m.Category,
			IsAvailable:   m.IsAvailable,
			AllowToppings: m.AllowToppings,
		})
	}
	toppings := make([]order.Topping, 0, len(dbToppings))
	for _, t := range dbToppings {
		toppings = append(toppings, order.Topping{
			ID:          t.ID,
			Name:        t.Name,
			Price:       numericToDecimal(t.Price),
			Category:    t.Category,
			IsAvailable: t.IsAvailable,
		})
	}
	return order.NewCatalog(items, toppings)
}

// buildDraft replays the requested lines onto a Draft. Repeated picks of the
// same topping on a line are summed.
func buildDraft(catalog *order.Catalog, lines []OrderLineRequest) (*order.Draft, error) {
	d := order.NewDraft(catalog)
	for i, l := range lines {
		menuItemID, err := uuid.Parse(l.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, order.ErrMenuItemNotFound)
		}
		line, err := d.AddItem(menuItemID, l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		var seen []uuid.UUID
		qty := make(map[uuid.UUID]int64, len(l.Toppings))
		for j, tp := range l.Toppings {
			toppingID, err := uuid.Parse(tp.ToppingID)
			if err != nil {
				return nil, fmt.Errorf("items[%d].toppings[%d]: %w", i, j, order.ErrToppingNotFound)
			}
			if tp.Quantity < 0 {
				return nil, fmt.Errorf("items[%d].toppings[%d]: %w", i, j, order.ErrInvalidToppingQuantity)
			}
			if _, ok := qty[toppingID]; !ok {
				seen = append(seen, toppingID)
			}
			qty[toppingID] += int64(tp.Quantity)
			if qty[toppingID] > math.MaxInt32 {
				return nil, fmt.Errorf("items[%d].toppings[%d]: %w", i, j, order.ErrInvalidToppingQuantity)
			}
		}
		for _, toppingID := range seen {
			if err := d.SetToppingQuantity(line, toppingID, int32(qty[toppingID])); err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
		}

		if err := d.SetInstructions(line, l.SpecialInstructions); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return d, nil
}

// --- Helpers ---

// isUniqueViolation checks for pgconn error code 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
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

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
