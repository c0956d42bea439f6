package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, customer_name, customer_phone, order_type, status,
       total_amount, notes, cancel_reason, idempotency_key, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.OrderType,
		&i.Status,
		&i.TotalAmount,
		&i.Notes,
		&i.CancelReason,
		&i.IdempotencyKey,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    order_number, customer_name, customer_phone, order_type, total_amount,
    notes, idempotency_key, created_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber    string         `json:"order_number"`
	CustomerName   string         `json:"customer_name"`
	CustomerPhone  pgtype.Text    `json:"customer_phone"`
	OrderType      string         `json:"order_type"`
	TotalAmount    pgtype.Numeric `json:"total_amount"`
	Notes          pgtype.Text    `json:"notes"`
	IdempotencyKey pgtype.Text    `json:"idempotency_key"`
	CreatedBy      pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.OrderType,
		arg.TotalAmount,
		arg.Notes,
		arg.IdempotencyKey,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    order_id, menu_item_id, line_number, quantity, unit_price, total_price, special_instructions
) VALUES (
    $1, $2, $3, $4, $5, $6, $7
)
RETURNING id, order_id, menu_item_id, line_number, quantity, unit_price, total_price,
          special_instructions, created_at
`

type CreateOrderItemParams struct {
	OrderID             uuid.UUID      `json:"order_id"`
	MenuItemID          uuid.UUID      `json:"menu_item_id"`
	LineNumber          int32          `json:"line_number"`
	Quantity            int32          `json:"quantity"`
	UnitPrice           pgtype.Numeric `json:"unit_price"`
	TotalPrice          pgtype.Numeric `json:"total_price"`
	SpecialInstructions pgtype.Text    `json:"special_instructions"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.LineNumber,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
		arg.SpecialInstructions,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.LineNumber,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.SpecialInstructions,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderItemTopping = `-- name: CreateOrderItemTopping :one
INSERT INTO order_item_toppings (
    order_item_id, topping_id, per_item_quantity, quantity, unit_price, total_price
) VALUES (
    $1, $2, $3, $4, $5, $6
)
RETURNING id, order_item_id, topping_id, per_item_quantity, quantity, unit_price, total_price, created_at
`

type CreateOrderItemToppingParams struct {
	OrderItemID     uuid.UUID      `json:"order_item_id"`
	ToppingID       uuid.UUID      `json:"topping_id"`
	PerItemQuantity int32          `json:"per_item_quantity"`
	Quantity        int32          `json:"quantity"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	TotalPrice      pgtype.Numeric `json:"total_price"`
}

func (q *Queries) CreateOrderItemTopping(ctx context.Context, arg CreateOrderItemToppingParams) (OrderItemTopping, error) {
	row := q.db.QueryRow(ctx, createOrderItemTopping,
		arg.OrderItemID,
		arg.ToppingID,
		arg.PerItemQuantity,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
	)
	var i OrderItemTopping
	err := row.Scan(
		&i.ID,
		&i.OrderItemID,
		&i.ToppingID,
		&i.PerItemQuantity,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.CreatedAt,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderByIdempotencyKey = `-- name: GetOrderByIdempotencyKey :one
SELECT ` + orderColumns + `
FROM orders
WHERE idempotency_key = $1
`

func (q *Queries) GetOrderByIdempotencyKey(ctx context.Context, key string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByIdempotencyKey, key))
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at <= $2)
  AND ($3::text IS NULL OR status = $3)
  AND ($4::text IS NULL OR order_type = $4)
  AND ($5::text IS NULL
       OR strpos(lower(customer_name), lower($5)) > 0
       OR strpos(lower(COALESCE(customer_phone, '')), lower($5)) > 0)
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

type ListOrdersParams struct {
	StartDate pgtype.Timestamptz `json:"start_date"`
	EndDate   pgtype.Timestamptz `json:"end_date"`
	Status    pgtype.Text        `json:"status"`
	OrderType pgtype.Text        `json:"order_type"`
	Search    pgtype.Text        `json:"search"`
	Limit     int32              `json:"limit"`
	Offset    int32              `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.StartDate,
		arg.EndDate,
		arg.Status,
		arg.OrderType,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrdersInRange = `-- name: ListOrdersInRange :many
SELECT ` + orderColumns + `
FROM orders
WHERE created_at >= $1 AND created_at <= $2
ORDER BY created_at DESC
`

type ListOrdersInRangeParams struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (q *Queries) ListOrdersInRange(ctx context.Context, arg ListOrdersInRangeParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersInRange, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.line_number, oi.quantity, oi.unit_price,
       oi.total_price, oi.special_instructions, oi.created_at,
       mi.name AS menu_item_name, mi.category AS menu_item_category
FROM order_items oi
JOIN menu_items mi ON mi.id = oi.menu_item_id
WHERE oi.order_id = $1
ORDER BY oi.line_number ASC
`

type ListOrderItemsByOrderRow struct {
	OrderItem
	MenuItemName     string `json:"menu_item_name"`
	MenuItemCategory string `json:"menu_item_category"`
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderItemsByOrderRow{}
	for rows.Next() {
		var i ListOrderItemsByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.LineNumber,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.SpecialInstructions,
			&i.CreatedAt,
			&i.MenuItemName,
			&i.MenuItemCategory,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemToppingsByOrder = `-- name: ListOrderItemToppingsByOrder :many
SELECT t.id, t.order_item_id, t.topping_id, t.per_item_quantity, t.quantity, t.unit_price,
       t.total_price, t.created_at, tp.name AS topping_name
FROM order_item_toppings t
JOIN order_items oi ON oi.id = t.order_item_id
JOIN toppings tp ON tp.id = t.topping_id
WHERE oi.order_id = $1
ORDER BY oi.line_number ASC, tp.name ASC
`

type ListOrderItemToppingsByOrderRow struct {
	OrderItemTopping
	ToppingName string `json:"topping_name"`
}

func (q *Queries) ListOrderItemToppingsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemToppingsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemToppingsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderItemToppingsByOrderRow{}
	for rows.Next() {
		var i ListOrderItemToppingsByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderItemID,
			&i.ToppingID,
			&i.PerItemQuantity,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.CreatedAt,
			&i.ToppingName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	CurrentStatus string    `json:"current_status"`
}

// UpdateOrderStatus only applies when the order is still in CurrentStatus;
// otherwise it returns pgx.ErrNoRows.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.CurrentStatus))
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = 'cancelled', cancel_reason = $2, updated_at = now()
WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
RETURNING ` + orderColumns

type CancelOrderParams struct {
	ID           uuid.UUID `json:"id"`
	CancelReason string    `json:"cancel_reason"`
}

// CancelOrder sets status and cancel_reason together. It returns
// pgx.ErrNoRows when the order is missing or already terminal.
func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.CancelReason))
}
