package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Expense struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description pgtype.Text    `json:"description"`
	Amount      pgtype.Numeric `json:"amount"`
	Category    string         `json:"category"`
	ExpenseDate pgtype.Date    `json:"expense_date"`
	CreatedBy   pgtype.UUID    `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

type MenuItem struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Description   pgtype.Text    `json:"description"`
	Price         pgtype.Numeric `json:"price"`
	Category      string         `json:"category"`
	IsAvailable   bool           `json:"is_available"`
	AllowToppings bool           `json:"allow_toppings"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Order struct {
	ID             uuid.UUID      `json:"id"`
	OrderNumber    string         `json:"order_number"`
	CustomerName   string         `json:"customer_name"`
	CustomerPhone  pgtype.Text    `json:"customer_phone"`
	OrderType      string         `json:"order_type"`
	Status         string         `json:"status"`
	TotalAmount    pgtype.Numeric `json:"total_amount"`
	Notes          pgtype.Text    `json:"notes"`
	CancelReason   pgtype.Text    `json:"cancel_reason"`
	IdempotencyKey pgtype.Text    `json:"idempotency_key"`
	CreatedBy      pgtype.UUID    `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID                  uuid.UUID      `json:"id"`
	OrderID             uuid.UUID      `json:"order_id"`
	MenuItemID          uuid.UUID      `json:"menu_item_id"`
	LineNumber          int32          `json:"line_number"`
	Quantity            int32          `json:"quantity"`
	UnitPrice           pgtype.Numeric `json:"unit_price"`
	TotalPrice          pgtype.Numeric `json:"total_price"`
	SpecialInstructions pgtype.Text    `json:"special_instructions"`
	CreatedAt           time.Time      `json:"created_at"`
}

type OrderItemTopping struct {
	ID              uuid.UUID      `json:"id"`
	OrderItemID     uuid.UUID      `json:"order_item_id"`
	ToppingID       uuid.UUID      `json:"topping_id"`
	PerItemQuantity int32          `json:"per_item_quantity"`
	Quantity        int32          `json:"quantity"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	TotalPrice      pgtype.Numeric `json:"total_price"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Profile struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Purchase struct {
	ID           uuid.UUID      `json:"id"`
	SupplierName string         `json:"supplier_name"`
	ItemName     string         `json:"item_name"`
	Quantity     int32          `json:"quantity"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
	TotalAmount  pgtype.Numeric `json:"total_amount"`
	PurchaseDate pgtype.Date    `json:"purchase_date"`
	CreatedBy    pgtype.UUID    `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Topping struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Price       pgtype.Numeric `json:"price"`
	Category    string         `json:"category"`
	IsAvailable bool           `json:"is_available"`
	CreatedAt   time.Time      `json:"created_at"`
}
