package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listExpenses = `-- name: ListExpenses :many
SELECT id, title, description, amount, category, expense_date, created_by, created_at
FROM expenses
WHERE ($1::date IS NULL OR expense_date >= $1)
  AND ($2::date IS NULL OR expense_date <= $2)
ORDER BY expense_date DESC, created_at DESC
`

type ListExpensesParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpenses, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Description,
			&i.Amount,
			&i.Category,
			&i.ExpenseDate,
			&i.CreatedBy,
			&i.CreatedAt,
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

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (title, description, amount, category, expense_date, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, title, description, amount, category, expense_date, created_by, created_at
`

type CreateExpenseParams struct {
	Title       string         `json:"title"`
	Description pgtype.Text    `json:"description"`
	Amount      pgtype.Numeric `json:"amount"`
	Category    string         `json:"category"`
	ExpenseDate pgtype.Date    `json:"expense_date"`
	CreatedBy   pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRow(ctx, createExpense,
		arg.Title,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.ExpenseDate,
		arg.CreatedBy,
	)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Amount,
		&i.Category,
		&i.ExpenseDate,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = $1
`

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listPurchases = `-- name: ListPurchases :many
SELECT id, supplier_name, item_name, quantity, unit_price, total_amount, purchase_date, created_by, created_at
FROM purchases
WHERE ($1::date IS NULL OR purchase_date >= $1)
  AND ($2::date IS NULL OR purchase_date <= $2)
ORDER BY purchase_date DESC, created_at DESC
`

type ListPurchasesParams struct {
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) ListPurchases(ctx context.Context, arg ListPurchasesParams) ([]Purchase, error) {
	rows, err := q.db.Query(ctx, listPurchases, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Purchase{}
	for rows.Next() {
		var i Purchase
		if err := rows.Scan(
			&i.ID,
			&i.SupplierName,
			&i.ItemName,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalAmount,
			&i.PurchaseDate,
			&i.CreatedBy,
			&i.CreatedAt,
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

const createPurchase = `-- name: CreatePurchase :one
INSERT INTO purchases (supplier_name, item_name, quantity, unit_price, total_amount, purchase_date, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, supplier_name, item_name, quantity, unit_price, total_amount, purchase_date, created_by, created_at
`

type CreatePurchaseParams struct {
	SupplierName string         `json:"supplier_name"`
	ItemName     string         `json:"item_name"`
	Quantity     int32          `json:"quantity"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
	TotalAmount  pgtype.Numeric `json:"total_amount"`
	PurchaseDate pgtype.Date    `json:"purchase_date"`
	CreatedBy    pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (Purchase, error) {
	row := q.db.QueryRow(ctx, createPurchase,
		arg.SupplierName,
		arg.ItemName,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalAmount,
		arg.PurchaseDate,
		arg.CreatedBy,
	)
	var i Purchase
	err := row.Scan(
		&i.ID,
		&i.SupplierName,
		&i.ItemName,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalAmount,
		&i.PurchaseDate,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const deletePurchase = `-- name: DeletePurchase :execrows
DELETE FROM purchases WHERE id = $1
`

func (q *Queries) DeletePurchase(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deletePurchase, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
