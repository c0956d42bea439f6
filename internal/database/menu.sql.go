package database

import (
	"context"
)

const listAvailableMenuItems = `-- name: ListAvailableMenuItems :many
SELECT id, name, description, price, category, is_available, allow_toppings, created_at
FROM menu_items
WHERE is_available = true
ORDER BY category ASC, name ASC
`

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listAvailableMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.Category,
			&i.IsAvailable,
			&i.AllowToppings,
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

const listAvailableToppings = `-- name: ListAvailableToppings :many
SELECT id, name, price, category, is_available, created_at
FROM toppings
WHERE is_available = true
ORDER BY category ASC, name ASC
`

func (q *Queries) ListAvailableToppings(ctx context.Context) ([]Topping, error) {
	rows, err := q.db.Query(ctx, listAvailableToppings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Topping{}
	for rows.Next() {
		var i Topping
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Price,
			&i.Category,
			&i.IsAvailable,
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
