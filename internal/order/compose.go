package order

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ToppingPick is a topping selected for one unit of a dish.
type ToppingPick struct {
	Topping  Topping
	Quantity int32
}

// LineTopping is a priced topping attached to a line item.
// Quantity is the billed unit count (PerItemQuantity times the line
// quantity), so TotalPrice == UnitPrice * Quantity.
type LineTopping struct {
	ToppingID       uuid.UUID
	Name            string
	PerItemQuantity int32
	Quantity        int32
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// LineItem is one menu item, its quantity and its toppings, priced with
// snapshots of the catalog prices at composition time.
type LineItem struct {
	MenuItemID          uuid.UUID
	Name                string
	Quantity            int32
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
	SpecialInstructions string
	Toppings            []LineTopping
}

// Reconciles reports whether the stored totals match the itemized components.
func (l LineItem) Reconciles() bool {
	sum := l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
	for _, t := range l.Toppings {
		if !t.TotalPrice.Equal(t.UnitPrice.Mul(decimal.NewFromInt32(t.Quantity))) {
			return false
		}
		sum = sum.Add(t.TotalPrice)
	}
	return sum.Equal(l.TotalPrice)
}

// ComposeLineItem prices quantity units of item with the given topping picks.
//
// Topping quantities are per unit of the dish: 3 of a dish with 2 units of a
// topping bills 6 topping units. Picks with quantity 0 are ignored and
// repeated picks of the same topping are merged.
func ComposeLineItem(item MenuItem, quantity int32, picks []ToppingPick, instructions string) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}

	merged, err := mergePicks(picks)
	if err != nil {
		return LineItem{}, err
	}

	qty := decimal.NewFromInt32(quantity)
	line := LineItem{
		MenuItemID:          item.ID,
		Name:                item.Name,
		Quantity:            quantity,
		UnitPrice:           item.Price,
		SpecialInstructions: strings.TrimSpace(instructions),
	}
	total := item.Price.Mul(qty)

	for _, p := range merged {
		if !item.AllowToppings {
			return LineItem{}, fmt.Errorf("%s: %w", item.Name, ErrToppingsNotAllowed)
		}
		if !Eligible(item, p.Topping) {
			return LineItem{}, fmt.Errorf("%s on %s: %w", p.Topping.Name, item.Name, ErrToppingNotEligible)
		}

		billed := int64(p.Quantity) * int64(quantity)
		if billed > math.MaxInt32 {
			return LineItem{}, fmt.Errorf("%s: %w", p.Topping.Name, ErrInvalidQuantity)
		}

		lt := LineTopping{
			ToppingID:       p.Topping.ID,
			Name:            p.Topping.Name,
			PerItemQuantity: p.Quantity,
			Quantity:        int32(billed),
			UnitPrice:       p.Topping.Price,
			TotalPrice:      p.Topping.Price.Mul(decimal.NewFromInt(billed)),
		}
		total = total.Add(lt.TotalPrice)
		line.Toppings = append(line.Toppings, lt)
	}

	line.TotalPrice = total
	return line, nil
}

// mergePicks drops zero quantities and sums duplicates, keeping first-seen order.
func mergePicks(picks []ToppingPick) ([]ToppingPick, error) {
	var out []ToppingPick
	index := make(map[uuid.UUID]int)
	for _, p := range picks {
		if p.Quantity < 0 {
			return nil, fmt.Errorf("%s: %w", p.Topping.Name, ErrInvalidToppingQuantity)
		}
		if p.Quantity == 0 {
			continue
		}
		if i, ok := index[p.Topping.ID]; ok {
			sum := int64(out[i].Quantity) + int64(p.Quantity)
			if sum > math.MaxInt32 {
				return nil, fmt.Errorf("%s: %w", p.Topping.Name, ErrInvalidToppingQuantity)
			}
			out[i].Quantity = int32(sum)
			continue
		}
		index[p.Topping.ID] = len(out)
		out = append(out, p)
	}
	return out, nil
}
