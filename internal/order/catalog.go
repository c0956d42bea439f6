// Package order holds the restaurant's pricing and lifecycle rules: which
// toppings go with which dishes, how a line and an order are priced, and
// which status changes an order may go through. Nothing here touches the
// database.
package order

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kraijai/api/internal/enum"
	"github.com/shopspring/decimal"
)

// MenuItem is a dish on the menu.
type MenuItem struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	IsAvailable   bool
	AllowToppings bool
}

// Topping is an add-on that can be attached to eligible menu items.
type Topping struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	Category    string
	IsAvailable bool
}

// Eligible reports whether topping t may be attached to item.
func Eligible(item MenuItem, t Topping) bool {
	return t.Category == item.Category || t.Category == enum.ToppingCategoryGeneral
}

// Catalog is the read-only set of orderable menu items and toppings.
// Unavailable records are dropped on construction.
type Catalog struct {
	items       []MenuItem
	toppings    []Topping
	itemByID    map[uuid.UUID]MenuItem
	toppingByID map[uuid.UUID]Topping
}

// NewCatalog builds a Catalog from raw records, keeping their order.
func NewCatalog(items []MenuItem, toppings []Topping) *Catalog {
	c := &Catalog{
		itemByID:    make(map[uuid.UUID]MenuItem, len(items)),
		toppingByID: make(map[uuid.UUID]Topping, len(toppings)),
	}
	for _, it := range items {
		if !it.IsAvailable {
			continue
		}
		c.items = append(c.items, it)
		c.itemByID[it.ID] = it
	}
	for _, t := range toppings {
		if !t.IsAvailable {
			continue
		}
		c.toppings = append(c.toppings, t)
		c.toppingByID[t.ID] = t
	}
	return c
}

func (c *Catalog) Item(id uuid.UUID) (MenuItem, bool) {
	it, ok := c.itemByID[id]
	return it, ok
}

func (c *Catalog) Topping(id uuid.UUID) (Topping, bool) {
	t, ok := c.toppingByID[id]
	return t, ok
}

func (c *Catalog) Items() []MenuItem { return c.items }

func (c *Catalog) Toppings() []Topping { return c.toppings }

// Categories returns the distinct menu item categories, sorted.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range c.items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out
}

// ItemsInCategory filters items by category. An empty category or "All"
// returns every item.
func (c *Catalog) ItemsInCategory(category string) []MenuItem {
	if category == "" || category == enum.CategoryAll {
		return c.items
	}
	var out []MenuItem
	for _, it := range c.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// EligibleToppings returns the toppings that may be attached to item. Items
// that do not allow toppings get none.
func (c *Catalog) EligibleToppings(item MenuItem) []Topping {
	if !item.AllowToppings {
		return nil
	}
	var out []Topping
	for _, t := range c.toppings {
		if Eligible(item, t) {
			out = append(out, t)
		}
	}
	return out
}
