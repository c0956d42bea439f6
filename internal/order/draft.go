package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Draft is an order under construction. Lines are addressed by the index
// returned from AddItem; a line whose quantity drops to zero stays in place
// but is left out of pricing.
type Draft struct {
	catalog *Catalog
	lines   []*draftLine
}

type draftLine struct {
	item         MenuItem
	quantity     int32
	toppingOrder []uuid.UUID
	toppingQty   map[uuid.UUID]int32
	instructions string
}

func NewDraft(c *Catalog) *Draft {
	return &Draft{catalog: c}
}

// AddItem appends a new line for the menu item and returns its index.
func (d *Draft) AddItem(itemID uuid.UUID, quantity int32) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	item, ok := d.catalog.Item(itemID)
	if !ok {
		return 0, ErrMenuItemNotFound
	}
	d.lines = append(d.lines, &draftLine{
		item:       item,
		quantity:   quantity,
		toppingQty: make(map[uuid.UUID]int32),
	})
	return len(d.lines) - 1, nil
}

// SetItemQuantity changes a line's quantity. Zero deselects the line.
func (d *Draft) SetItemQuantity(line int, quantity int32) error {
	l, err := d.line(line)
	if err != nil {
		return err
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	l.quantity = quantity
	return nil
}

// SetToppingQuantity sets how many units of a topping go on each unit of
// the line's dish. Zero deselects the topping. Ineligible toppings are
// rejected here so stale selections never reach pricing.
func (d *Draft) SetToppingQuantity(line int, toppingID uuid.UUID, quantity int32) error {
	l, err := d.line(line)
	if err != nil {
		return err
	}
	if quantity < 0 {
		return ErrInvalidToppingQuantity
	}
	t, ok := d.catalog.Topping(toppingID)
	if !ok {
		return ErrToppingNotFound
	}
	if quantity > 0 {
		if !l.item.AllowToppings {
			return fmt.Errorf("%s: %w", l.item.Name, ErrToppingsNotAllowed)
		}
		if !Eligible(l.item, t) {
			return fmt.Errorf("%s on %s: %w", t.Name, l.item.Name, ErrToppingNotEligible)
		}
	}

	if _, seen := l.toppingQty[toppingID]; !seen {
		l.toppingOrder = append(l.toppingOrder, toppingID)
	}
	l.toppingQty[toppingID] = quantity
	return nil
}

// RemoveItem deselects a line. Indexes of the other lines do not change.
func (d *Draft) RemoveItem(line int) error {
	return d.SetItemQuantity(line, 0)
}

func (d *Draft) SetInstructions(line int, instructions string) error {
	l, err := d.line(line)
	if err != nil {
		return err
	}
	l.instructions = instructions
	return nil
}

// Len returns the number of lines with a positive quantity.
func (d *Draft) Len() int {
	n := 0
	for _, l := range d.lines {
		if l.quantity > 0 {
			n++
		}
	}
	return n
}

// Lines prices every selected line.
func (d *Draft) Lines() ([]LineItem, error) {
	var out []LineItem
	for i, l := range d.lines {
		if l.quantity == 0 {
			continue
		}
		picks := make([]ToppingPick, 0, len(l.toppingOrder))
		for _, tid := range l.toppingOrder {
			t, _ := d.catalog.Topping(tid)
			picks = append(picks, ToppingPick{Topping: t, Quantity: l.toppingQty[tid]})
		}
		li, err := ComposeLineItem(l.item, l.quantity, picks, l.instructions)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		out = append(out, li)
	}
	return out, nil
}

// ComputeTotal prices the draft without validating the header.
func (d *Draft) ComputeTotal() (decimal.Decimal, error) {
	lines, err := d.Lines()
	if err != nil {
		return decimal.Zero, err
	}
	return Total(lines), nil
}

// ToSubmission prices the draft and attaches the header, validating both.
func (d *Draft) ToSubmission(h Header) (Submission, error) {
	h = h.Normalize()
	if err := ValidateHeader(h, d.Len()); err != nil {
		return Submission{}, err
	}
	lines, err := d.Lines()
	if err != nil {
		return Submission{}, err
	}
	s := Submission{Header: h, Items: lines}
	if err := s.Validate(); err != nil {
		return Submission{}, err
	}
	return s, nil
}

func (d *Draft) line(i int) (*draftLine, error) {
	if i < 0 || i >= len(d.lines) {
		return nil, ErrLineNotFound
	}
	return d.lines[i], nil
}
