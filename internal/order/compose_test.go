package order

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Test helpers ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func menuItem(name, price, category string) MenuItem {
	return MenuItem{
		ID:            uuid.New(),
		Name:          name,
		Price:         dec(price),
		Category:      category,
		IsAvailable:   true,
		AllowToppings: true,
	}
}

func topping(name, price, category string) Topping {
	return Topping{
		ID:          uuid.New(),
		Name:        name,
		Price:       dec(price),
		Category:    category,
		IsAvailable: true,
	}
}

// =====================
// Pricing
// =====================

func TestComposeLineItem_NoToppings(t *testing.T) {
	item := menuItem("Pad Thai", "65.50", "Noodles")

	for _, q := range []int32{1, 2, 7, 100} {
		line, err := ComposeLineItem(item, q, nil, "")
		if err != nil {
			t.Fatalf("qty %d: unexpected error: %v", q, err)
		}
		want := item.Price.Mul(decimal.NewFromInt32(q))
		if !line.TotalPrice.Equal(want) {
			t.Errorf("qty %d: total got %s, want %s", q, line.TotalPrice, want)
		}
		if len(line.Toppings) != 0 {
			t.Errorf("qty %d: expected no toppings, got %d", q, len(line.Toppings))
		}
	}
}

func TestComposeLineItem_ToppingScalesWithDishQuantity(t *testing.T) {
	item := menuItem("Dish", "10", "Rice")
	egg := topping("Fried Egg", "2", "Rice")

	line, err := ComposeLineItem(item, 3, []ToppingPick{{Topping: egg, Quantity: 2}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10*3 + 2*2*3 = 42
	if !line.TotalPrice.Equal(dec("42")) {
		t.Fatalf("total: got %s, want 42", line.TotalPrice)
	}
	lt := line.Toppings[0]
	if lt.PerItemQuantity != 2 || lt.Quantity != 6 {
		t.Errorf("topping quantities: per item %d billed %d, want 2 and 6", lt.PerItemQuantity, lt.Quantity)
	}
	if !lt.TotalPrice.Equal(dec("12")) {
		t.Errorf("topping total: got %s, want 12", lt.TotalPrice)
	}
	if !line.Reconciles() {
		t.Error("line should reconcile with its components")
	}
}

func TestComposeLineItem_ShrimpSalad(t *testing.T) {
	salad := menuItem("Shrimp Salad", "120.00", "Salad")
	shrimp := topping("Extra Shrimp", "15.00", "Salad")

	line, err := ComposeLineItem(salad, 2, []ToppingPick{{Topping: shrimp, Quantity: 1}}, "  no onion ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.TotalPrice.StringFixed(2) != "270.00" {
		t.Fatalf("total: got %s, want 270.00", line.TotalPrice.StringFixed(2))
	}
	if !line.UnitPrice.Equal(salad.Price) {
		t.Errorf("unit price snapshot: got %s, want %s", line.UnitPrice, salad.Price)
	}
	if line.SpecialInstructions != "no onion" {
		t.Errorf("instructions: got %q", line.SpecialInstructions)
	}
}

func TestComposeLineItem_GeneralToppingIsEligible(t *testing.T) {
	item := menuItem("Green Curry", "90", "Curry")
	rice := topping("Extra Rice", "10", "General")

	line, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: rice, Quantity: 1}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.TotalPrice.Equal(dec("100")) {
		t.Errorf("total: got %s, want 100", line.TotalPrice)
	}
}

func TestComposeLineItem_IneligibleTopping(t *testing.T) {
	item := menuItem("Green Curry", "90", "Curry")
	shrimp := topping("Extra Shrimp", "15", "Salad")

	_, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: shrimp, Quantity: 1}}, "")
	if !errors.Is(err, ErrToppingNotEligible) {
		t.Fatalf("expected ErrToppingNotEligible, got: %v", err)
	}
	if !IsValidation(err) {
		t.Error("expected a validation error")
	}
}

func TestComposeLineItem_ToppingsNotAllowed(t *testing.T) {
	item := menuItem("Iced Tea", "30", "Drinks")
	item.AllowToppings = false
	boba := topping("Boba", "10", "General")

	_, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: boba, Quantity: 1}}, "")
	if !errors.Is(err, ErrToppingsNotAllowed) {
		t.Fatalf("expected ErrToppingsNotAllowed, got: %v", err)
	}

	// A zero-quantity pick is "not selected" and never reaches the check.
	if _, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: boba, Quantity: 0}}, ""); err != nil {
		t.Fatalf("zero quantity pick should be ignored, got: %v", err)
	}
}

func TestComposeLineItem_InvalidQuantities(t *testing.T) {
	item := menuItem("Dish", "10", "Rice")
	egg := topping("Egg", "2", "Rice")

	if _, err := ComposeLineItem(item, 0, nil, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("qty 0: expected ErrInvalidQuantity, got: %v", err)
	}
	if _, err := ComposeLineItem(item, -1, nil, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("qty -1: expected ErrInvalidQuantity, got: %v", err)
	}
	_, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: egg, Quantity: -2}}, "")
	if !errors.Is(err, ErrInvalidToppingQuantity) {
		t.Errorf("negative topping: expected ErrInvalidToppingQuantity, got: %v", err)
	}
}

func TestComposeLineItem_MergesDuplicatePicks(t *testing.T) {
	item := menuItem("Dish", "10", "Rice")
	egg := topping("Egg", "2", "Rice")
	pork := topping("Pork", "5", "Rice")

	line, err := ComposeLineItem(item, 2, []ToppingPick{
		{Topping: egg, Quantity: 1},
		{Topping: pork, Quantity: 1},
		{Topping: egg, Quantity: 2},
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(line.Toppings) != 2 {
		t.Fatalf("expected 2 merged toppings, got %d", len(line.Toppings))
	}
	if line.Toppings[0].ToppingID != egg.ID || line.Toppings[0].PerItemQuantity != 3 {
		t.Errorf("first topping: got %+v", line.Toppings[0])
	}
	// 10*2 + 2*3*2 + 5*1*2 = 42
	if !line.TotalPrice.Equal(dec("42")) {
		t.Errorf("total: got %s, want 42", line.TotalPrice)
	}
}

func TestComposeLineItem_MergedPickOverflow(t *testing.T) {
	salad := menuItem("Shrimp Salad", "120", "Salad")
	shrimp := topping("Extra Shrimp", "15", "Salad")

	_, err := ComposeLineItem(salad, 1, []ToppingPick{
		{Topping: shrimp, Quantity: math.MaxInt32},
		{Topping: shrimp, Quantity: math.MaxInt32},
	}, "")
	if !errors.Is(err, ErrInvalidToppingQuantity) {
		t.Fatalf("expected ErrInvalidToppingQuantity, got: %v", err)
	}
}

func TestLineItem_ReconcilesDetectsTampering(t *testing.T) {
	item := menuItem("Dish", "10", "Rice")
	egg := topping("Egg", "2", "Rice")

	line, err := ComposeLineItem(item, 1, []ToppingPick{{Topping: egg, Quantity: 1}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := line
	bad.TotalPrice = dec("999")
	if bad.Reconciles() {
		t.Error("tampered line total should not reconcile")
	}

	bad = line
	bad.Toppings = []LineTopping{line.Toppings[0]}
	bad.Toppings[0].TotalPrice = dec("1")
	if bad.Reconciles() {
		t.Error("tampered topping total should not reconcile")
	}
}
