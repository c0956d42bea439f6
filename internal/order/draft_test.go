package order

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kraijai/api/internal/enum"
)

type testMenu struct {
	catalog  *Catalog
	salad    MenuItem
	curry    MenuItem
	tea      MenuItem
	shrimp   Topping
	rice     Topping
	soldOut  MenuItem
	oldBacon Topping
}

func newTestMenu() testMenu {
	m := testMenu{
		salad:    menuItem("Shrimp Salad", "120.00", "Salad"),
		curry:    menuItem("Green Curry", "90.00", "Curry"),
		tea:      menuItem("Thai Tea", "35.00", "Drinks"),
		shrimp:   topping("Extra Shrimp", "15.00", "Salad"),
		rice:     topping("Extra Rice", "10.00", enum.ToppingCategoryGeneral),
		soldOut:  menuItem("Mango Sticky Rice", "80.00", "Dessert"),
		oldBacon: topping("Bacon", "20.00", "Salad"),
	}
	m.tea.AllowToppings = false
	m.soldOut.IsAvailable = false
	m.oldBacon.IsAvailable = false
	m.catalog = NewCatalog(
		[]MenuItem{m.salad, m.curry, m.tea, m.soldOut},
		[]Topping{m.shrimp, m.rice, m.oldBacon},
	)
	return m
}

func TestCatalog_DropsUnavailable(t *testing.T) {
	m := newTestMenu()

	if len(m.catalog.Items()) != 3 {
		t.Fatalf("items: got %d, want 3", len(m.catalog.Items()))
	}
	if _, ok := m.catalog.Item(m.soldOut.ID); ok {
		t.Error("unavailable item should not be in catalog")
	}
	if _, ok := m.catalog.Topping(m.oldBacon.ID); ok {
		t.Error("unavailable topping should not be in catalog")
	}
}

func TestCatalog_CategoriesAndFilter(t *testing.T) {
	m := newTestMenu()

	cats := m.catalog.Categories()
	want := []string{"Curry", "Drinks", "Salad"}
	if len(cats) != len(want) {
		t.Fatalf("categories: got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("categories: got %v, want %v", cats, want)
		}
	}

	if got := m.catalog.ItemsInCategory(enum.CategoryAll); len(got) != 3 {
		t.Errorf("All: got %d items", len(got))
	}
	if got := m.catalog.ItemsInCategory("Salad"); len(got) != 1 || got[0].ID != m.salad.ID {
		t.Errorf("Salad: got %v", got)
	}
	if got := m.catalog.ItemsInCategory("Pizza"); len(got) != 0 {
		t.Errorf("Pizza: got %v", got)
	}
}

func TestCatalog_EligibleToppings(t *testing.T) {
	m := newTestMenu()

	salad := m.catalog.EligibleToppings(m.salad)
	if len(salad) != 2 {
		t.Fatalf("salad toppings: got %d, want 2 (shrimp + general rice)", len(salad))
	}
	curry := m.catalog.EligibleToppings(m.curry)
	if len(curry) != 1 || curry[0].ID != m.rice.ID {
		t.Fatalf("curry toppings: got %v, want only the General topping", curry)
	}
	if got := m.catalog.EligibleToppings(m.tea); got != nil {
		t.Fatalf("tea does not allow toppings, got %v", got)
	}
}

func TestDraft_BuildAndSubmit(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)

	l1, err := d.AddItem(m.salad.ID, 2)
	if err != nil {
		t.Fatalf("add salad: %v", err)
	}
	if err := d.SetToppingQuantity(l1, m.shrimp.ID, 1); err != nil {
		t.Fatalf("set shrimp: %v", err)
	}
	if err := d.SetInstructions(l1, "dressing on the side"); err != nil {
		t.Fatalf("set instructions: %v", err)
	}
	l2, err := d.AddItem(m.curry.ID, 1)
	if err != nil {
		t.Fatalf("add curry: %v", err)
	}
	if err := d.SetToppingQuantity(l2, m.rice.ID, 2); err != nil {
		t.Fatalf("set rice: %v", err)
	}

	total, err := d.ComputeTotal()
	if err != nil {
		t.Fatalf("compute total: %v", err)
	}
	// salad 120*2 + 15*1*2 = 270, curry 90 + 10*2 = 110
	if total.StringFixed(2) != "380.00" {
		t.Fatalf("total: got %s, want 380.00", total.StringFixed(2))
	}

	s, err := d.ToSubmission(Header{CustomerName: " Malee ", OrderType: enum.OrderTypeDelivery})
	if err != nil {
		t.Fatalf("to submission: %v", err)
	}
	if s.CustomerName != "Malee" {
		t.Errorf("customer name should be trimmed, got %q", s.CustomerName)
	}
	if len(s.Items) != 2 || !s.Total().Equal(total) {
		t.Errorf("submission: %d items, total %s", len(s.Items), s.Total())
	}
	if s.Items[0].SpecialInstructions != "dressing on the side" {
		t.Errorf("instructions: got %q", s.Items[0].SpecialInstructions)
	}
}

func TestDraft_SameItemTwiceKeepsSeparateLines(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)

	plain, _ := d.AddItem(m.salad.ID, 1)
	extra, _ := d.AddItem(m.salad.ID, 1)
	if err := d.SetToppingQuantity(extra, m.shrimp.ID, 2); err != nil {
		t.Fatalf("set shrimp: %v", err)
	}

	lines, err := d.Lines()
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[plain].Toppings) != 0 || len(lines[extra].Toppings) != 1 {
		t.Errorf("toppings leaked between lines: %+v", lines)
	}
}

func TestDraft_ZeroQuantityDeselects(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)

	l1, _ := d.AddItem(m.salad.ID, 1)
	_ = d.SetToppingQuantity(l1, m.shrimp.ID, 3)
	_ = d.SetToppingQuantity(l1, m.shrimp.ID, 0)

	total, err := d.ComputeTotal()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !total.Equal(dec("120")) {
		t.Errorf("deselected topping still billed: total %s", total)
	}

	if err := d.SetItemQuantity(l1, 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len: got %d, want 0", d.Len())
	}
	_, err = d.ToSubmission(Header{CustomerName: "A", OrderType: enum.OrderTypeDineIn})
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got: %v", err)
	}
}

func TestDraft_Rejections(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)

	if _, err := d.AddItem(m.soldOut.ID, 1); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("sold out item: expected ErrMenuItemNotFound, got: %v", err)
	}
	if _, err := d.AddItem(uuid.New(), 1); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("unknown item: expected ErrMenuItemNotFound, got: %v", err)
	}
	if _, err := d.AddItem(m.salad.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty: expected ErrInvalidQuantity, got: %v", err)
	}

	curry, _ := d.AddItem(m.curry.ID, 1)
	if err := d.SetToppingQuantity(curry, m.shrimp.ID, 1); !errors.Is(err, ErrToppingNotEligible) {
		t.Errorf("shrimp on curry: expected ErrToppingNotEligible, got: %v", err)
	}
	if err := d.SetToppingQuantity(curry, m.oldBacon.ID, 1); !errors.Is(err, ErrToppingNotFound) {
		t.Errorf("unavailable topping: expected ErrToppingNotFound, got: %v", err)
	}
	if err := d.SetToppingQuantity(curry, m.rice.ID, -1); !errors.Is(err, ErrInvalidToppingQuantity) {
		t.Errorf("negative topping: expected ErrInvalidToppingQuantity, got: %v", err)
	}

	tea, _ := d.AddItem(m.tea.ID, 1)
	if err := d.SetToppingQuantity(tea, m.rice.ID, 1); !errors.Is(err, ErrToppingsNotAllowed) {
		t.Errorf("topping on tea: expected ErrToppingsNotAllowed, got: %v", err)
	}

	if err := d.SetItemQuantity(99, 1); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("bad line: expected ErrLineNotFound, got: %v", err)
	}
	if err := d.SetItemQuantity(curry, -3); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative qty: expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestDraft_ToSubmissionValidatesHeaderFirst(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)
	_, _ = d.AddItem(m.salad.ID, 1)

	_, err := d.ToSubmission(Header{CustomerName: "  ", OrderType: enum.OrderTypeDineIn})
	if !errors.Is(err, ErrCustomerNameRequired) {
		t.Fatalf("expected ErrCustomerNameRequired, got: %v", err)
	}
}

func TestDraft_RemoveItemKeepsOtherLines(t *testing.T) {
	m := newTestMenu()
	d := NewDraft(m.catalog)

	first, _ := d.AddItem(m.salad.ID, 1)
	second, _ := d.AddItem(m.curry.ID, 2)

	if err := d.RemoveItem(first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := d.SetToppingQuantity(second, m.rice.ID, 1); err != nil {
		t.Fatalf("second line should still be addressable: %v", err)
	}

	lines, err := d.Lines()
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].MenuItemID != m.curry.ID {
		t.Fatalf("expected only the curry line, got %+v", lines)
	}
	// 90*2 + 10*1*2
	if !lines[0].TotalPrice.Equal(dec("200")) {
		t.Errorf("total: got %s, want 200", lines[0].TotalPrice)
	}
}
