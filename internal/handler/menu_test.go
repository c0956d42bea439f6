package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/handler"
)

type mockMenuStore struct {
	items    []database.MenuItem
	toppings []database.Topping
	err      error
}

func (m *mockMenuStore) ListAvailableMenuItems(context.Context) ([]database.MenuItem, error) {
	return m.items, m.err
}

func (m *mockMenuStore) ListAvailableToppings(context.Context) ([]database.Topping, error) {
	return m.toppings, nil
}

func newMenuRouter(store handler.MenuStore) chi.Router {
	r := chi.NewRouter()
	handler.NewMenuHandler(store).RegisterRoutes(r)
	return r
}

func menuFixture(t *testing.T) (*mockMenuStore, map[string]uuid.UUID) {
	t.Helper()
	ids := map[string]uuid.UUID{
		"salad":  uuid.New(),
		"tea":    uuid.New(),
		"curry":  uuid.New(),
		"shrimp": uuid.New(),
		"rice":   uuid.New(),
		"ice":    uuid.New(),
	}
	store := &mockMenuStore{
		items: []database.MenuItem{
			{ID: ids["salad"], Name: "Papaya Salad", Price: mustNumeric(t, "120"), Category: "Salad", IsAvailable: true, AllowToppings: true,
				Description: pgtype.Text{String: "Spicy", Valid: true}},
			{ID: ids["tea"], Name: "Thai Tea", Price: mustNumeric(t, "35"), Category: "Drinks", IsAvailable: true, AllowToppings: false},
			{ID: ids["curry"], Name: "Green Curry", Price: mustNumeric(t, "90"), Category: "Curry", IsAvailable: true, AllowToppings: true},
		},
		toppings: []database.Topping{
			{ID: ids["shrimp"], Name: "Shrimp", Price: mustNumeric(t, "15"), Category: "Salad", IsAvailable: true},
			{ID: ids["rice"], Name: "Rice", Price: mustNumeric(t, "10"), Category: "General", IsAvailable: true},
			{ID: ids["ice"], Name: "Extra Ice", Price: mustNumeric(t, "5"), Category: "Drinks", IsAvailable: false},
		},
	}
	return store, ids
}

func toppingIDs(t *testing.T, item map[string]interface{}) []string {
	t.Helper()
	raw, ok := item["topping_ids"].([]interface{})
	if !ok {
		t.Fatalf("topping_ids missing or not a list: %v", item["topping_ids"])
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = v.(string)
	}
	return out
}

func TestMenu_AllCategories(t *testing.T) {
	store, ids := menuFixture(t)
	router := newMenuRouter(store)

	rr := doJSON(t, router, "GET", "/menu", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)

	cats := resp["categories"].([]interface{})
	want := []string{"All", "Curry", "Drinks", "Salad"}
	if len(cats) != len(want) {
		t.Fatalf("categories: got %v, want %v", cats, want)
	}
	for i, c := range want {
		if cats[i] != c {
			t.Errorf("categories[%d]: got %v, want %s", i, cats[i], c)
		}
	}

	items := resp["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	byName := map[string]map[string]interface{}{}
	for _, it := range items {
		m := it.(map[string]interface{})
		byName[m["name"].(string)] = m
	}

	salad := byName["Papaya Salad"]
	if salad["price"] != "120.00" || salad["description"] != "Spicy" {
		t.Errorf("unexpected salad: %v", salad)
	}
	if got := toppingIDs(t, salad); len(got) != 2 || got[0] != ids["shrimp"].String() || got[1] != ids["rice"].String() {
		t.Errorf("salad toppings: got %v", got)
	}
	if got := toppingIDs(t, byName["Green Curry"]); len(got) != 1 || got[0] != ids["rice"].String() {
		t.Errorf("curry toppings: got %v", got)
	}
	if got := toppingIDs(t, byName["Thai Tea"]); len(got) != 0 {
		t.Errorf("tea allows no toppings, got %v", got)
	}

	if toppings := resp["toppings"].([]interface{}); len(toppings) != 2 {
		t.Errorf("unavailable topping should be hidden, got %d toppings", len(toppings))
	}
}

func TestMenu_CategoryFilter(t *testing.T) {
	store, _ := menuFixture(t)
	router := newMenuRouter(store)

	rr := doJSON(t, router, "GET", "/menu?category=Drinks", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	items := resp["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["name"] != "Thai Tea" {
		t.Errorf("expected only Thai Tea, got %v", items)
	}
	if cats := resp["categories"].([]interface{}); len(cats) != 4 {
		t.Errorf("categories must not be filtered, got %v", cats)
	}

	rr = doJSON(t, router, "GET", "/menu?category=Noodles", nil, nil)
	resp = decodeResponse(t, rr)
	if items := resp["items"].([]interface{}); len(items) != 0 {
		t.Errorf("unknown category should be empty, got %v", items)
	}
}

func TestMenu_StoreError(t *testing.T) {
	router := newMenuRouter(&mockMenuStore{err: errors.New("db down")})

	rr := doJSON(t, router, "GET", "/menu", nil, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
