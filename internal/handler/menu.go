package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/enum"
	"github.com/kraijai/api/internal/order"
	"github.com/kraijai/api/internal/service"
)

// MenuStore defines the database methods needed by the public menu.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListAvailableToppings(ctx context.Context) ([]database.Topping, error)
}

// MenuHandler serves the orderable menu.
type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

// --- Response types ---

type menuResponse struct {
	Categories []string              `json:"categories"`
	Items      []menuItemResponse    `json:"items"`
	Toppings   []menuToppingResponse `json:"toppings"`
}

type menuItemResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         string      `json:"price"`
	Category      string      `json:"category"`
	AllowToppings bool        `json:"allow_toppings"`
	ToppingIDs    []uuid.UUID `json:"topping_ids"`
}

type menuToppingResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Category string    `json:"category"`
}

// Get handles GET /menu?category=.
// Categories always lists every category; items are narrowed by the filter.
// Each item carries the ids of the toppings that may be attached to it.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAvailableMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	toppings, err := h.store.ListAvailableToppings(r.Context())
	if err != nil {
		log.Printf("ERROR: list toppings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	catalog := service.CatalogFromRows(items, toppings)
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	resp := menuResponse{
		Categories: append([]string{enum.CategoryAll}, catalog.Categories()...),
		Items:      []menuItemResponse{},
		Toppings:   make([]menuToppingResponse, 0, len(catalog.Toppings())),
	}
	for _, it := range catalog.ItemsInCategory(category) {
		resp.Items = append(resp.Items, toMenuItemResponse(catalog, it))
	}
	for _, t := range catalog.Toppings() {
		resp.Toppings = append(resp.Toppings, menuToppingResponse{
			ID:       t.ID,
			Name:     t.Name,
			Price:    t.Price.StringFixed(2),
			Category: t.Category,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func toMenuItemResponse(c *order.Catalog, it order.MenuItem) menuItemResponse {
	ids := []uuid.UUID{}
	for _, t := range c.EligibleToppings(it) {
		ids = append(ids, t.ID)
	}
	return menuItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Description:   it.Description,
		Price:         it.Price.StringFixed(2),
		Category:      it.Category,
		AllowToppings: it.AllowToppings,
		ToppingIDs:    ids,
	}
}
