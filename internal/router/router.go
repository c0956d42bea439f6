package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	accthandler "github.com/kraijai/api/internal/accounting/handler"
	"github.com/kraijai/api/internal/config"
	"github.com/kraijai/api/internal/database"
	"github.com/kraijai/api/internal/enum"
	"github.com/kraijai/api/internal/handler"
	mw "github.com/kraijai/api/internal/middleware"
	"github.com/kraijai/api/internal/order"
	"github.com/kraijai/api/internal/service"
)

// New creates a Chi router with all application routes wired up.
// Orders are open to staff and admins; bookkeeping and the dashboard are
// admin only.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handler.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	menuHandler := handler.NewMenuHandler(queries)
	menuHandler.RegisterRoutes(r)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Orders (staff and admin)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleStaff, enum.UserRoleAdmin))

			orderService := service.NewOrderService(
				pool,
				func(db database.DBTX) service.OrderStore {
					return database.New(db)
				},
				order.NewTimestampNumbers(cfg.OrderNumberPrefix),
			)
			orderHandler := handler.NewOrderHandler(orderService, queries, cfg.Location)
			r.Route("/orders", orderHandler.RegisterRoutes)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			dashboardHandler := accthandler.NewDashboardHandler(queries, cfg.Location, cfg.MaxReportDays)
			r.Route("/admin/dashboard", dashboardHandler.RegisterRoutes)

			expenseHandler := accthandler.NewExpenseHandler(queries, cfg.Location)
			r.Route("/admin/expenses", expenseHandler.RegisterRoutes)

			purchaseHandler := accthandler.NewPurchaseHandler(queries, cfg.Location)
			r.Route("/admin/purchases", purchaseHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
