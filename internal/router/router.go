package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/darzibook/api/internal/config"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/handler"
	mw "github.com/darzibook/api/internal/middleware"
	"github.com/darzibook/api/internal/service"
	"github.com/darzibook/api/internal/upload"
	"github.com/darzibook/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, business scoping, and role-based middleware as needed.
func New(cfg *config.Config, store docstore.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // web dev server
			"https://app.darzibook.in",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Stored design photos
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(store, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/businesses/{bid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Business-scoped routes
		r.Route("/businesses/{bid}", func(r chi.Router) {
			r.Use(mw.RequireBusiness)

			// Orders
			orderService := service.NewOrderService(store, hub)
			orderHandler := handler.NewOrderHandler(orderService, store)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Customers (derived from orders)
			customerHandler := handler.NewCustomerHandler(store)
			r.Route("/customers", customerHandler.RegisterRoutes)

			// Workers
			workerHandler := handler.NewWorkerHandler(store)
			r.Route("/workers", workerHandler.RegisterRoutes)

			// Master items
			masterItemHandler := handler.NewMasterItemHandler(store)
			r.Route("/master-items", masterItemHandler.RegisterRoutes)

			// Fees
			feeHandler := handler.NewFeeHandler(store)
			r.Route("/fees", feeHandler.RegisterRoutes)

			// Design photo uploads
			uploadHandler := handler.NewUploadHandler(upload.NewLocal(cfg.UploadDir))
			r.Route("/uploads", uploadHandler.RegisterRoutes)

			// Owner-only: money ledger and dashboard
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner))

				transactionHandler := handler.NewTransactionHandler(store)
				r.Route("/transactions", transactionHandler.RegisterRoutes)

				dashboardHandler := handler.NewDashboardHandler(store)
				r.Route("/dashboard", dashboardHandler.RegisterRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
