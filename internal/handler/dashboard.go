package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/model"
)

// DashboardStore defines the store methods needed by dashboard handlers.
type DashboardStore interface {
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// DashboardHandler serves the owner dashboard: revenue windows, the item
// status distribution and the most recent orders, all recomputed per
// request from the order collection.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/dashboard
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
}

// --- Response types ---

type revenueWindowResponse struct {
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"orderCount"`
}

type dashboardResponse struct {
	Today              revenueWindowResponse `json:"today"`
	Month              revenueWindowResponse `json:"month"`
	Year               revenueWindowResponse `json:"year"`
	StatusDistribution map[string]int        `json:"statusDistribution"`
	RecentOrders       []model.Order         `json:"recentOrders"`
}

// --- Handlers ---

const recentOrderCount = 5

// Summary handles GET /businesses/{bid}/dashboard.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollOrders)
	docs, err := h.store.List(r.Context(), coll, "orderDate", true)
	if err != nil {
		log.Printf("ERROR: list orders for dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	orders := model.DecodeOrders(raws)

	revenue := derive.Revenue(orders, time.Now())

	recent := orders
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Today:              revenueWindowResponse(revenue.Today),
		Month:              revenueWindowResponse(revenue.Month),
		Year:               revenueWindowResponse(revenue.Year),
		StatusDistribution: derive.StatusDistribution(orders),
		RecentOrders:       recent,
	})
}
