package handler

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/model"
)

// CustomerStore defines the store methods needed by customer handlers.
type CustomerStore interface {
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// CustomerHandler serves the derived customer directory. There is no stored
// customer entity: every response is computed from the order collection.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/customers
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{key}", h.Get)
}

// --- Response types ---

type customerResponse struct {
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Number        string          `json:"number"`
	Email         string          `json:"email,omitempty"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LastOrderDate string          `json:"lastOrderDate"`
}

type customerDetailResponse struct {
	customerResponse
	Orders []model.Order `json:"orders"`
}

// --- Handlers ---

// List handles GET /businesses/{bid}/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.directory(w, r)
	if !ok {
		return
	}

	resp := make([]customerResponse, len(entries))
	for i, e := range entries {
		resp[i] = toCustomerResponse(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": resp})
}

// Get handles GET /businesses/{bid}/customers/{key}, where key is the
// normalized name+number grouping key.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.directory(w, r)
	if !ok {
		return
	}

	// Keys contain spaces and a pipe, so clients send them escaped.
	key := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	for _, e := range entries {
		if e.Key == key {
			writeJSON(w, http.StatusOK, customerDetailResponse{
				customerResponse: toCustomerResponse(e),
				Orders:           e.Orders,
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
}

// --- Helpers ---

func (h *CustomerHandler) directory(w http.ResponseWriter, r *http.Request) ([]derive.DirectoryEntry, bool) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollOrders)
	docs, err := h.store.List(r.Context(), coll, "orderDate", true)
	if err != nil {
		log.Printf("ERROR: list orders for customers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	return derive.Directory(model.DecodeOrders(raws)), true
}

func toCustomerResponse(e derive.DirectoryEntry) customerResponse {
	return customerResponse{
		Key:           e.Key,
		Name:          e.Info.Name,
		Number:        e.Info.Number,
		Email:         e.Info.Email,
		TotalOrders:   e.TotalOrders,
		TotalSpent:    e.TotalSpent,
		LastOrderDate: e.LastOrderDate,
	}
}
