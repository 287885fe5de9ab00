package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/model"
)

// MasterItemStore defines the store methods needed by master item handlers.
type MasterItemStore interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// MasterItemHandler handles the garment catalog: price defaults for new
// order items and the cutting/sewing rate table for worker pay.
type MasterItemHandler struct {
	store MasterItemStore
}

// NewMasterItemHandler creates a new MasterItemHandler.
func NewMasterItemHandler(store MasterItemStore) *MasterItemHandler {
	return &MasterItemHandler{store: store}
}

// RegisterRoutes registers master item endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/master-items
func (h *MasterItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type masterItemRequest struct {
	Name          string          `json:"name"`
	CustomerPrice decimal.Decimal `json:"customerPrice"`
	SewingRate    decimal.Decimal `json:"sewingRate"`
	CuttingRate   decimal.Decimal `json:"cuttingRate"`
}

// --- Handlers ---

// Create handles POST /businesses/{bid}/master-items.
func (h *MasterItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	req, ok := decodeMasterItemRequest(w, r)
	if !ok {
		return
	}

	item := model.MasterItem{
		Name:          strings.TrimSpace(req.Name),
		CustomerPrice: req.CustomerPrice,
		SewingRate:    req.SewingRate,
		CuttingRate:   req.CuttingRate,
	}

	coll := docstore.Collection(businessID, docstore.CollMasterItems)
	id, err := h.store.Create(r.Context(), coll, item)
	if err != nil {
		log.Printf("ERROR: create master item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	item.ID = id

	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /businesses/{bid}/master-items.
func (h *MasterItemHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollMasterItems)
	docs, err := h.store.List(r.Context(), coll, "name", false)
	if err != nil {
		log.Printf("ERROR: list master items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	writeJSON(w, http.StatusOK, map[string]any{"masterItems": model.DecodeMasterItems(raws)})
}

// Update handles PUT /businesses/{bid}/master-items/{id}. Rate changes apply
// to future lookups only where prices were already copied into orders, but
// worker ledgers recompute against the new rates immediately.
func (h *MasterItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	itemID := chi.URLParam(r, "id")

	req, ok := decodeMasterItemRequest(w, r)
	if !ok {
		return
	}

	fields := map[string]any{
		"name":          strings.TrimSpace(req.Name),
		"customerPrice": req.CustomerPrice,
		"sewingRate":    req.SewingRate,
		"cuttingRate":   req.CuttingRate,
	}

	coll := docstore.Collection(businessID, docstore.CollMasterItems)
	if err := h.store.Update(r.Context(), coll, itemID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "master item not found"})
			return
		}
		log.Printf("ERROR: update master item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, model.MasterItem{
		ID:            itemID,
		Name:          strings.TrimSpace(req.Name),
		CustomerPrice: req.CustomerPrice,
		SewingRate:    req.SewingRate,
		CuttingRate:   req.CuttingRate,
	})
}

// Delete handles DELETE /businesses/{bid}/master-items/{id}.
func (h *MasterItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	itemID := chi.URLParam(r, "id")

	coll := docstore.Collection(businessID, docstore.CollMasterItems)
	if err := h.store.Delete(r.Context(), coll, itemID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "master item not found"})
			return
		}
		log.Printf("ERROR: delete master item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeMasterItemRequest(w http.ResponseWriter, r *http.Request) (masterItemRequest, bool) {
	var req masterItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return req, false
	}
	if req.CustomerPrice.IsNegative() || req.SewingRate.IsNegative() || req.CuttingRate.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prices and rates must not be negative"})
		return req, false
	}
	return req, true
}
