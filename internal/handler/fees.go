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

// FeeStore defines the store methods needed by fee handlers.
type FeeStore interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// FeeHandler handles the reusable extras catalog. Attaching a fee to an
// order copies the amount; catalog edits never rewrite past orders.
type FeeHandler struct {
	store FeeStore
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(store FeeStore) *FeeHandler {
	return &FeeHandler{store: store}
}

// RegisterRoutes registers fee endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/fees
func (h *FeeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type feeRequest struct {
	Description   string          `json:"description"`
	DefaultAmount decimal.Decimal `json:"defaultAmount"`
}

// --- Handlers ---

// Create handles POST /businesses/{bid}/fees.
func (h *FeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	req, ok := decodeFeeRequest(w, r)
	if !ok {
		return
	}

	fee := model.Fee{
		Description:   strings.TrimSpace(req.Description),
		DefaultAmount: req.DefaultAmount,
	}

	coll := docstore.Collection(businessID, docstore.CollFees)
	id, err := h.store.Create(r.Context(), coll, fee)
	if err != nil {
		log.Printf("ERROR: create fee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	fee.ID = id

	writeJSON(w, http.StatusCreated, fee)
}

// List handles GET /businesses/{bid}/fees.
func (h *FeeHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollFees)
	docs, err := h.store.List(r.Context(), coll, "description", false)
	if err != nil {
		log.Printf("ERROR: list fees: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	writeJSON(w, http.StatusOK, map[string]any{"fees": model.DecodeFees(raws)})
}

// Update handles PUT /businesses/{bid}/fees/{id}.
func (h *FeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	feeID := chi.URLParam(r, "id")

	req, ok := decodeFeeRequest(w, r)
	if !ok {
		return
	}

	fields := map[string]any{
		"description":   strings.TrimSpace(req.Description),
		"defaultAmount": req.DefaultAmount,
	}

	coll := docstore.Collection(businessID, docstore.CollFees)
	if err := h.store.Update(r.Context(), coll, feeID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "fee not found"})
			return
		}
		log.Printf("ERROR: update fee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, model.Fee{
		ID:            feeID,
		Description:   strings.TrimSpace(req.Description),
		DefaultAmount: req.DefaultAmount,
	})
}

// Delete handles DELETE /businesses/{bid}/fees/{id}.
func (h *FeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	feeID := chi.URLParam(r, "id")

	coll := docstore.Collection(businessID, docstore.CollFees)
	if err := h.store.Delete(r.Context(), coll, feeID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "fee not found"})
			return
		}
		log.Printf("ERROR: delete fee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeFeeRequest(w http.ResponseWriter, r *http.Request) (feeRequest, bool) {
	var req feeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}
	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return req, false
	}
	if req.DefaultAmount.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "defaultAmount must not be negative"})
		return req, false
	}
	return req, true
}
