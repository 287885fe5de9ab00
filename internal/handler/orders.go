package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/draft"
	"github.com/darzibook/api/internal/model"
	"github.com/darzibook/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Create(ctx context.Context, businessID string, d draft.Draft) (model.Order, error)
	Update(ctx context.Context, businessID, orderID string, d draft.Draft) (model.Order, error)
	Delete(ctx context.Context, businessID, orderID string) error
	Get(ctx context.Context, businessID, orderID string) (model.Order, error)
	ApplyItemEdit(ctx context.Context, businessID string, o model.Order, itemID, field, value string) (model.Order, error)
}

// OrderStore defines the store methods needed by order list handlers.
type OrderStore interface {
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/items", h.EditItem)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

// The order payload is the document shape itself; the server reseeds
// creation-only fields the client left blank and reruns validation,
// sanitization and totals before anything is stored.

type editItemRequest struct {
	ItemID string `json:"itemId"`
	Field  string `json:"field"`
	Value  string `json:"value"`
}

// --- Handlers ---

// Create handles POST /businesses/{bid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	var o model.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Bill number and order date are fixed at creation; clients may omit
	// them and get server-generated values.
	if o.BillNumber == "" || o.OrderDate == "" {
		fresh := draft.New(time.Now())
		if o.BillNumber == "" {
			o.BillNumber = fresh.Order.BillNumber
		}
		if o.OrderDate == "" {
			o.OrderDate = fresh.Order.OrderDate
		}
	}

	created, err := h.svc.Create(r.Context(), businessID, draft.FromOrder(o))
	if err != nil {
		if isDraftValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /businesses/{bid}/orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollOrders)
	docs, err := h.store.List(r.Context(), coll, "orderDate", true)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	orders := model.DecodeOrders(raws)

	if status := r.URL.Query().Get("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Get handles GET /businesses/{bid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	orderID := chi.URLParam(r, "id")

	o, err := h.svc.Get(r.Context(), businessID, orderID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Update handles PUT /businesses/{bid}/orders/{id}: a full-order edit that
// goes back through draft validation and sanitization.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	orderID := chi.URLParam(r, "id")

	var o model.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.Update(r.Context(), businessID, orderID, draft.FromOrder(o))
	if err != nil {
		if isDraftValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// EditItem handles PATCH /businesses/{bid}/orders/{id}/items: one inline
// status or worker-assignment change, addressed by stable item id.
func (h *OrderHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	orderID := chi.URLParam(r, "id")

	var req editItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" || req.Field == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "itemId and field are required"})
		return
	}

	o, err := h.svc.Get(r.Context(), businessID, orderID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for item edit: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.svc.ApplyItemEdit(r.Context(), businessID, o, req.ItemID, req.Field, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrBadItemField), errors.Is(err, service.ErrBadItemStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: item edit: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /businesses/{bid}/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	orderID := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), businessID, orderID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// isDraftValidationError checks if the error is a known validation error
// from the draft layer that should result in 400 Bad Request.
func isDraftValidationError(err error) bool {
	return errors.Is(err, draft.ErrCustomerName) ||
		errors.Is(err, draft.ErrCustomerNumber) ||
		errors.Is(err, draft.ErrDeliveryDate) ||
		errors.Is(err, draft.ErrNoNamedItem) ||
		errors.Is(err, draft.ErrUnnamedPerson)
}
