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

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/model"
)

// WorkerStore defines the store methods needed by worker handlers.
type WorkerStore interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	GetOnce(ctx context.Context, collection, id string) (docstore.Document, error)
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// WorkerHandler handles worker endpoints, including the derived earnings
// ledger computed from live order assignments.
type WorkerHandler struct {
	store WorkerStore
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(store WorkerStore) *WorkerHandler {
	return &WorkerHandler{store: store}
}

// RegisterRoutes registers worker endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/workers
func (h *WorkerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/ledger", h.Ledger)
}

// --- Request / Response types ---

type workerRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Contact        string `json:"contact"`
}

type ledgerLineResponse struct {
	OrderID      string          `json:"orderId"`
	BillNumber   string          `json:"billNumber"`
	OrderDate    string          `json:"orderDate"`
	CustomerName string          `json:"customerName"`
	ItemID       string          `json:"itemId"`
	ItemName     string          `json:"itemName"`
	Role         string          `json:"role"`
	Pay          decimal.Decimal `json:"pay"`
}

type ledgerResponse struct {
	Worker      model.Worker         `json:"worker"`
	Lines       []ledgerLineResponse `json:"lines"`
	TotalEarned decimal.Decimal      `json:"totalEarned"`
	Paid        decimal.Decimal      `json:"paid"`
	Pending     decimal.Decimal      `json:"pending"`
}

// --- Handlers ---

// Create handles POST /businesses/{bid}/workers.
func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	worker := model.Worker{
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Contact:        strings.TrimSpace(req.Contact),
	}

	coll := docstore.Collection(businessID, docstore.CollWorkers)
	id, err := h.store.Create(r.Context(), coll, worker)
	if err != nil {
		log.Printf("ERROR: create worker: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	worker.ID = id

	writeJSON(w, http.StatusCreated, worker)
}

// List handles GET /businesses/{bid}/workers.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollWorkers)
	docs, err := h.store.List(r.Context(), coll, "name", false)
	if err != nil {
		log.Printf("ERROR: list workers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	writeJSON(w, http.StatusOK, map[string]any{"workers": model.DecodeWorkers(raws)})
}

// Get handles GET /businesses/{bid}/workers/{id}.
func (h *WorkerHandler) Get(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

// Update handles PUT /businesses/{bid}/workers/{id}.
func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	workerID := chi.URLParam(r, "id")

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	// Renaming a worker orphans their historical cutter/sewer assignments;
	// the ledger matches by name, not id.
	fields := map[string]any{
		"name":           strings.TrimSpace(req.Name),
		"specialization": strings.TrimSpace(req.Specialization),
		"contact":        strings.TrimSpace(req.Contact),
	}

	coll := docstore.Collection(businessID, docstore.CollWorkers)
	if err := h.store.Update(r.Context(), coll, workerID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "worker not found"})
			return
		}
		log.Printf("ERROR: update worker: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, model.Worker{
		ID:             workerID,
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Contact:        strings.TrimSpace(req.Contact),
	})
}

// Delete handles DELETE /businesses/{bid}/workers/{id}.
func (h *WorkerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	workerID := chi.URLParam(r, "id")

	coll := docstore.Collection(businessID, docstore.CollWorkers)
	if err := h.store.Delete(r.Context(), coll, workerID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "worker not found"})
			return
		}
		log.Printf("ERROR: delete worker: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Ledger handles GET /businesses/{bid}/workers/{id}/ledger. The statement is
// recomputed from orders and the master rate table on every request.
func (h *WorkerHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	worker, ok := h.fetch(w, r)
	if !ok {
		return
	}

	orderDocs, err := h.store.List(r.Context(), docstore.Collection(businessID, docstore.CollOrders), "orderDate", true)
	if err != nil {
		log.Printf("ERROR: list orders for ledger: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	masterDocs, err := h.store.List(r.Context(), docstore.Collection(businessID, docstore.CollMasterItems), "name", false)
	if err != nil {
		log.Printf("ERROR: list master items for ledger: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orderRaws := make([][]byte, len(orderDocs))
	for i, d := range orderDocs {
		orderRaws[i] = d.Data
	}
	masterRaws := make([][]byte, len(masterDocs))
	for i, d := range masterDocs {
		masterRaws[i] = d.Data
	}

	ledger := derive.Ledger(worker, model.DecodeOrders(orderRaws), model.DecodeMasterItems(masterRaws))

	lines := make([]ledgerLineResponse, len(ledger.Lines))
	for i, l := range ledger.Lines {
		lines[i] = ledgerLineResponse{
			OrderID:      l.OrderID,
			BillNumber:   l.BillNumber,
			OrderDate:    l.OrderDate,
			CustomerName: l.CustomerName,
			ItemID:       l.ItemID,
			ItemName:     l.ItemName,
			Role:         l.Role,
			Pay:          l.Pay,
		}
	}

	writeJSON(w, http.StatusOK, ledgerResponse{
		Worker:      worker,
		Lines:       lines,
		TotalEarned: ledger.TotalEarned,
		Paid:        ledger.Paid,
		Pending:     ledger.Pending,
	})
}

// --- Helpers ---

func (h *WorkerHandler) fetch(w http.ResponseWriter, r *http.Request) (model.Worker, bool) {
	businessID := chi.URLParam(r, "bid")
	workerID := chi.URLParam(r, "id")

	coll := docstore.Collection(businessID, docstore.CollWorkers)
	doc, err := h.store.GetOnce(r.Context(), coll, workerID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "worker not found"})
			return model.Worker{}, false
		}
		log.Printf("ERROR: get worker: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return model.Worker{}, false
	}

	workers := model.DecodeWorkers([][]byte{doc.Data})
	if len(workers) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "worker not found"})
		return model.Worker{}, false
	}
	return workers[0], true
}
