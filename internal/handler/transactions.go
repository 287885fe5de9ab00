package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// TransactionStore defines the store methods needed by ledger handlers.
type TransactionStore interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection, orderBy string, desc bool) ([]docstore.Document, error)
}

// TransactionHandler handles the money ledger. Income entries mostly arrive
// automatically from order advances; this surface adds manual entries
// (typically expenses) and the running balance.
type TransactionHandler struct {
	store TransactionStore
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// RegisterRoutes registers ledger endpoints on the given Chi router.
// Expected to be mounted inside a business-scoped subrouter: /businesses/{bid}/transactions
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type transactionRequest struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type ledgerListResponse struct {
	Transactions []model.Transaction `json:"transactions"`
	Balance      decimal.Decimal     `json:"balance"`
}

// --- Handlers ---

// Create handles POST /businesses/{bid}/transactions: a manual ledger entry.
// Advance-linked income entries are created by the order commit, not here.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Type != enum.TransactionIncome && req.Type != enum.TransactionExpense {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type must be Income or Expense"})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}
	if !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	tx := model.Transaction{
		Date:        date,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
	}

	coll := docstore.Collection(businessID, docstore.CollTransactions)
	id, err := h.store.Create(r.Context(), coll, tx)
	if err != nil {
		log.Printf("ERROR: create transaction: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	tx.ID = id

	writeJSON(w, http.StatusCreated, tx)
}

// List handles GET /businesses/{bid}/transactions, newest first, with the
// running balance over the full ledger.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")

	coll := docstore.Collection(businessID, docstore.CollTransactions)
	docs, err := h.store.List(r.Context(), coll, "date", true)
	if err != nil {
		log.Printf("ERROR: list transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.Data
	}
	transactions := model.DecodeTransactions(raws)

	writeJSON(w, http.StatusOK, ledgerListResponse{
		Transactions: transactions,
		Balance:      derive.Balance(transactions),
	})
}

// Delete handles DELETE /businesses/{bid}/transactions/{id}. Deleting an
// advance-linked income entry does not touch the order it came from.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "bid")
	txID := chi.URLParam(r, "id")

	coll := docstore.Collection(businessID, docstore.CollTransactions)
	if err := h.store.Delete(r.Context(), coll, txID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		log.Printf("ERROR: delete transaction: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
