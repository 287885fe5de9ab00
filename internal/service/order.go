package service

import (
	"context"
	"fmt"
	"time"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/draft"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// EventSink receives order change notifications for the live feed. The
// status/assignment protocol pushes optimistic state through it before the
// store confirms, and a correcting snapshot if the write fails.
type EventSink interface {
	OrderChanged(businessID string, o model.Order)
}

// OrderService owns the commit protocol for drafts and the inline
// status/assignment edits against persisted orders.
type OrderService struct {
	store  docstore.Store
	events EventSink
}

// NewOrderService creates an OrderService. events may be nil.
func NewOrderService(store docstore.Store, events EventSink) *OrderService {
	return &OrderService{store: store, events: events}
}

// Create validates and commits a draft as one atomic batch: the order
// document plus, when an advance was taken, a linked Income ledger entry.
// Either both documents land or neither does. On any failure the caller's
// draft is untouched and can be retried as-is.
func (s *OrderService) Create(ctx context.Context, businessID string, d draft.Draft) (model.Order, error) {
	if err := d.Validate(); err != nil {
		return model.Order{}, err
	}

	o := d.Sanitize()
	o.ID = s.store.NewID()

	ops := []docstore.BatchOp{{
		Kind:       docstore.OpCreate,
		Collection: docstore.Collection(businessID, docstore.CollOrders),
		ID:         o.ID,
		Doc:        o,
	}}
	if o.Payment.Advance.IsPositive() {
		tx := model.Transaction{
			Date:        transactionDate(o.OrderDate),
			Type:        enum.TransactionIncome,
			Description: fmt.Sprintf("Advance for bill %s (%s)", o.BillNumber, o.Customer.Name),
			Amount:      o.Payment.Advance,
			OrderRef:    o.ID,
		}
		tx.ID = s.store.NewID()
		ops = append(ops, docstore.BatchOp{
			Kind:       docstore.OpCreate,
			Collection: docstore.Collection(businessID, docstore.CollTransactions),
			ID:         tx.ID,
			Doc:        tx,
		})
	}

	if err := s.store.ApplyBatch(ctx, ops); err != nil {
		return model.Order{}, fmt.Errorf("commit order: %w", err)
	}

	if s.events != nil {
		s.events.OrderChanged(businessID, o)
	}
	return o, nil
}

// Update commits an edited draft as a single order update. Edits never
// generate ledger entries; only creation-time advances do.
func (s *OrderService) Update(ctx context.Context, businessID, orderID string, d draft.Draft) (model.Order, error) {
	if err := d.Validate(); err != nil {
		return model.Order{}, err
	}

	current, err := s.Get(ctx, businessID, orderID)
	if err != nil {
		return model.Order{}, err
	}

	o := d.Sanitize()
	o.ID = orderID
	// Bill number and order date are fixed at creation; an edit payload
	// cannot move or clear them.
	o.BillNumber = current.BillNumber
	o.OrderDate = current.OrderDate

	coll := docstore.Collection(businessID, docstore.CollOrders)
	if err := s.store.Update(ctx, coll, orderID, orderFields(o)); err != nil {
		return model.Order{}, fmt.Errorf("update order: %w", err)
	}

	if s.events != nil {
		s.events.OrderChanged(businessID, o)
	}
	return o, nil
}

// Delete removes an order document. Immediate and irreversible; the
// confirmation step is the UI's job.
func (s *OrderService) Delete(ctx context.Context, businessID, orderID string) error {
	coll := docstore.Collection(businessID, docstore.CollOrders)
	if err := s.store.Delete(ctx, coll, orderID); err != nil {
		return err
	}
	return nil
}

// Get fetches and decodes one order.
func (s *OrderService) Get(ctx context.Context, businessID, orderID string) (model.Order, error) {
	coll := docstore.Collection(businessID, docstore.CollOrders)
	doc, err := s.store.GetOnce(ctx, coll, orderID)
	if err != nil {
		return model.Order{}, err
	}
	orders := model.DecodeOrders([][]byte{doc.Data})
	if len(orders) == 0 {
		return model.Order{}, fmt.Errorf("order %s: undecodable document", orderID)
	}
	return orders[0], nil
}

// orderFields flattens an order into the top-level fields the store
// replaces. The id is carried by the document address, not the payload.
func orderFields(o model.Order) map[string]any {
	return map[string]any{
		"billNumber":   o.BillNumber,
		"customer":     o.Customer,
		"orderDate":    o.OrderDate,
		"deliveryDate": o.DeliveryDate,
		"notes":        o.Notes,
		"people":       o.People,
		"payment":      o.Payment,
		"status":       o.Status,
	}
}

// transactionDate derives the ledger date from the order's creation
// timestamp, falling back to today for unparseable values.
func transactionDate(orderDate string) string {
	if t, ok := derive.ParseOrderDate(orderDate); ok {
		return t.Format(model.DateLayout)
	}
	return time.Now().Format(model.DateLayout)
}
