package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// Errors from inline item edits.
var (
	ErrItemNotFound  = errors.New("item not found in order")
	ErrBadItemField  = errors.New("field must be status, cutter or sewer")
	ErrBadItemStatus = errors.New("unknown item status")
)

// editState tracks one inline edit through its lifecycle. The transitions
// are Clean -> Pending -> Clean on confirmation, or Pending -> RolledBack on
// a failed write.
type editState int

const (
	editClean editState = iota
	editPending
	editRolledBack
)

// ItemEdit is one optimistic status/assignment edit against a persisted
// order. It holds the pre-change snapshot for rollback and the modified copy
// for optimistic display; the original order value is never mutated.
type ItemEdit struct {
	state    editState
	noop     bool
	snapshot model.Order
	applied  model.Order
}

// BeginItemEdit prepares an edit of one item's status, cutter or sewer,
// addressed by the item's stable client-generated id. Setting the current
// value again is a recognized no-op: no snapshot, no write.
func BeginItemEdit(o model.Order, itemID, field, value string) (*ItemEdit, error) {
	switch field {
	case "status":
		if !enum.IsItemStatus(value) {
			return nil, ErrBadItemStatus
		}
	case "cutter", "sewer":
	default:
		return nil, ErrBadItemField
	}

	current, found := itemField(o, itemID, field)
	if !found {
		return nil, ErrItemNotFound
	}
	if current == value {
		return &ItemEdit{noop: true, state: editClean}, nil
	}

	applied := model.CloneOrder(o)
	setItemField(&applied, itemID, field, value)
	return &ItemEdit{
		state:    editPending,
		snapshot: model.CloneOrder(o),
		applied:  applied,
	}, nil
}

// NoOp reports whether the edit changes nothing and must not write.
func (e *ItemEdit) NoOp() bool { return e.noop }

// Optimistic returns the modified order for immediate display, before the
// store has confirmed anything.
func (e *ItemEdit) Optimistic() model.Order { return e.applied }

// Confirm marks the write as settled; the optimistic state already matches.
func (e *ItemEdit) Confirm() { e.state = editClean }

// Rollback returns the pre-change snapshot after a failed write. The
// snapshot is the exact order as it was, bit for bit.
func (e *ItemEdit) Rollback() model.Order {
	e.state = editRolledBack
	return e.snapshot
}

// ApplyItemEdit runs the full protocol for one inline edit: no-op guard,
// optimistic broadcast, then persistence of the whole people array (the
// store replaces top-level fields wholesale, there is no deeper merge). On
// failure subscribers get a correcting snapshot and the returned order is
// the pre-change state; the error carries the cause. Two sessions editing
// the same order concurrently can still clobber each other -- last writer
// wins, an accepted limitation of the single-operator usage pattern.
func (s *OrderService) ApplyItemEdit(ctx context.Context, businessID string, o model.Order, itemID, field, value string) (model.Order, error) {
	edit, err := BeginItemEdit(o, itemID, field, value)
	if err != nil {
		return o, err
	}
	if edit.NoOp() {
		return o, nil
	}

	optimistic := edit.Optimistic()
	if s.events != nil {
		s.events.OrderChanged(businessID, optimistic)
	}

	coll := docstore.Collection(businessID, docstore.CollOrders)
	if err := s.store.Update(ctx, coll, o.ID, map[string]any{"people": optimistic.People}); err != nil {
		restored := edit.Rollback()
		if s.events != nil {
			s.events.OrderChanged(businessID, restored)
		}
		return restored, fmt.Errorf("persist item edit: %w", err)
	}

	edit.Confirm()
	return optimistic, nil
}

// itemField reads one editable field off the item with the given id.
func itemField(o model.Order, itemID, field string) (string, bool) {
	for _, p := range o.People {
		for _, it := range p.Items {
			if it.ID != itemID {
				continue
			}
			switch field {
			case "status":
				return it.Status, true
			case "cutter":
				return it.Cutter, true
			case "sewer":
				return it.Sewer, true
			}
		}
	}
	return "", false
}

func setItemField(o *model.Order, itemID, field, value string) {
	for i := range o.People {
		for j := range o.People[i].Items {
			it := &o.People[i].Items[j]
			if it.ID != itemID {
				continue
			}
			switch field {
			case "status":
				it.Status = value
			case "cutter":
				it.Cutter = value
			case "sewer":
				it.Sewer = value
			}
			return
		}
	}
}
