// Package docstore is the application's contract with the real-time document
// store. Documents are opaque JSON blobs addressed by collection path and id;
// updates replace named top-level fields only (no deep merge below one
// level), batches are all-or-nothing, and subscriptions deliver full ordered
// snapshots with last-snapshot-wins semantics.
package docstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by GetOnce, Update and Delete when the addressed
// document does not exist.
var ErrNotFound = errors.New("document not found")

// Collection names within a business namespace.
const (
	CollOrders       = "orders"
	CollMasterItems  = "masterItems"
	CollWorkers      = "workers"
	CollTransactions = "transactions"
	CollFees         = "fees"
	CollUsers        = "users"
)

// Collection builds the namespaced collection path for one business.
// Isolation between businesses is enforced by construction of the path, not
// by the store.
func Collection(businessID, name string) string {
	return "businesses/" + businessID + "/" + name
}

// Document is one stored document: its id and the raw JSON body.
type Document struct {
	ID   string
	Data []byte
}

// Batch operation kinds.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// BatchOp is one operation inside an atomic batch. Create ops carry a
// pre-assigned ID (from NewID) so documents written in the same batch can
// reference each other.
type BatchOp struct {
	Kind       string
	Collection string
	ID         string
	Doc        any            // create
	Fields     map[string]any // update
}

// Store is the persistence contract the rest of the application depends on.
// Implementations: Postgres (production) and Memory (tests, dry runs).
type Store interface {
	// NewID returns a fresh document id, assignable before any write.
	NewID() string

	// Create writes a new document and returns its id.
	Create(ctx context.Context, collection string, doc any) (string, error)

	// Update replaces the named top-level fields of an existing document.
	// Values below the first level are replaced wholesale, never merged.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deletion is immediate and irreversible.
	Delete(ctx context.Context, collection, id string) error

	// GetOnce fetches a single document, or ErrNotFound.
	GetOnce(ctx context.Context, collection, id string) (Document, error)

	// List returns all documents of a collection ordered by a top-level
	// field's JSON string value.
	List(ctx context.Context, collection, orderBy string, desc bool) ([]Document, error)

	// ApplyBatch applies every operation or none of them.
	ApplyBatch(ctx context.Context, ops []BatchOp) error

	// Subscribe delivers an initial snapshot then a fresh snapshot after
	// every write to the collection, until Close is called. A slow consumer
	// only ever observes the latest snapshot.
	Subscribe(ctx context.Context, collection, orderBy string, desc bool) (*Subscription, error)
}

// Subscription is a live feed of collection snapshots.
type Subscription struct {
	collection string
	orderBy    string
	desc       bool

	mu        sync.Mutex
	closed    bool
	snapshots chan []Document
	notifier  *notifier
}

// Snapshots returns the snapshot channel. The channel is closed when the
// subscription is closed.
func (s *Subscription) Snapshots() <-chan []Document {
	return s.snapshots
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.notifier.remove(s)
	close(s.snapshots)
}

// push replaces any undelivered snapshot with the newer one, so consumers
// that fall behind skip straight to the latest state.
func (s *Subscription) push(docs []Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.snapshots <- docs:
			return
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}

// lister re-reads a collection for snapshot delivery.
type lister func(ctx context.Context, collection, orderBy string, desc bool) ([]Document, error)

// notifier fans writes out to the subscriptions of the touched collections.
type notifier struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	list lister
}

func newNotifier(list lister) *notifier {
	return &notifier{
		subs: make(map[string]map[*Subscription]struct{}),
		list: list,
	}
}

func (n *notifier) subscribe(collection, orderBy string, desc bool) *Subscription {
	sub := &Subscription{
		collection: collection,
		orderBy:    orderBy,
		desc:       desc,
		snapshots:  make(chan []Document, 1),
		notifier:   n,
	}
	n.mu.Lock()
	if n.subs[collection] == nil {
		n.subs[collection] = make(map[*Subscription]struct{})
	}
	n.subs[collection][sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

func (n *notifier) remove(sub *Subscription) {
	n.mu.Lock()
	if subs, ok := n.subs[sub.collection]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(n.subs, sub.collection)
		}
	}
	n.mu.Unlock()
}

// publish re-lists the collection once per subscription ordering and pushes
// the snapshot. Read failures are skipped; subscribers keep their last
// successfully delivered snapshot.
func (n *notifier) publish(ctx context.Context, collection string) {
	n.mu.Lock()
	targets := make([]*Subscription, 0, len(n.subs[collection]))
	for sub := range n.subs[collection] {
		targets = append(targets, sub)
	}
	n.mu.Unlock()

	for _, sub := range targets {
		docs, err := n.list(ctx, collection, sub.orderBy, sub.desc)
		if err != nil {
			continue
		}
		sub.push(docs)
	}
}
