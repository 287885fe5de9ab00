package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs the test suites and seed dry runs
// and doubles as the reference for Update/ApplyBatch semantics: the Postgres
// implementation must behave identically.
type Memory struct {
	mu    sync.RWMutex
	colls map[string]*memColl
	not   *notifier
}

type memColl struct {
	docs  map[string][]byte
	order []string // insertion order, the tie-break for equal sort keys
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{colls: make(map[string]*memColl)}
	m.not = newNotifier(m.List)
	return m
}

func (m *Memory) NewID() string {
	return uuid.NewString()
}

func (m *Memory) coll(name string) *memColl {
	c, ok := m.colls[name]
	if !ok {
		c = &memColl{docs: make(map[string][]byte)}
		m.colls[name] = c
	}
	return c
}

func (m *Memory) Create(ctx context.Context, collection string, doc any) (string, error) {
	id := m.NewID()
	if err := m.createWithID(collection, id, doc); err != nil {
		return "", err
	}
	m.not.publish(ctx, collection)
	return id, nil
}

func (m *Memory) createWithID(collection, id string, doc any) error {
	raw, err := marshalWithID(doc, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	c := m.coll(collection)
	cur, ok := c.docs[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	merged, err := mergeTopLevel(cur, fields)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	c.docs[id] = merged
	m.mu.Unlock()
	m.not.publish(ctx, collection)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	c := m.coll(collection)
	if _, ok := c.docs[id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	m.not.publish(ctx, collection)
	return nil
}

func (m *Memory) GetOnce(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	raw, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: append([]byte(nil), raw...)}, nil
}

func (m *Memory) List(_ context.Context, collection, orderBy string, desc bool) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return nil, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: append([]byte(nil), c.docs[id]...)})
	}
	if orderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := topLevelString(docs[i].Data, orderBy), topLevelString(docs[j].Data, orderBy)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return docs, nil
}

// ApplyBatch validates every operation before applying any, all under one
// lock, so a failing op leaves the store untouched.
func (m *Memory) ApplyBatch(ctx context.Context, ops []BatchOp) error {
	m.mu.Lock()

	staged := make([]func(), 0, len(ops))
	touched := make(map[string]struct{})
	for i, op := range ops {
		op := op
		switch op.Kind {
		case OpCreate:
			raw, err := marshalWithID(op.Doc, op.ID)
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			staged = append(staged, func() {
				c := m.coll(op.Collection)
				if _, exists := c.docs[op.ID]; !exists {
					c.order = append(c.order, op.ID)
				}
				c.docs[op.ID] = raw
			})
		case OpUpdate:
			cur, ok := m.coll(op.Collection).docs[op.ID]
			if !ok {
				m.mu.Unlock()
				return fmt.Errorf("batch op %d: %w", i, ErrNotFound)
			}
			merged, err := mergeTopLevel(cur, op.Fields)
			if err != nil {
				m.mu.Unlock()
				return fmt.Errorf("batch op %d: %w", i, err)
			}
			staged = append(staged, func() {
				m.coll(op.Collection).docs[op.ID] = merged
			})
		case OpDelete:
			if _, ok := m.coll(op.Collection).docs[op.ID]; !ok {
				m.mu.Unlock()
				return fmt.Errorf("batch op %d: %w", i, ErrNotFound)
			}
			staged = append(staged, func() {
				c := m.coll(op.Collection)
				delete(c.docs, op.ID)
				for j, oid := range c.order {
					if oid == op.ID {
						c.order = append(c.order[:j], c.order[j+1:]...)
						break
					}
				}
			})
		default:
			m.mu.Unlock()
			return fmt.Errorf("batch op %d: unknown kind %q", i, op.Kind)
		}
		touched[op.Collection] = struct{}{}
	}

	for _, apply := range staged {
		apply()
	}
	m.mu.Unlock()

	for collection := range touched {
		m.not.publish(ctx, collection)
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, collection, orderBy string, desc bool) (*Subscription, error) {
	sub := m.not.subscribe(collection, orderBy, desc)
	docs, err := m.List(ctx, collection, orderBy, desc)
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.push(docs)
	return sub, nil
}

// --- JSON helpers shared with the Postgres implementation ---

// marshalWithID marshals a document and forces its top-level "id" field to
// the assigned id, so the stored body always carries its own identity.
func marshalWithID(doc any, id string) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	idRaw, _ := json.Marshal(id)
	m["id"] = idRaw
	return json.Marshal(m)
}

// mergeTopLevel replaces named top-level fields. Nested values are replaced
// wholesale, matching the store contract (and Postgres jsonb concatenation).
func mergeTopLevel(doc []byte, fields map[string]any) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		m = make(map[string]json.RawMessage)
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

// topLevelString extracts a top-level field as its comparable string form.
// Missing or malformed fields sort as empty.
func topLevelString(doc []byte, field string) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		return ""
	}
	raw, ok := m[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
