package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type testDoc struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Tags  struct {
		A string `json:"a,omitempty"`
		B string `json:"b,omitempty"`
	} `json:"tags"`
}

func TestMemoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Create(ctx, "things", testDoc{Name: "first"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	doc, err := m.GetOnce(ctx, "things", id)
	if err != nil {
		t.Fatalf("GetOnce: %v", err)
	}

	var got testDoc
	if err := json.Unmarshal(doc.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != id {
		t.Errorf("stored body id: got %q, want %q (body carries its identity)", got.ID, id)
	}
	if got.Name != "first" {
		t.Errorf("name: got %q", got.Name)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.GetOnce(context.Background(), "things", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateShallowMerge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var d testDoc
	d.Name = "before"
	d.Count = 3
	d.Tags.A = "keep-a"
	d.Tags.B = "keep-b"
	id, _ := m.Create(ctx, "things", d)

	// Replacing "tags" replaces the whole nested object, not a deep merge.
	err := m.Update(ctx, "things", id, map[string]any{
		"name": "after",
		"tags": map[string]string{"a": "new-a"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc, _ := m.GetOnce(ctx, "things", id)
	var got testDoc
	if err := json.Unmarshal(doc.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "after" {
		t.Errorf("name: got %q, want after", got.Name)
	}
	if got.Count != 3 {
		t.Errorf("count: got %d, want untouched 3", got.Count)
	}
	if got.Tags.A != "new-a" || got.Tags.B != "" {
		t.Errorf("tags: got %+v, want whole-object replacement", got.Tags)
	}
}

func TestMemoryUpdateMissing(t *testing.T) {
	m := NewMemory()
	err := m.Update(context.Background(), "things", "nope", map[string]any{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, _ := m.Create(ctx, "things", testDoc{Name: "x"})

	if err := m.Delete(ctx, "things", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.GetOnce(ctx, "things", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
	if err := m.Delete(ctx, "things", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryListOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, name := range []string{"banana", "apple", "cherry"} {
		if _, err := m.Create(ctx, "things", testDoc{Name: name}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	docs, err := m.List(ctx, "things", "name", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := listNames(t, docs); got[0] != "apple" || got[1] != "banana" || got[2] != "cherry" {
		t.Errorf("asc order: got %v", got)
	}

	docs, _ = m.List(ctx, "things", "name", true)
	if got := listNames(t, docs); got[0] != "cherry" || got[2] != "apple" {
		t.Errorf("desc order: got %v", got)
	}
}

func TestMemoryListEqualKeysKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id1, _ := m.Create(ctx, "things", testDoc{Name: "same"})
	id2, _ := m.Create(ctx, "things", testDoc{Name: "same"})

	docs, _ := m.List(ctx, "things", "name", false)
	if len(docs) != 2 || docs[0].ID != id1 || docs[1].ID != id2 {
		t.Errorf("tie-break should keep insertion order, got %v then %v", docs[0].ID, docs[1].ID)
	}
}

func TestMemoryApplyBatchAtomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Second op updates a missing document: the whole batch must not apply.
	err := m.ApplyBatch(ctx, []BatchOp{
		{Kind: OpCreate, Collection: "things", ID: m.NewID(), Doc: testDoc{Name: "new"}},
		{Kind: OpUpdate, Collection: "things", ID: "missing", Fields: map[string]any{"name": "x"}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	docs, _ := m.List(ctx, "things", "", false)
	if len(docs) != 0 {
		t.Fatalf("failed batch leaked %d documents into the store", len(docs))
	}
}

func TestMemoryApplyBatchCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	orderID := m.NewID()
	txID := m.NewID()
	err := m.ApplyBatch(ctx, []BatchOp{
		{Kind: OpCreate, Collection: "orders", ID: orderID, Doc: testDoc{Name: "order"}},
		{Kind: OpCreate, Collection: "ledger", ID: txID, Doc: testDoc{Name: "advance"}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if _, err := m.GetOnce(ctx, "orders", orderID); err != nil {
		t.Errorf("order missing after batch: %v", err)
	}
	if _, err := m.GetOnce(ctx, "ledger", txID); err != nil {
		t.Errorf("ledger entry missing after batch: %v", err)
	}
}

func TestMemorySubscribeDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Create(ctx, "things", testDoc{Name: "first"})

	sub, err := m.Subscribe(ctx, "things", "name", false)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// Initial snapshot arrives without any write.
	select {
	case docs := <-sub.Snapshots():
		if len(docs) != 1 {
			t.Fatalf("initial snapshot: got %d docs, want 1", len(docs))
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	m.Create(ctx, "things", testDoc{Name: "second"})

	select {
	case docs := <-sub.Snapshots():
		if len(docs) != 2 {
			t.Fatalf("snapshot after write: got %d docs, want 2", len(docs))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after write")
	}
}

func TestMemorySubscribeLatestWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sub, err := m.Subscribe(ctx, "things", "name", false)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// Nobody reads while several writes land; the undelivered snapshot is
	// replaced each time.
	for i := 0; i < 5; i++ {
		if _, err := m.Create(ctx, "things", testDoc{Name: "doc"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	var last []Document
	deadline := time.After(time.Second)
	for {
		select {
		case docs := <-sub.Snapshots():
			last = docs
			if len(last) == 5 {
				return
			}
		case <-deadline:
			t.Fatalf("never saw the final state; last snapshot had %d docs", len(last))
		}
	}
}

func TestMemorySubscribeCloseStopsDelivery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sub, _ := m.Subscribe(ctx, "things", "", false)
	sub.Close()
	sub.Close() // safe to call twice

	// Writes after close must not panic.
	if _, err := m.Create(ctx, "things", testDoc{Name: "x"}); err != nil {
		t.Fatalf("Create after close: %v", err)
	}

	if _, ok := <-sub.Snapshots(); ok {
		// Draining a possible buffered pre-close snapshot is fine; the
		// channel must be closed after it.
		if _, ok := <-sub.Snapshots(); ok {
			t.Fatal("snapshot channel still open after Close")
		}
	}
}

func TestCollectionPath(t *testing.T) {
	if got := Collection("biz-1", CollOrders); got != "businesses/biz-1/orders" {
		t.Errorf("Collection = %q", got)
	}
}

func listNames(t *testing.T, docs []Document) []string {
	t.Helper()
	names := make([]string, len(docs))
	for i, d := range docs {
		var v testDoc
		if err := json.Unmarshal(d.Data, &v); err != nil {
			t.Fatalf("unmarshal doc %d: %v", i, err)
		}
		names[i] = v.Name
	}
	return names
}
