package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/handler"
)

func setupMasterItemRouter(store *docstore.Memory) *chi.Mux {
	h := handler.NewMasterItemHandler(store)
	r := chi.NewRouter()
	r.Route("/businesses/{bid}/master-items", h.RegisterRoutes)
	return r
}

func TestMasterItemCreate(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	rr := doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
		"name":          "Shirt",
		"customerPrice": "500",
		"sewingRate":    "150",
		"cuttingRate":   "50",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeMapResponse(t, rr)
	if resp["name"] != "Shirt" {
		t.Errorf("name: got %v", resp["name"])
	}
	if resp["customerPrice"] != "500" {
		t.Errorf("customerPrice: got %v", resp["customerPrice"])
	}
}

func TestMasterItemCreate_Invalid(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	rr := doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
		"name": "   ",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank name: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
		"name":        "Shirt",
		"cuttingRate": "-10",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative rate: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMasterItemList_SortedByName(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	for _, name := range []string{"Pant", "Blouse", "Shirt"} {
		rr := doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
			"name": name, "customerPrice": "500",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create %s: got %d", name, rr.Code)
		}
	}

	rr := doRequest(t, router, "GET", "/businesses/biz-1/master-items", nil)
	resp := decodeMapResponse(t, rr)
	items, ok := resp["masterItems"].([]interface{})
	if !ok {
		t.Fatalf("missing masterItems array: %v", resp)
	}
	if len(items) != 3 {
		t.Fatalf("items: got %d, want 3", len(items))
	}
	if items[0].(map[string]interface{})["name"] != "Blouse" {
		t.Errorf("first item: got %v, want Blouse", items[0].(map[string]interface{})["name"])
	}
}

func TestMasterItemUpdate(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	created := decodeMapResponse(t, doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
		"name": "Shirt", "customerPrice": "500", "sewingRate": "150", "cuttingRate": "50",
	}))
	id := created["id"].(string)

	rr := doRequest(t, router, "PUT", "/businesses/biz-1/master-items/"+id, map[string]interface{}{
		"name": "Shirt", "customerPrice": "550", "sewingRate": "160", "cuttingRate": "55",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if decodeMapResponse(t, rr)["customerPrice"] != "550" {
		t.Error("price not updated")
	}
}

func TestMasterItemUpdate_NotFound(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	rr := doRequest(t, router, "PUT", "/businesses/biz-1/master-items/missing", map[string]interface{}{
		"name": "Shirt",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMasterItemDelete(t *testing.T) {
	store := docstore.NewMemory()
	router := setupMasterItemRouter(store)

	created := decodeMapResponse(t, doRequest(t, router, "POST", "/businesses/biz-1/master-items", map[string]interface{}{
		"name": "Shirt",
	}))
	id := created["id"].(string)

	rr := doRequest(t, router, "DELETE", "/businesses/biz-1/master-items/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}
