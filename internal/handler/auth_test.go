package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/darzibook/api/internal/docstore"
	"github.com/darzibook/api/internal/handler"
	"github.com/darzibook/api/internal/model"
)

const testSecret = "test-secret"

// --- Helpers shared across handler tests ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMapResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func seedUser(t *testing.T, store *docstore.Memory, email, password, role string) model.User {
	t.Helper()
	u := model.User{
		BusinessID:     "biz-1",
		FullName:       "Test Owner",
		Email:          email,
		HashedPassword: hashPassword(t, password),
		Role:           role,
	}
	id, err := store.Create(context.Background(), docstore.CollUsers, u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u.ID = id
	return u
}

func setupAuthRouter(store *docstore.Memory) *chi.Mux {
	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	store := docstore.NewMemory()
	u := seedUser(t, store, "owner@darzibook.in", "secret123", "OWNER")
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "owner@darzibook.in",
		"password": "secret123",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeMapResponse(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("missing access_token")
	}
	if resp["refresh_token"] == "" || resp["refresh_token"] == nil {
		t.Error("missing refresh_token")
	}
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing user object in response: %v", resp)
	}
	if user["id"] != u.ID {
		t.Errorf("user id: got %v, want %s", user["id"], u.ID)
	}
	if user["businessId"] != "biz-1" {
		t.Errorf("businessId: got %v", user["businessId"])
	}
	if _, hasHash := user["hashedPassword"]; hasHash {
		t.Error("response leaks the password hash")
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	store := docstore.NewMemory()
	seedUser(t, store, "owner@darzibook.in", "secret123", "OWNER")
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "Owner@Darzibook.IN",
		"password": "secret123",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := docstore.NewMemory()
	seedUser(t, store, "owner@darzibook.in", "secret123", "OWNER")
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "owner@darzibook.in",
		"password": "wrong",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	store := docstore.NewMemory()
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "nobody@darzibook.in",
		"password": "secret123",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	store := docstore.NewMemory()
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{"email": "owner@darzibook.in"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Refresh tests ---

func TestRefresh_Success(t *testing.T) {
	store := docstore.NewMemory()
	seedUser(t, store, "owner@darzibook.in", "secret123", "OWNER")
	router := setupAuthRouter(store)

	login := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "owner@darzibook.in",
		"password": "secret123",
	})
	if login.Code != http.StatusOK {
		t.Fatalf("login status: got %d", login.Code)
	}
	refreshToken := decodeMapResponse(t, login)["refresh_token"].(string)

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeMapResponse(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("missing access_token after refresh")
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	store := docstore.NewMemory()
	router := setupAuthRouter(store)

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": "not-a-token",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	store := docstore.NewMemory()
	u := seedUser(t, store, "owner@darzibook.in", "secret123", "OWNER")
	router := setupAuthRouter(store)

	login := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "owner@darzibook.in",
		"password": "secret123",
	})
	refreshToken := decodeMapResponse(t, login)["refresh_token"].(string)

	if err := store.Delete(context.Background(), docstore.CollUsers, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
