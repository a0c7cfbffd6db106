package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vietvoyage/trip-agent/internal/handler"
	"github.com/vietvoyage/trip-agent/internal/middleware"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/service"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newThreadRouter(t *testing.T) (chi.Router, *service.ThreadService) {
	t.Helper()

	svc := service.NewThreadService(store.NewMemoryThreadStore(), logger.NewNop())
	h := handler.NewThreadHandler(svc, logger.NewNop())

	r := chi.NewRouter()
	r.Route("/api/v1/threads", func(r chi.Router) {
		r.Use(middleware.Auth(testSecret))
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
	return r, svc
}

func doRequest(r http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestThreadsRequireAuth(t *testing.T) {
	r, _ := newThreadRouter(t)

	if rec := doRequest(r, http.MethodGet, "/api/v1/threads", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}
	if rec := doRequest(r, http.MethodGet, "/api/v1/threads", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", rec.Code)
	}

	// Valid signature but no subject is still rejected.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if rec := doRequest(r, http.MethodGet, "/api/v1/threads", signed, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("subjectless token: status %d, want 401", rec.Code)
	}
}

func TestCreateAndGetThread(t *testing.T) {
	r, _ := newThreadRouter(t)
	token := signToken(t, "u1")

	body, _ := json.Marshal(model.CreateThreadRequest{Title: "chuyến đi Huế"})
	rec := doRequest(r, http.MethodPost, "/api/v1/threads", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}

	var created model.Thread
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode thread: %v", err)
	}
	if created.ID == "" || created.UserID != "u1" || created.Title != "chuyến đi Huế" {
		t.Fatalf("unexpected thread: %+v", created)
	}

	get := doRequest(r, http.MethodGet, "/api/v1/threads/"+created.ID, token, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get: status %d", get.Code)
	}

	// Another user's token cannot see it.
	other := doRequest(r, http.MethodGet, "/api/v1/threads/"+created.ID, signToken(t, "u2"), nil)
	if other.Code != http.StatusNotFound {
		t.Fatalf("foreign get: status %d, want 404", other.Code)
	}
}

func TestDeleteThread(t *testing.T) {
	r, _ := newThreadRouter(t)
	token := signToken(t, "u1")

	body, _ := json.Marshal(model.CreateThreadRequest{Title: "xoá tôi"})
	rec := doRequest(r, http.MethodPost, "/api/v1/threads", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	var created model.Thread
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode thread: %v", err)
	}

	del := doRequest(r, http.MethodDelete, "/api/v1/threads/"+created.ID, token, nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", del.Code)
	}
	if again := doRequest(r, http.MethodDelete, "/api/v1/threads/"+created.ID, token, nil); again.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", again.Code)
	}
	if get := doRequest(r, http.MethodGet, "/api/v1/threads/"+created.ID, token, nil); get.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", get.Code)
	}
}

func TestGetThreadRejectsBadID(t *testing.T) {
	r, _ := newThreadRouter(t)
	token := signToken(t, "u1")

	rec := doRequest(r, http.MethodGet, "/api/v1/threads/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d, want 400", rec.Code)
	}
}
