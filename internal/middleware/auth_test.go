package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
)

func TestAuthMiddlewareAllowsValidAccessToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	userID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(userID, jwt.RoleUser)
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	var gotID uuid.UUID
	var gotRole string
	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != userID || gotRole != jwt.RoleUser {
		t.Fatalf("unexpected identity %s/%s", gotID, gotRole)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	otherSvc := jwt.NewService("other-secret", time.Minute)
	foreign, _ := otherSvc.GenerateAccessToken(uuid.New(), jwt.RoleUser)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"foreign token":  "Bearer " + foreign,
		"garbage":        "Bearer not-a-jwt",
	}

	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireLibrarian()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for role, want := range map[string]int{
		jwt.RoleLibrarian: http.StatusOK,
		jwt.RoleAdmin:     http.StatusOK,
		jwt.RoleUser:      http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), uuid.New(), role))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("role %s: expected %d, got %d", role, want, w.Code)
		}
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "req-123" || w.Header().Get("X-Request-ID") != "req-123" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, w.Header().Get("X-Request-ID"))
	}
}

func TestRateLimiterWithoutRedisAllows(t *testing.T) {
	limiter := NewRateLimiter(nil, true)
	handler := limiter.Limit("booking_create", 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := callerKey(req); got != "ip:10.0.0.7" {
		t.Fatalf("unexpected anonymous key %q", got)
	}

	id := uuid.New()
	req = req.WithContext(WithIdentity(req.Context(), id, jwt.RoleUser))
	if got := callerKey(req); got != "user:"+id.String() {
		t.Fatalf("unexpected user key %q", got)
	}
}
