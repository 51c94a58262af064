package library

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatbook/seatbook-api/internal/middleware"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestTimeSlotEndpoints(t *testing.T) {
	repo := newMemoryRepo()
	owner := uuid.New()
	lib := repo.addLibrary(owner)

	jwtSvc := jwt.NewService("slots-secret", time.Hour)
	ownerToken, err := jwtSvc.GenerateAccessToken(owner, jwt.RoleLibrarian)
	require.NoError(t, err)
	userToken, err := jwtSvc.GenerateAccessToken(uuid.New(), jwt.RoleUser)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/api/v1/time-slots", NewHandler(NewService(repo)).Routes(middleware.Auth(jwtSvc)))

	do := func(method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var resp apiResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return w, resp
	}

	create := map[string]any{
		"library_id":   lib.ID,
		"slot_name":    "Morning",
		"start_time":   "09:00",
		"end_time":     "12:00",
		"price":        200,
		"max_capacity": 20,
	}

	w, _ := do(http.MethodPost, "/api/v1/time-slots", userToken, create)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := do(http.MethodPost, "/api/v1/time-slots", ownerToken, create)
	require.Equal(t, http.StatusCreated, w.Code)
	var created TimeSlotResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, 3.0, created.DurationHours)

	w, resp = do(http.MethodPost, "/api/v1/time-slots", ownerToken, create)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_OVERLAP", resp.Error.Code)

	create["start_time"] = "9am"
	w, resp = do(http.MethodPost, "/api/v1/time-slots", ownerToken, create)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	w, resp = do(http.MethodGet, "/api/v1/time-slots/library/"+lib.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []TimeSlotResponse
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	assert.Len(t, listed, 1)

	w, _ = do(http.MethodDelete, "/api/v1/time-slots/"+created.ID.String(), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLibraryModerationEndpoints(t *testing.T) {
	repo := newMemoryRepo()
	lib := repo.addPendingLibrary(uuid.New())

	jwtSvc := jwt.NewService("slots-secret", time.Hour)
	adminToken, err := jwtSvc.GenerateAccessToken(uuid.New(), jwt.RoleAdmin)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSvc))
		r.Use(middleware.RequireAdmin())
		NewHandler(NewService(repo)).RegisterAdminRoutes(r)
	})

	do := func(method, path string, body []byte) (*httptest.ResponseRecorder, apiResponse) {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var resp apiResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return w, resp
	}

	w, resp := do(http.MethodGet, "/api/v1/admin/libraries/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []LibraryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, lib.ID, pending[0].ID)

	w, resp = do(http.MethodPut, "/api/v1/admin/libraries/"+lib.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var approved LibraryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &approved))
	assert.True(t, approved.IsApproved)
	assert.True(t, approved.IsActive)
	assert.NotNil(t, approved.ApprovedAt)

	w, resp = do(http.MethodPut, "/api/v1/admin/libraries/"+lib.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_APPROVED", resp.Error.Code)

	w, resp = do(http.MethodPut, "/api/v1/admin/libraries/"+lib.ID.String()+"/reject", []byte(`{"rejection_reason":"No fire exit"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var rejected LibraryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &rejected))
	assert.False(t, rejected.IsApproved)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "No fire exit", *rejected.RejectionReason)

	w, resp = do(http.MethodPut, "/api/v1/admin/libraries/"+uuid.NewString()+"/reject", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}
