package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsResponse struct {
	Success bool     `json:"success"`
	Data    Snapshot `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestSettingsEndpoints(t *testing.T) {
	h := NewHandler(NewService(&memoryRepo{}, &memoryCache{}))
	router := h.Routes()

	t.Run("GET returns defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body settingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 18.0, body.Data.TaxPercent)
	})

	t.Run("PUT updates fee", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"platform_fee": 10}`))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body settingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "10.00", body.Data.PlatformFee.String())
	})

	t.Run("PUT rejects invalid percentage", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"tax_percentage": -1}`))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body settingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Details, "tax_percentage")
	})
}
