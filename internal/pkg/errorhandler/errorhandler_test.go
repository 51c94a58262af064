package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatbook/seatbook-api/internal/pkg/response"
)

var errSeatTaken = errors.New("seat already booked")

func TestHandleDomainErrorMatchesWrapped(t *testing.T) {
	w := httptest.NewRecorder()
	HandleDomainError(context.Background(), w, fmt.Errorf("create: %w", errSeatTaken),
		Rule{Err: errSeatTaken, Status: http.StatusConflict, Code: "SEAT_CONFLICT"},
	)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "SEAT_CONFLICT", resp.Error.Code)
	assert.Equal(t, "seat already booked", resp.Error.Message)
}

func TestHandleDomainErrorFallsBackToInternal(t *testing.T) {
	w := httptest.NewRecorder()
	HandleDomainError(context.Background(), w, errors.New("connection reset"),
		Rule{Err: errSeatTaken, Status: http.StatusConflict, Code: "SEAT_CONFLICT"},
	)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
