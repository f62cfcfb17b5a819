package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Request-ID", "rid-1")

	WriteError(w, ErrUnauthorized.WithDetail("no session"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
	assert.Equal(t, "no session", body["detail"])
	assert.Equal(t, "rid-1", body["request_id"])
}

func TestWriteError_GenericHidesCause(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestWithCause_DoesNotMutateBase(t *testing.T) {
	cause := errors.New("boom")
	e := ErrBadGateway.WithCause(cause)

	assert.ErrorIs(t, e, cause)
	assert.Nil(t, ErrBadGateway.Err)
}
