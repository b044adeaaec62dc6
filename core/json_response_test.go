package core_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/core"
)

func TestJSON(t *testing.T) {
	t.Run("renders payload with 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		resp := core.JSON("ok", map[string]string{"token": "abc"})
		require.NoError(t, resp.Render(w, r))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var body core.JSONResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Code)
		assert.Nil(t, body.Error)
	})

	t.Run("explicit status", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)

		resp := core.JSONStatus(http.StatusCreated, "created", nil)
		require.NoError(t, resp.Render(w, r))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestJSONError(t *testing.T) {
	t.Run("http error keeps code and key", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		resp := core.JSONError(core.ErrConflict)
		require.NoError(t, resp.Render(w, r))

		assert.Equal(t, http.StatusConflict, w.Code)

		var body core.JSONResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, "conflict", body.Error.Code)
	})

	t.Run("wrapped http error unwraps", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		wrapped := fmt.Errorf("publish: %w", core.ErrForbidden)
		resp := core.JSONError(wrapped)
		require.NoError(t, resp.Render(w, r))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown error hides message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		resp := core.JSONError(errors.New("database exploded"))
		require.NoError(t, resp.Render(w, r))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "database exploded")
	})
}
