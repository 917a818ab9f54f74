package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResponseLogger(t *testing.T) {
	t.Run("log response status and size", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		request := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
		response := httptest.NewRecorder()
		sut := ResponseLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("abc"))
		}))

		sut.ServeHTTP(response, request)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, http.MethodPost, fields["method"])
		assert.Equal(t, "/api/shorten", fields["uri"])
		assert.Equal(t, int64(http.StatusCreated), fields["status"])
		assert.Equal(t, int64(3), fields["size"])
	})

	t.Run("implicit status", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		request := httptest.NewRequest(http.MethodGet, "/ping", nil)
		response := httptest.NewRecorder()
		sut := ResponseLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		sut.ServeHTTP(response, request)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
	})
}
