package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
)

func authedHandler(t *testing.T, auth service.AuthIface, called *bool) http.Handler {
	t.Helper()
	return WithAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestWithAuth_APIKey(t *testing.T) {
	auth := service.NewAuth("super-secret")

	t.Run("valid key", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		req.Header.Set("X-API-Key", "super-secret")
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("wrong key", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		req.Header.Set("X-API-Key", "nope")
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("no credentials", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}

func TestWithAuth_BearerToken(t *testing.T) {
	auth := service.NewAuth("super-secret")

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.BuildJWTString()
		require.NoError(t, err)

		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		token, err := service.NewAuth("other-secret").BuildJWTString()
		require.NoError(t, err)

		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("garbage token", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}

func TestWithAuth_EmptySecret(t *testing.T) {
	// with no secret configured nothing may pass
	auth := service.NewAuth("")

	for _, key := range []string{"", "anything"} {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/qr", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		w := httptest.NewRecorder()

		authedHandler(t, auth, &called).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	}
}
