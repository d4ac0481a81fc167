package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestHandler(t *testing.T, key string) http.Handler {
	t.Helper()
	auth, err := NewAPIKeyAuth(key, nil)
	require.NoError(t, err)
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	handler := authTestHandler(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/sites/available", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Authentication required", body["error"])
	assert.Equal(t, "Missing X-API-Key header", body["message"])
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	handler := authTestHandler(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/sites/available", nil)
	req.Header.Set(APIKeyHeader, "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Authentication failed", body["error"])
	assert.Equal(t, "Invalid API key", body["message"])
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	handler := authTestHandler(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/sites/available", nil)
	req.Header.Set(APIKeyHeader, "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_ExemptPaths(t *testing.T) {
	handler := authTestHandler(t, "secret")

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should be exempt", path)
	}
}

func TestNewAPIKeyAuth_GeneratesKey(t *testing.T) {
	auth, err := NewAPIKeyAuth("", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Key())
	assert.True(t, auth.Validate(auth.Key()))
	assert.False(t, auth.Validate("something-else"))
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	a, err := GenerateAPIKey()
	require.NoError(t, err)
	b, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43) // 32 bytes base64url without padding
}
