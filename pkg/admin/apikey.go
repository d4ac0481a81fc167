// API key authentication for the HTTP surface.

package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/apachemgr/apachemgr/pkg/httputil"
	"github.com/apachemgr/apachemgr/pkg/logging"
)

const (
	// APIKeyHeader is the HTTP header carrying the shared secret.
	APIKeyHeader = "X-API-Key"

	// apiKeyLength is the length of generated API keys in bytes.
	apiKeyLength = 32
)

// APIKeyAuth enforces shared-secret authentication on every request except
// the exempt info and health endpoints.
type APIKeyAuth struct {
	key     string
	keyHash []byte
	log     *slog.Logger
}

// NewAPIKeyAuth creates an authenticator for the given key. When the key is
// empty a random one is generated and logged so operators can discover it.
func NewAPIKeyAuth(key string, log *slog.Logger) (*APIKeyAuth, error) {
	if log == nil {
		log = logging.Nop()
	}

	if key == "" {
		generated, err := GenerateAPIKey()
		if err != nil {
			return nil, fmt.Errorf("generate API key: %w", err)
		}
		key = generated
		log.Warn("no MCP_API_KEY set, generated a key for this run", "key", key)
	}

	return &APIKeyAuth{
		key:     key,
		keyHash: []byte(key),
		log:     log,
	}, nil
}

// Key returns the active API key.
func (a *APIKeyAuth) Key() string {
	return a.key
}

// Validate checks the provided key in constant time.
func (a *APIKeyAuth) Validate(provided string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), a.keyHash) == 1
}

// isExempt reports whether a path skips authentication.
func isExempt(path string) bool {
	return path == "/" || path == "/health"
}

// Middleware returns an HTTP middleware that enforces API key authentication.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get(APIKeyHeader)
		if provided == "" {
			httputil.WriteError(w, http.StatusUnauthorized,
				"Authentication required", "Missing "+APIKeyHeader+" header")
			return
		}

		if !a.Validate(provided) {
			a.log.Warn("rejected request with invalid API key", "path", r.URL.Path, "remote", r.RemoteAddr)
			httputil.WriteError(w, http.StatusForbidden,
				"Authentication failed", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateAPIKey generates a new random URL-safe API key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
