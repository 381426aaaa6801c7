package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authorizer decides whether a request may reach the reporting endpoints.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// StaticKeyAuthorizer accepts a fixed set of API keys from X-API-Key or a
// Bearer token. An empty key set admits everyone.
type StaticKeyAuthorizer struct {
	keys []string
}

// NewStaticKeyAuthorizer creates an authorizer over keys.
func NewStaticKeyAuthorizer(keys []string) *StaticKeyAuthorizer {
	return &StaticKeyAuthorizer{keys: keys}
}

func (a *StaticKeyAuthorizer) Authorize(r *http.Request) bool {
	if len(a.keys) == 0 {
		return true
	}

	presented := r.Header.Get("X-API-Key")
	if presented == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			presented = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if presented == "" {
		return false
	}

	for _, k := range a.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(k)) == 1 {
			return true
		}
	}
	return false
}

// AuthMiddleware rejects requests the authorizer does not admit.
func AuthMiddleware(authz Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authz.Authorize(r) {
				sendError(w, http.StatusUnauthorized, "unauthorized", "a valid API key is required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
