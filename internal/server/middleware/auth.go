// Package middleware carries the HTTP cross-cutting layers: operator-key
// auth for the admin surface, CORS for browser clients, request logging,
// and the redis-backed rate limit.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth guards the admin endpoints (market pause, audit log) with the
// operator key. The key is accepted as "Authorization: Bearer <key>" or in
// the X-API-Key header. With an empty key the guard is disabled and
// requests pass through; trading and governance endpoints never go through
// this middleware — they authenticate by account address and committee
// signature respectively.
func Auth(operatorKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if operatorKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			presented := presentedKey(r)
			if presented == "" {
				deny(w, "missing operator key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(operatorKey)) != 1 {
				deny(w, "invalid operator key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey pulls the credential off the request, preferring the
// Authorization header over X-API-Key.
func presentedKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if scheme, key, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(key)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func deny(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
