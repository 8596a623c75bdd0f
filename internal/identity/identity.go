// Package identity resolves an opaque caller credential to a stable user ID.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"regexp"
	"strings"

	"github.com/arjunvk/mentorloop/pkg/utils"
)

const (
	// TokenCookieName carries the credential when no Authorization header is set.
	TokenCookieName = "mentorloop_token"
)

// tokenPattern bounds what we accept as a credential before hashing it.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._~+/=-]{16,256}$`)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the resolved user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns a context carrying the user ID. Exported for tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// ResolveUserID maps a raw credential to a stable user identifier. The
// credential itself is opaque to this core; the same token always yields the
// same ID and the token never reaches logs or storage.
func ResolveUserID(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if !tokenPattern.MatchString(token) {
		return "", false
	}
	sum := sha256.Sum256([]byte(token))
	return "stu_" + hex.EncodeToString(sum[:8]), true
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware authenticates every request and injects the user ID into the
// context. Requests without a valid credential are rejected before any quota
// or session work happens.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := ResolveUserID(tokenFromRequest(r))
		if !ok {
			utils.RespondErrorKind(w, http.StatusUnauthorized, "unauthenticated", "a valid credential is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
