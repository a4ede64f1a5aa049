package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Middleware authenticates requests and injects the caller's user id into
// the request context.
type Middleware struct {
	enableVerification bool
	jwtSecret          []byte
	logger             *zap.Logger
}

// NewMiddleware creates the auth middleware. When verification is
// disabled (local development), requests identify themselves with the
// X-User-ID header instead of a bearer token.
func NewMiddleware(enableVerification bool, jwtSecret string, logger *zap.Logger) *Middleware {
	return &Middleware{
		enableVerification: enableVerification,
		jwtSecret:          []byte(jwtSecret),
		logger:             logger,
	}
}

// RequireUser wraps a handler, rejecting requests without a resolvable
// identity with 401.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.resolveUserID(r)
		if err != nil {
			m.logger.Debug("Authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Not authenticated"}`))
			return
		}

		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

func (m *Middleware) resolveUserID(r *http.Request) (string, error) {
	if !m.enableVerification {
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			return userID, nil
		}
		return "", fmt.Errorf("missing X-User-ID header")
	}

	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	return m.verifyToken(token)
}

// verifyToken validates an HS256 token signed by the identity provider and
// returns its subject claim.
func (m *Middleware) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return subject, nil
}
