// Package middleware holds HTTP middleware for the MeshX REST debug/status
// API, grounded on the teacher's pkg/api/middleware package.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meshx-project/meshx/pkg/logger"
)

type contextKey int

const principalContextKey contextKey = 0

// Principal identifies the caller an authenticated request was made as.
type Principal struct {
	Subject string
	Role    string
}

// PrincipalFromContext returns the caller attached by APIKeyAuth, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}

// APIKeyAuth validates bearer JWTs issued by POST /api/v1/login, or a
// long-lived API key presented directly, in front of the node's REST
// surface.
type APIKeyAuth struct {
	users     map[string]struct{}
	jwtSecret []byte
	log       *logger.Logger
}

// NewAPIKeyAuth creates a new auth middleware accepting keys and, when
// jwtSecret is non-empty, JWTs signed with it.
func NewAPIKeyAuth(keys []string, jwtSecret string) *APIKeyAuth {
	uMap := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		uMap[k] = struct{}{}
	}
	var secret []byte
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	return &APIKeyAuth{users: uMap, jwtSecret: secret, log: logger.Global().Module("auth")}
}

// Handler returns the middleware handler.
func (a *APIKeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" || r.URL.Path == "/api/v1/login" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			if a.jwtSecret != nil {
				if p, ok := a.parseJWT(tokenString); ok {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalContextKey, p)))
					return
				}
			}

			if _, ok := a.users[tokenString]; ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalContextKey, Principal{Subject: tokenString})))
				return
			}
		}

		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			if _, ok := a.users[apiKey]; ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalContextKey, Principal{Subject: apiKey})))
				return
			}
		}

		a.log.Warn("rejected unauthenticated request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (a *APIKeyAuth) parseJWT(tokenString string) (Principal, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, false
	}
	p := Principal{}
	if sub, ok := claims["sub"].(string); ok {
		p.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	}
	return p, true
}
