package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const userKey ctxKey = iota

// Auth validates a Bearer HS256 token issued by the external auth provider
// and injects the subject claim (the user identity string) into the request
// context. User provisioning itself happens outside this service.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid claims")
				return
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, sub)))
		})
	}
}

// UserID returns the authenticated user identity, or "" outside Auth.
func UserID(ctx context.Context) string {
	s, _ := ctx.Value(userKey).(string)
	return s
}
