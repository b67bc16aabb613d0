package middleware

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const staffClaimsKey contextKey = "staffClaims"

// Authorities accepted on chatbot routes.
var chatbotAuthorities = []string{"ROLE_USER", "ROLE_OFFICE_MANAGER"}

// StaffClaims is the token payload issued to clinic staff.
type StaffClaims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// HasAny reports whether the claims grant one of the given authorities.
func (c StaffClaims) HasAny(authorities ...string) bool {
	for _, have := range c.Authorities {
		for _, want := range authorities {
			if have == want {
				return true
			}
		}
	}
	return false
}

// SigningKey derives the HS256 key from the shared secret. Tokens are signed
// with SHA-256(secret) so short secrets still give a full-size key.
func SigningKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// StaffJWT enforces an HMAC-signed bearer token carrying a chatbot authority.
// An empty secret disables the check.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	key := SigningKey(secret)
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims := StaffClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if !claims.HasAny(chatbotAuthorities...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), staffClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for WebSocket clients that cannot set headers.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), true
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// StaffClaimsFromContext returns staff JWT claims if present.
func StaffClaimsFromContext(ctx context.Context) (StaffClaims, bool) {
	claims, ok := ctx.Value(staffClaimsKey).(StaffClaims)
	return claims, ok
}
