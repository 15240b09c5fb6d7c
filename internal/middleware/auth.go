package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type authCtxKey int

const authKey authCtxKey = 3

// TokenTTL is how long an issued identity token stays valid.
const TokenTTL = 365 * 24 * time.Hour

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func secret() []byte {
	s := os.Getenv("POLLWAVE_JWT_SECRET")
	if s == "" {
		s = "pollwave-dev-secret"
	}
	return []byte(s)
}

func SignToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{Email: email, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(ttl))}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func parseToken(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) { return secret(), nil })
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// RequireAuth gates a route on a bearer token. A missing header is
// 401; a present but unverifiable token is 403. On success the
// claims land in the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		c, err := parseToken(tok)
		if err != nil {
			writeAuthError(w, http.StatusForbidden, "forbidden access")
			return
		}
		ctx := context.WithValue(r.Context(), authKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleResolver reports the stored role for an email.
type RoleResolver func(email string) (string, error)

// RequireAdmin re-checks the caller's stored role on every request;
// there is no session or cache to go stale.
func RequireAdmin(resolve RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := EmailFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			role, err := resolve(email)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "role lookup failed")
				return
			}
			if role != "Admin" {
				writeAuthError(w, http.StatusForbidden, "forbidden access")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func EmailFromContext(ctx context.Context) (string, bool) {
	if c, ok := ctx.Value(authKey).(*Claims); ok && c.Email != "" {
		return c.Email, true
	}
	return "", false
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
