package app

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// apiClaims are the claims carried by minted forecast API tokens.
type apiClaims struct {
	Subject string `json:"sub,omitempty"`
	jwt.RegisteredClaims
}

// MintToken signs an expiring HMAC token for the forecast API using the
// shared key. Operators hand these to callers instead of the raw key.
func MintToken(key, subject string, expiresAt jwt.NumericDate) (string, error) {
	claims := apiClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: &expiresAt,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", fmt.Errorf("sign api token: %w", err)
	}
	return signed, nil
}

func verifyToken(key, raw string) bool {
	claims := &apiClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(key), nil
	})
	return err == nil && token.Valid
}

// requireKey gates a handler behind the shared API key. The Authorization
// header may carry the raw key, "Bearer <key>", or "Bearer <jwt>" signed
// with the key. An empty configured key disables the gate.
func requireKey(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		credential := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if credential == "" {
			writeUnauthorized(w)
			return
		}
		if subtle.ConstantTimeCompare([]byte(credential), []byte(key)) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		if verifyToken(key, credential) {
			next.ServeHTTP(w, r)
			return
		}
		writeUnauthorized(w)
	})
}
