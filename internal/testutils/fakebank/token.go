package fakebank

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the name of the session cookie issued on authentication.
const TokenCookie = "token"

const tokenLifetime = time.Hour

type claims struct {
	AccountID int `json:"account_id"`
	jwt.RegisteredClaims
}

type accountKey struct{}

func (b *Bank) issueToken(accountID int) (string, error) {
	now := b.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	})
	return token.SignedString(b.secret)
}

func (b *Bank) parseToken(raw string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(*jwt.Token) (interface{}, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(b.clock))
	if err != nil {
		return nil, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return c, nil
}

// requireToken accepts the session token from the cookie or a Bearer header.
func (b *Bank) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		} else if cookie, err := r.Cookie(TokenCookie); err == nil {
			raw = cookie.Value
		}
		if raw == "" {
			respondError(w, http.StatusUnauthorized, MsgTokenMissing)
			return
		}

		c, err := b.parseToken(raw)
		if err != nil {
			b.logger.Debug("rejecting token", "error", err)
			respondError(w, http.StatusUnauthorized, MsgTokenInvalid)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey{}, c.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Bank) clock() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now()
}
