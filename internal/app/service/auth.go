package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AuthIface is the authentication contract used by the middleware.
type AuthIface interface {
	VerifyAPIKey(key string) bool
	BuildJWTString() (string, error)
	ParseRawJWT(tokenString string) (*Claims, error)
}

// Claims are the registered JWT claims of a management token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenExp defines the lifetime of an issued management token.
const TokenExp = 24 * time.Hour

// Auth verifies the shared management secret and issues bearer tokens
// signed with it.
type Auth struct {
	secret string
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: secret}
}

// VerifyAPIKey compares the presented key against the shared secret in
// constant time. An empty configured secret never matches.
func (a *Auth) VerifyAPIKey(key string) bool {
	if a.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.secret)) == 1
}

// BuildJWTString mints a signed management token.
func (a *Auth) BuildJWTString() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	return token.SignedString([]byte(a.secret))
}

// ParseRawJWT verifies the token signature and expiry and returns the claims.
func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or claims")
	}

	return claims, nil
}
