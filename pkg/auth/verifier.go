package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoVerificationKey = errors.New("auth: no verification key configured for token algorithm")
	ErrMissingSubject    = errors.New("auth: token has no subject")
)

// Claims is the subset of the provider's access token we rely on.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Verifier validates access tokens issued by the hosted auth provider.
// HS256 tokens are checked against the shared JWT secret, RS256 tokens
// against the provider's JWKS.
type Verifier struct {
	secret []byte
	keys   *KeySet
}

func NewVerifier(secret string, keys *KeySet) *Verifier {
	return &Verifier{secret: []byte(secret), keys: keys}
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSubject
	}
	email, _ := mapClaims["email"].(string)

	claims := &Claims{Subject: sub, Email: email}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) == 0 {
			return nil, ErrNoVerificationKey
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.keys == nil {
			return nil, ErrNoVerificationKey
		}
		return v.keys.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}
