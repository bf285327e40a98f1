package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const Subject = "gaushala"

// Claims identifies a signed-in user and the profile collection they live in.
type Claims struct {
	Collection string `json:"collection"`
	gojwt.RegisteredClaims
}

// Create signs claims with the shared secret.
func Create(claims Claims, secret string) (string, error) {
	if claims.Subject == "" {
		claims.Subject = Subject
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = gojwt.NewNumericDate(time.Now())
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate checks signature, expiry and audience and returns the claims.
func Validate(token, secret, audience string) (*Claims, error) {
	var claims Claims
	parsed, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		gojwt.WithAudience(audience),
		gojwt.WithSubject(Subject),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no user id")
	}
	return &claims, nil
}
