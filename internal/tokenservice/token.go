package tokenservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingSubject = errors.New("token does not identify a user")
)

// Claims is the payload of an issued token: the standard registered claims
// plus the id of the user the token asserts.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Service signs and verifies bearer tokens. Tokens are not persisted; the
// server only holds the signing secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Issue produces a signed HS256 token asserting the given user id. Every
// token carries an expiry claim.
func (s *Service) Issue(userID int) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses and validates a token string and returns the asserted user
// id. A bad signature, a malformed payload or an expired token all surface as
// ErrInvalidToken; a valid token without a user id surfaces as
// ErrMissingSubject.
func (s *Service) Verify(tokenString string) (int, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return 0, ErrMissingSubject
	}

	return claims.UserID, nil
}
