package tokenservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func testService() *Service {
	return NewService([]byte("test-secret"), time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	s := testService()

	token, err := s.Issue(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := s.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	s := testService()

	token, err := s.Issue(42)
	assert.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"

	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewService([]byte("other-secret"), time.Hour)

	token, err := other.Issue(42)
	assert.NoError(t, err)

	_, err = testService().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := NewService([]byte("test-secret"), -time.Minute)

	token, err := s.Issue(42)
	assert.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	testCases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "wrong segments", token: "a.b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testService().Verify(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	// alg=none must never be accepted even with a valid payload.
	claims := Claims{UserID: 42}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = testService().Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = testService().Verify(tokenString)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
