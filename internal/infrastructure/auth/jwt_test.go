package auth

import (
	"testing"
	"time"

	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "bizgrid-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()
	principal := uuid.New()

	issued, err := svc.Issue(principal, "Asha")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(issued.AccessToken)
	require.NoError(t, err)
	id, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, principal, id)
	assert.Equal(t, "Asha", claims.DisplayName)
	assert.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAtTime().Unix())
}

func TestJWTService_Validate_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	issued, err := svc.Issue(uuid.New(), "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(issued.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Validate_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	issued, err := svc.Issue(uuid.New(), "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestJWTService_Validate_Rejections(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-another-secret-xx", Issuer: "bizgrid-test", AccessTokenExpiration: time.Minute})
		issued, err := other.Issue(uuid.New(), "")
		require.NoError(t, err)
		_, err = svc.Validate(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "elsewhere", AccessTokenExpiration: time.Minute})
		issued, err := other.Issue(uuid.New(), "")
		require.NoError(t, err)
		_, err = svc.Validate(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: uuid.New().String(),
			Issuer:  "bizgrid-test",
		}})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "bizgrid-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}})
		signed, err := token.SignedString([]byte("test-secret-key-at-least-32-chars"))
		require.NoError(t, err)
		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bizgrid-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}})
		signed, err := token.SignedString([]byte("test-secret-key-at-least-32-chars"))
		require.NoError(t, err)
		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}
