package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:   "test-secret",
		SessionExp:  time.Hour,
		TokenIssuer: "uniconsult.test",
	})
}

func testUser() *models.User {
	return &models.User{ID: 42, Email: "ada@uniconsult.com", RoleType: models.RoleFaculty}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	sessionID := uuid.New()

	token, err := svc.GenerateSessionToken(testUser(), sessionID, svc.SessionExpiry())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "faculty", claims.RoleType)
	assert.Equal(t, "42", claims.Subject)

	gotID, err := claims.SessionID()
	require.NoError(t, err)
	assert.Equal(t, sessionID, gotID)
}

func TestJWTService_RejectsForgedAndTampered(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateSessionToken(testUser(), uuid.New(), svc.SessionExpiry())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", SessionExp: time.Hour, TokenIssuer: "uniconsult.test"})
		forged, err := other.GenerateSessionToken(&models.User{ID: 1, RoleType: models.RoleAdmin}, uuid.New(), other.SessionExpiry())
		require.NoError(t, err)

		_, err = svc.ValidateToken(forged)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("payload edited", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		edited := parts[0] + "." + parts[1] + "x" + "." + parts[2]

		_, err := svc.ValidateToken(edited)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{UserID: 1, RoleType: "admin", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "uniconsult.test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(unsigned)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "test-secret", SessionExp: time.Hour, TokenIssuer: "elsewhere"})
		foreign, err := other.GenerateSessionToken(testUser(), uuid.New(), other.SessionExpiry())
		require.NoError(t, err)

		_, err = svc.ValidateToken(foreign)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateSessionToken(testUser(), uuid.New(), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bearer", "Bearer a.b.c", "a.b.c", nil},
		{"lowercase scheme", "bearer a.b.c", "a.b.c", nil},
		{"raw jwt", "a.b.c", "a.b.c", nil},
		{"empty", "", "", apperrors.ErrTokenNotFound},
		{"garbage", "Basic dXNlcjpwYXNz", "", apperrors.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = bcrypt.DefaultCost })

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}
