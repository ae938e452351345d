package utils

import (
	"testing"
	"time"

	"towerhub-api/packages/auth/models"

	"github.com/bmizerany/assert"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(models.User{ID: 42, Username: "neo", Roles: models.Roles{models.RoleOrganizer}})
	assert.Equal(t, nil, err)

	claims, err := ParseToken(token)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "neo", claims.Username)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first")
	token, err := GenerateToken(models.User{ID: 1})
	assert.Equal(t, nil, err)

	t.Setenv("JWT_SECRET", "second")
	_, err = ParseToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	past := time.Now().Add(-time.Hour)
	claims := Claims{
		UserID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTSecret())
	assert.Equal(t, nil, err)

	_, err = ParseToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.Equal(t, nil, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.T(t, CheckPassword("hunter22", hash))
	assert.Equal(t, false, CheckPassword("hunter23", hash))
}
