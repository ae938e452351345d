package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"towerhub-api/packages/auth/models"

	"github.com/golang-jwt/jwt/v5"
)

const devSecret = "dev_secret_change_me"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID   uint         `json:"uid"`
	Username string       `json:"username"`
	Roles    models.Roles `json:"roles"`
	jwt.RegisteredClaims
}

// JWTSecret lit JWT_SECRET, avec une valeur de dev par défaut.
// config.Load refuses to start in release mode without it.
func JWTSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte(devSecret)
}

// GenerateToken signe un access token HS256 pour l'utilisateur.
func GenerateToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTSecret())
}

// ParseToken vérifie la signature et l'expiration.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
