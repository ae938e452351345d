package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"towerhub-api/packages/auth/models"

	"gorm.io/gorm"
)

const (
	AccessTokenExpiry  = 15 * time.Minute   // Access token court
	RefreshTokenExpiry = 7 * 24 * time.Hour // Refresh token longue durée
	MaxSessionsPerUser = 5
)

var (
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrRefreshTokenReused means a rotated token came back; every session
	// of the user is revoked when this happens.
	ErrRefreshTokenReused = errors.New("refresh token reuse detected")
)

// GenerateTokenPair génère un access token et un refresh token pour une
// nouvelle session. Les sessions les plus anciennes au-delà de
// MaxSessionsPerUser sont supprimées.
func GenerateTokenPair(db *gorm.DB, user models.User, userAgent string) (*models.TokenResponse, error) {
	accessToken, err := GenerateToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenString, err := generateSecureToken()
	if err != nil {
		return nil, err
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiry),
		UserAgent: truncate(userAgent, 255),
	}
	if err := db.Create(&refreshToken).Error; err != nil {
		return nil, err
	}

	if err := pruneSessions(db, user.ID); err != nil {
		return nil, err
	}

	return newTokenResponse(accessToken, refreshTokenString), nil
}

// RefreshAccessToken échange un refresh token contre une nouvelle paire.
// The presented token is revoked and replaced by a fresh one.
func RefreshAccessToken(db *gorm.DB, refreshTokenString string) (*models.TokenResponse, error) {
	var refreshToken models.RefreshToken
	if err := db.Preload("User").Where("token = ?", refreshTokenString).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if refreshToken.RevokedAt != nil {
		if err := RevokeAllUserTokens(db, refreshToken.UserID); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenReused
	}
	if refreshToken.IsExpired() || !refreshToken.User.Enabled {
		db.Delete(&refreshToken)
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := GenerateToken(refreshToken.User)
	if err != nil {
		return nil, err
	}
	newRefreshTokenString, err := generateSecureToken()
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&refreshToken).Update("revoked_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&models.RefreshToken{
			UserID:    refreshToken.UserID,
			Token:     newRefreshTokenString,
			ExpiresAt: now.Add(RefreshTokenExpiry),
			UserAgent: refreshToken.UserAgent,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return newTokenResponse(accessToken, newRefreshTokenString), nil
}

// RevokeRefreshToken révoque un refresh token
func RevokeRefreshToken(db *gorm.DB, refreshTokenString string) error {
	return db.Unscoped().Where("token = ?", refreshTokenString).Delete(&models.RefreshToken{}).Error
}

// RevokeAllUserTokens révoque tous les refresh tokens d'un utilisateur
func RevokeAllUserTokens(db *gorm.DB, userID uint) error {
	return db.Unscoped().Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// CleanExpiredTokens supprime les tokens expirés et ceux révoqués depuis plus
// d'une durée de vie (à appeler périodiquement).
func CleanExpiredTokens(db *gorm.DB) (int64, error) {
	now := time.Now()
	res := db.Unscoped().
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, now.Add(-RefreshTokenExpiry)).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func pruneSessions(db *gorm.DB, userID uint) error {
	var keep []uint
	if err := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(MaxSessionsPerUser).
		Pluck("id", &keep).Error; err != nil {
		return err
	}
	if len(keep) < MaxSessionsPerUser {
		return nil
	}
	return db.Unscoped().
		Where("user_id = ? AND revoked_at IS NULL AND id NOT IN ?", userID, keep).
		Delete(&models.RefreshToken{}).Error
}

func newTokenResponse(accessToken, refreshToken string) *models.TokenResponse {
	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenExpiry.Seconds()),
		TokenType:    "Bearer",
	}
}

// generateSecureToken génère un token sécurisé pour le refresh token
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
