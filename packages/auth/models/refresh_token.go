package models

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"not null;index"`
	Token     string         `json:"token" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time      `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	RevokedAt *time.Time     `json:"revokedAt"`
	UserAgent string         `json:"userAgent" gorm:"size:255"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName spécifie le nom de la table
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired vérifie si le token est expiré
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsUsable is false once the token expired or was rotated away.
func (rt *RefreshToken) IsUsable() bool {
	return rt.RevokedAt == nil && !rt.IsExpired()
}
