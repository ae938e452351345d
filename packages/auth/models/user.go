package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Roles []string

// Implémente l'interface driver.Valuer pour GORM
func (r Roles) Value() (driver.Value, error) {
	if len(r) == 0 {
		return json.Marshal(GetDefaultRoles())
	}
	return json.Marshal(r)
}

// Implémente l'interface sql.Scanner pour GORM.
// Postgres renvoie du []byte, SQLite du string.
func (r *Roles) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = GetDefaultRoles()
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("roles: unsupported column type %T", value)
	}
}

type User struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"size:255"`
	Username          string         `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Mobile            string         `json:"mobile" gorm:"size:32;uniqueIndex;not null"`
	Email             *string        `json:"email" gorm:"size:255;uniqueIndex"`
	Password          string         `json:"-" gorm:"not null"`
	Bio               string         `json:"bio" gorm:"type:text"`
	AvatarURL         string         `json:"avatarUrl" gorm:"size:512"`
	GameID            string         `json:"gameId" gorm:"size:255"`
	InstagramURL      string         `json:"instagramUrl" gorm:"size:512"`
	YoutubeURL        string         `json:"youtubeUrl" gorm:"size:512"`
	DiscordURL        string         `json:"discordUrl" gorm:"size:512"`
	CustomTagline     string         `json:"customTagline" gorm:"size:255"`
	Enabled           bool           `json:"enabled" gorm:"default:true"`
	Roles             Roles          `json:"roles" gorm:"type:jsonb"`
	NotifyTournaments bool           `json:"notifyTournaments" gorm:"default:true"`
	NotifyTeams       bool           `json:"notifyTeams" gorm:"default:true"`
	NotifyTowers      bool           `json:"notifyTowers" gorm:"default:true"`
	LastLogin         *time.Time     `json:"lastLogin"`
	NbConnexion       int            `json:"nbConnexion" gorm:"default:0"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName spécifie le nom de la table au pluriel
func (User) TableName() string {
	return "users"
}

// HasRole vérifie si l'utilisateur a un rôle spécifique
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// AddRole ajoute un rôle à l'utilisateur
func (u *User) AddRole(role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

// RemoveRole supprime un rôle de l'utilisateur
func (u *User) RemoveRole(role string) {
	for i, r := range u.Roles {
		if r == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return
		}
	}
}

// WantsNotification reports whether the user opted in to the given category.
func (u *User) WantsNotification(category string) bool {
	switch category {
	case NotifyCategoryTournaments:
		return u.NotifyTournaments
	case NotifyCategoryTeams:
		return u.NotifyTeams
	case NotifyCategoryTowers:
		return u.NotifyTowers
	default:
		return true
	}
}

const (
	NotifyCategoryTournaments = "tournaments"
	NotifyCategoryTeams       = "teams"
	NotifyCategoryTowers      = "towers"
	NotifyCategoryAccount     = "account"
)

type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username" binding:"required,min=3,max=32"`
	Mobile   string `json:"mobile" binding:"required,min=8,max=20"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthResponse struct {
	TokenResponse
	User User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type ChangePasswordResponse struct {
	Success bool `json:"success"`
}

type UpdateMeRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
}

type UpdateUserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type PatchUserRequest struct {
	Email   *string   `json:"email,omitempty" binding:"omitempty,email"`
	Roles   *[]string `json:"roles,omitempty"`
	Enabled *bool     `json:"enabled,omitempty"`
}

type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	TotalPages int    `json:"totalPages"`
}
