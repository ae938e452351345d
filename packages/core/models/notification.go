package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTournamentCreated    = "TOURNAMENT_CREATED"
	NotificationRegistrationApproved = "REGISTRATION_APPROVED"
	NotificationRegistrationRejected = "REGISTRATION_REJECTED"
	NotificationTowerJoinRequest     = "TOWER_JOIN_REQUEST"
	NotificationTowerMemberApproved  = "TOWER_MEMBER_APPROVED"
	NotificationTowerRoleChanged     = "TOWER_ROLE_CHANGED"
	NotificationTowerAnnouncement    = "TOWER_ANNOUNCEMENT"
	NotificationTeamMemberAdded      = "TEAM_MEMBER_ADDED"
	NotificationTournamentWon        = "TOURNAMENT_WON"
	NotificationOrganizerApproved    = "ORGANIZER_APPROVED"
	NotificationOrganizerRejected    = "ORGANIZER_REJECTED"
	NotificationLevelUp              = "LEVEL_UP"
	NotificationBadgeEarned          = "BADGE_EARNED"
)

const NotificationListLimit = 50

type Notification struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Type      string         `gorm:"size:50;not null" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Data      datatypes.JSON `json:"data,omitempty"`
	Read      bool           `gorm:"not null;default:false;index" json:"read"`
	SentBy    *uint          `json:"sentBy"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`

	Sender *Player `gorm:"foreignKey:SentBy;references:ID" json:"sender,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
