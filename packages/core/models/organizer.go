package models

import "time"

const (
	ApplicationPending  = "PENDING"
	ApplicationApproved = "APPROVED"
	ApplicationRejected = "REJECTED"
)

type OrganizerApplication struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"userId"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`
	Status     string    `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	ReviewedBy *uint     `json:"reviewedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Player *Player `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (OrganizerApplication) TableName() string {
	return "organizer_applications"
}

type OrganizerApplyRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=2000"`
}

type OrganizerView struct {
	PlayerSummary
	Email                *string `json:"email"`
	TournamentsOrganized int64   `json:"tournamentsOrganized"`
}
