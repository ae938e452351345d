package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TournamentUpcoming  = "UPCOMING"
	TournamentLive      = "LIVE"
	TournamentCompleted = "COMPLETED"
	TournamentCancelled = "CANCELLED"

	RegistrationPending  = "PENDING"
	RegistrationApproved = "APPROVED"
	RegistrationRejected = "REJECTED"
)

// OngoingStatuses are the statuses counted as "ongoing" on leaderboards.
var OngoingStatuses = []string{TournamentUpcoming, TournamentLive}

type Tournament struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Game          string         `gorm:"size:100;not null" json:"game"`
	LogoURL       string         `gorm:"size:512" json:"logoUrl"`
	Description   string         `gorm:"type:text" json:"description"`
	EntryFee      int64          `gorm:"not null;default:0" json:"entryFee"`
	MaxTeams      int            `gorm:"not null" json:"maxTeams"`
	MatchDateTime time.Time      `gorm:"not null" json:"matchDateTime"`
	Status        string         `gorm:"size:20;not null;default:UPCOMING;index" json:"status"`
	WinnerTeamID  *uint          `json:"winnerTeamId"`
	CompletedAt   *time.Time     `json:"completedAt"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Organizers    []Player                 `gorm:"many2many:tournament_organizers;" json:"organizers,omitempty"`
	Registrations []TournamentRegistration `gorm:"foreignKey:TournamentID" json:"registrations,omitempty"`
	WinnerTeam    *Team                    `gorm:"foreignKey:WinnerTeamID;references:ID" json:"winnerTeam,omitempty"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

// CanTransitionTo implements UPCOMING -> LIVE -> COMPLETED, with
// cancellation allowed until completion.
func (t Tournament) CanTransitionTo(status string) bool {
	switch status {
	case TournamentLive:
		return t.Status == TournamentUpcoming
	case TournamentCompleted:
		return t.Status == TournamentLive
	case TournamentCancelled:
		return t.Status == TournamentUpcoming || t.Status == TournamentLive
	}
	return false
}

type TournamentRegistration struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TournamentID     uint      `gorm:"not null;uniqueIndex:idx_registrations_tournament_team" json:"tournamentId"`
	TeamID           uint      `gorm:"not null;uniqueIndex:idx_registrations_tournament_team;index" json:"teamId"`
	CreatedByUserID  uint      `gorm:"not null" json:"createdByUserId"`
	ApprovedByUserID *uint     `json:"approvedByUserId"`
	Status           string    `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Wins             int       `gorm:"not null;default:0" json:"wins"`
	Losses           int       `gorm:"not null;default:0" json:"losses"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Tournament *Tournament `gorm:"foreignKey:TournamentID;references:ID" json:"tournament,omitempty"`
	Team       *Team       `gorm:"foreignKey:TeamID;references:ID" json:"team,omitempty"`
}

func (TournamentRegistration) TableName() string {
	return "tournament_registrations"
}

// DTOs

type CreateTournamentRequest struct {
	Title         string    `json:"title" binding:"required,max=255"`
	Game          string    `json:"game" binding:"required,max=100"`
	LogoURL       string    `json:"logoUrl,omitempty" binding:"omitempty,url"`
	Description   string    `json:"description,omitempty"`
	EntryFee      int64     `json:"entryFee" binding:"min=0"`
	MaxTeams      int       `json:"maxTeams" binding:"required,min=2,max=256"`
	MatchDateTime time.Time `json:"matchDateTime" binding:"required"`
	OrganizerIDs  []uint    `json:"organizerIds,omitempty"`
}

type UpdateTournamentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=LIVE COMPLETED CANCELLED"`
}

type RegisterTeamRequest struct {
	TeamID uint `json:"teamId" binding:"required"`
}
