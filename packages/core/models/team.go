package models

import (
	"time"

	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

type Team struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TowerID   uint           `gorm:"not null;uniqueIndex:idx_teams_tower_name" json:"towerId"`
	Name      string         `gorm:"size:255;not null;uniqueIndex:idx_teams_tower_name" json:"name"`
	LogoURL   string         `gorm:"size:512" json:"logoUrl"`
	CaptainID *uint          `json:"captainId"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tower   *Tower       `gorm:"foreignKey:TowerID;references:ID" json:"tower,omitempty"`
	Captain *Player      `gorm:"foreignKey:CaptainID;references:ID" json:"captain,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string {
	return "teams"
}

func (t Team) Ref() *EntityRef {
	return &EntityRef{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL}
}

// MemberRecords returns the score records of the preloaded members.
func (t Team) MemberRecords() []ranking.ScoreRecord {
	records := make([]ranking.ScoreRecord, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Player != nil {
			records = append(records, m.Player.ScoreRecord())
		}
	}
	return records
}

type TeamMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID   uint      `gorm:"not null;uniqueIndex:idx_team_members_team_user" json:"teamId"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_team_members_team_user;index" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	Team   *Team   `gorm:"foreignKey:TeamID;references:ID" json:"team,omitempty"`
	Player *Player `gorm:"foreignKey:UserID;references:ID" json:"player,omitempty"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// DTOs

type CreateTeamRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=64"`
	LogoURL string `json:"logoUrl,omitempty" binding:"omitempty,url"`
}

type AddTeamMemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

type TeamDetails struct {
	Team      Team                  `json:"team"`
	Aggregate ranking.TeamAggregate `json:"aggregate"`
}
