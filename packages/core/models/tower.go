package models

import (
	"time"

	"towerhub-api/packages/core/ranking"

	"gorm.io/gorm"
)

const (
	TowerRoleMember   = "MEMBER"
	TowerRoleElite    = "ELITE_MEMBER"
	TowerRoleCoLeader = "CO_LEADER"
	// not stored, returned by profile endpoints for the leader
	TowerRoleOwner = "OWNER"

	DefaultTowerMaxTeams   = 10
	DefaultTowerMaxMembers = 50
)

type Tower struct {
	ID                      uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                    string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Code                    string         `gorm:"size:16;not null;uniqueIndex" json:"code"`
	LogoURL                 string         `gorm:"size:512" json:"logoUrl"`
	BannerURL               string         `gorm:"size:512" json:"bannerUrl"`
	Description             string         `gorm:"type:text" json:"description"`
	LeaderID                uint           `gorm:"not null;index" json:"leaderId"`
	CoLeaderID              *uint          `json:"coLeaderId"`
	MaxTeams                int            `gorm:"not null;default:10" json:"maxTeams"`
	MaxMembers              int            `gorm:"not null;default:50" json:"maxMembers"`
	Level                   int            `gorm:"not null;default:1" json:"level"`
	XP                      int            `gorm:"not null;default:0" json:"xp"`
	TotalPoints             int64          `gorm:"not null;default:0;index" json:"totalPoints"`
	TournamentsParticipated int            `gorm:"not null;default:0" json:"tournamentsParticipated"`
	TournamentsWon          int            `gorm:"not null;default:0" json:"tournamentsWon"`
	CreatedAt               time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Leader   *Player       `gorm:"foreignKey:LeaderID;references:ID" json:"leader,omitempty"`
	CoLeader *Player       `gorm:"foreignKey:CoLeaderID;references:ID" json:"coLeader,omitempty"`
	Members  []TowerMember `gorm:"foreignKey:TowerID" json:"members,omitempty"`
	Teams    []Team        `gorm:"foreignKey:TowerID" json:"teams,omitempty"`
}

func (Tower) TableName() string {
	return "towers"
}

func (t Tower) Ref() *EntityRef {
	return &EntityRef{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL}
}

// TowerMember rows are hard deleted; a user belongs to at most one tower.
type TowerMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TowerID  uint      `gorm:"not null;index" json:"towerId"`
	UserID   uint      `gorm:"not null;uniqueIndex" json:"userId"`
	Role     string    `gorm:"size:20;not null;default:MEMBER" json:"role"`
	Approved bool      `gorm:"not null;default:false" json:"approved"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	Tower  *Tower  `gorm:"foreignKey:TowerID;references:ID" json:"tower,omitempty"`
	Player *Player `gorm:"foreignKey:UserID;references:ID" json:"player,omitempty"`
}

func (TowerMember) TableName() string {
	return "tower_members"
}

type TowerAnnouncement struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TowerID   uint      `gorm:"not null;index" json:"towerId"`
	AuthorID  uint      `gorm:"not null" json:"authorId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Author *Player `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

func (TowerAnnouncement) TableName() string {
	return "tower_announcements"
}

// DTOs

type CreateTowerRequest struct {
	Name string `json:"name" binding:"required,min=3,max=64"`
}

type JoinTowerRequest struct {
	Code string `json:"code" binding:"required"`
}

type UpdateTowerSettingsRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=3,max=64"`
	LogoURL     *string `json:"logoUrl,omitempty" binding:"omitempty,url"`
	BannerURL   *string `json:"bannerUrl,omitempty" binding:"omitempty,url"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	MaxTeams    *int    `json:"maxTeams,omitempty" binding:"omitempty,min=1,max=100"`
	MaxMembers  *int    `json:"maxMembers,omitempty" binding:"omitempty,min=1,max=500"`
}

type CreateAnnouncementRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

type TowerMemberView struct {
	MemberID uint      `json:"memberId"`
	Role     string    `json:"role"`
	Approved bool      `json:"approved"`
	JoinedAt time.Time `json:"joinedAt"`
	Player   Player    `json:"player"`
	KDRatio  float64   `json:"kdRatio"`
	WinRate  float64   `json:"winRate"`
}

type TowerMembersResponse struct {
	TowerID uint              `json:"towerId"`
	Members []TowerMemberView `json:"members"`
	Pending []TowerMemberView `json:"pending"`
}

type TowerStats struct {
	TotalMembers  int64 `json:"totalMembers"`
	TotalTeams    int64 `json:"totalTeams"`
	ActiveEntries int64 `json:"activeRegistrations"`
	TotalKills    int64 `json:"totalKills"`
	TotalMVPs     int64 `json:"totalMVPs"`
}

type TowerOverview struct {
	Tower         Tower                    `json:"tower"`
	Members       []TowerMember            `json:"members"`
	Teams         []Team                   `json:"teams"`
	Registrations []TournamentRegistration `json:"activeRegistrations"`
	Stats         TowerStats               `json:"stats"`
}

type TeamStatus struct {
	Team                Team                     `json:"team"`
	MemberCount         int                      `json:"memberCount"`
	ActiveRegistrations []TournamentRegistration `json:"activeRegistrations"`
	Aggregate           ranking.TeamAggregate    `json:"aggregate"`
}

type TowerMemberRankEntry struct {
	Rank    int64   `json:"rank"`
	Role    string  `json:"role"`
	Player  Player  `json:"player"`
	KDRatio float64 `json:"kdRatio"`
	WinRate float64 `json:"winRate"`
}
