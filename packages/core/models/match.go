package models

import "time"

type Match struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TournamentID uint       `gorm:"not null;index" json:"tournamentId"`
	TeamAID      uint       `gorm:"not null" json:"teamAId"`
	TeamBID      uint       `gorm:"not null" json:"teamBId"`
	RoomID       string     `gorm:"size:100" json:"roomId"`
	WinnerTeamID *uint      `json:"winnerTeamId"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Relationships
	TeamA      *Team   `gorm:"foreignKey:TeamAID;references:ID" json:"teamA,omitempty"`
	TeamB      *Team   `gorm:"foreignKey:TeamBID;references:ID" json:"teamB,omitempty"`
	WinnerTeam *Team   `gorm:"foreignKey:WinnerTeamID;references:ID" json:"winnerTeam,omitempty"`
	Proofs     []Proof `gorm:"foreignKey:MatchID" json:"proofs,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

func (m Match) HasTeam(teamID uint) bool {
	return m.TeamAID == teamID || m.TeamBID == teamID
}

type Proof struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID      uint      `gorm:"not null;index" json:"matchId"`
	UploadedByID uint      `gorm:"not null" json:"uploadedById"`
	URL          string    `gorm:"size:1024;not null" json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Proof) TableName() string {
	return "match_proofs"
}

// DTOs

type CreateMatchRequest struct {
	TeamAID uint   `json:"teamAId" binding:"required"`
	TeamBID uint   `json:"teamBId" binding:"required,nefield=TeamAID"`
	RoomID  string `json:"roomId,omitempty" binding:"max=100"`
}

type SetRoomRequest struct {
	RoomID string `json:"roomId" binding:"required,max=100"`
}

type AddProofRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// StatLine is one player's contribution to a match.
type StatLine struct {
	UserID uint  `json:"userId" binding:"required"`
	Kills  int64 `json:"kills" binding:"min=0"`
	Deaths int64 `json:"deaths" binding:"min=0"`
	MVP    bool  `json:"mvp"`
	Points int64 `json:"points" binding:"min=0"`
}

type MatchResultRequest struct {
	WinnerTeamID uint       `json:"winnerTeamId" binding:"required"`
	Stats        []StatLine `json:"stats" binding:"dive"`
}

type MatchResult struct {
	Match         Match  `json:"match"`
	PlayersScored int    `json:"playersScored"`
	LevelUps      []uint `json:"levelUps"`
}
