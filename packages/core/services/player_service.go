package services

import (
	"strings"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{
		db: db,
	}
}

// WithDB returns a copy bound to db, typically a transaction.
func (s *PlayerService) WithDB(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

func (s *PlayerService) GetPlayerByID(id uint) (*models.Player, error) {
	var player models.Player
	if err := first(s.db, &player, "player", id); err != nil {
		return nil, err
	}
	return &player, nil
}

// CreatePlayer creates the score record of a freshly registered user.
func (s *PlayerService) CreatePlayer(user authModels.User) (*models.Player, error) {
	player := &models.Player{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		GameID:    user.GameID,
		Level:     1,
	}

	if err := s.db.Create(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}

// SyncProfile copies the displayed profile fields from the user row.
func (s *PlayerService) SyncProfile(user authModels.User) error {
	return s.db.Model(&models.Player{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":   user.Username,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
		"game_id":    user.GameID,
	}).Error
}

type PaginatedPlayersResponse struct {
	Data       []models.Player `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ListPlayers searches players by username or name, most points first.
func (s *PlayerService) ListPlayers(search string, page, pageSize int) (*PaginatedPlayersResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Player{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var players []models.Player
	if err := query.Order("performance_points DESC").Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&players).Error; err != nil {
		return nil, err
	}

	return &PaginatedPlayersResponse{
		Data:       players,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetPlayerTeams returns the teams the player belongs to with their tower.
func (s *PlayerService) GetPlayerTeams(playerID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", playerID).
		Preload("Tower").
		Order("teams.id ASC").
		Find(&teams).Error
	return teams, err
}
