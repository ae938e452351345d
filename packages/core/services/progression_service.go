package services

import (
	"errors"
	"time"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	VeteranMatches      = 50
	SharpshooterKills   = 100
	MVPMasterCount      = 10
	TeamPlayerTeamCount = 3
)

var DefaultBadges = []models.Badge{
	{Type: models.BadgeTowerOwner, Name: "Tower Owner", Description: "Founded a tower"},
	{Type: models.BadgeTeamCaptain, Name: "Team Captain", Description: "Captains a team"},
	{Type: models.BadgeTeamPlayer, Name: "Team Player", Description: "Plays in three teams"},
	{Type: models.BadgeFirstTournament, Name: "First Tournament", Description: "Took part in a first tournament"},
	{Type: models.BadgeTournamentWinner, Name: "Champion", Description: "Won a tournament"},
	{Type: models.BadgeFirstWin, Name: "First Blood", Description: "Won a first match"},
	{Type: models.BadgeVeteran, Name: "Veteran", Description: "Played 50 matches"},
	{Type: models.BadgeSharpshooter, Name: "Sharpshooter", Description: "Reached 100 kills"},
	{Type: models.BadgeMVPMaster, Name: "MVP Master", Description: "Earned 10 MVPs"},
	{Type: models.BadgeOrganizer, Name: "Organizer", Description: "Approved tournament organizer"},
}

var DefaultAchievements = []models.Achievement{
	{Type: models.AchievementTowerCreated, Name: "Builder", Description: "Create a tower", XPReward: 50, Target: 1},
	{Type: models.AchievementTeamCreated, Name: "Recruiter", Description: "Create a team", XPReward: 25, Target: 1},
	{Type: models.AchievementTournamentParticipation, Name: "Contender", Description: "Take part in 10 tournaments", XPReward: 100, Target: 10},
	{Type: models.AchievementTournamentWin, Name: "Dynasty", Description: "Win 5 tournaments", XPReward: 250, Target: 5},
	{Type: models.AchievementMatchesPlayed, Name: "Grinder", Description: "Play 100 matches", XPReward: 150, Target: 100},
	{Type: models.AchievementMVPEarned, Name: "Clutch", Description: "Be MVP 25 times", XPReward: 150, Target: 25},
}

// ProgressionService owns XP, levels, badges and achievements.
type ProgressionService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewProgressionService(db *gorm.DB, logger zerolog.Logger) *ProgressionService {
	return &ProgressionService{
		db:     db,
		logger: logger,
	}
}

func (s *ProgressionService) WithDB(db *gorm.DB) *ProgressionService {
	return &ProgressionService{db: db, logger: s.logger}
}

// SeedCatalog inserts or refreshes the default badges and achievements.
func (s *ProgressionService) SeedCatalog() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, b := range DefaultBadges {
			var row models.Badge
			if err := tx.Where(models.Badge{Type: b.Type}).
				Assign(models.Badge{Name: b.Name, Description: b.Description, IconURL: b.IconURL}).
				FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		for _, a := range DefaultAchievements {
			var row models.Achievement
			if err := tx.Where(models.Achievement{Type: a.Type}).
				Assign(models.Achievement{Name: a.Name, Description: a.Description, IconURL: a.IconURL, XPReward: a.XPReward, Target: a.Target}).
				FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type XPResult struct {
	Level     int  `json:"level"`
	XP        int  `json:"xp"`
	LeveledUp bool `json:"leveledUp"`
}

// AddXP applies the XP transition and persists it.
func (s *ProgressionService) AddXP(userID uint, amount int) (*XPResult, error) {
	var player models.Player
	if err := first(s.db.Select("id", "level", "xp"), &player, "player", userID); err != nil {
		return nil, err
	}

	level, xp, up := utils.ApplyXP(player.Level, player.XP, amount)
	if err := s.db.Model(&models.Player{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"level": level, "xp": xp}).Error; err != nil {
		return nil, err
	}

	if up {
		s.logger.Info().Uint("user_id", userID).Int("level", level).Msg("player leveled up")
	}
	return &XPResult{Level: level, XP: xp, LeveledUp: up}, nil
}

// AwardBadge is idempotent; awarded is false when the user already had it.
func (s *ProgressionService) AwardBadge(userID uint, badgeType string) (awarded bool, err error) {
	var badge models.Badge
	if err := first(s.db.Where("type = ?", badgeType), &badge, "badge "+badgeType); err != nil {
		return false, err
	}

	var count int64
	if err := s.db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badge.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := s.db.Create(&models.UserBadge{UserID: userID, BadgeID: badge.ID}).Error; err != nil {
		return false, err
	}
	s.logger.Debug().Uint("user_id", userID).Str("badge", badgeType).Msg("badge awarded")
	return true, nil
}

// UpdateAchievement adds progress towards an achievement. Reaching the
// target completes it once and grants its XP reward.
func (s *ProgressionService) UpdateAchievement(userID uint, achievementType string, increment int) (*models.UserAchievement, error) {
	var achievement models.Achievement
	if err := first(s.db.Where("type = ?", achievementType), &achievement, "achievement "+achievementType); err != nil {
		return nil, err
	}

	var ua models.UserAchievement
	err := s.db.Where("user_id = ? AND achievement_id = ?", userID, achievement.ID).First(&ua).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ua = models.UserAchievement{UserID: userID, AchievementID: achievement.ID}
	} else if err != nil {
		return nil, err
	}

	ua.Achievement = &achievement
	if ua.Completed {
		return &ua, nil
	}

	ua.Progress += increment
	if ua.Progress >= achievement.Target {
		now := time.Now()
		ua.Progress = achievement.Target
		ua.Completed = true
		ua.CompletedAt = &now
	}

	if err := s.db.Omit("Achievement").Save(&ua).Error; err != nil {
		return nil, err
	}

	if ua.Completed && achievement.XPReward > 0 {
		if _, err := s.AddXP(userID, achievement.XPReward); err != nil {
			return nil, err
		}
	}
	return &ua, nil
}

// CheckMatchMilestones awards the badges unlocked by the player's
// counters and returns the newly earned badge types.
func (s *ProgressionService) CheckMatchMilestones(player models.Player) ([]string, error) {
	milestones := []struct {
		badge   string
		reached bool
	}{
		{models.BadgeFirstWin, player.MatchesWon >= 1},
		{models.BadgeVeteran, player.MatchesPlayed >= VeteranMatches},
		{models.BadgeSharpshooter, player.Kills >= SharpshooterKills},
		{models.BadgeMVPMaster, player.MvpCount >= MVPMasterCount},
	}

	var earned []string
	for _, m := range milestones {
		if !m.reached {
			continue
		}
		awarded, err := s.AwardBadge(player.ID, m.badge)
		if err != nil {
			return earned, err
		}
		if awarded {
			earned = append(earned, m.badge)
		}
	}
	return earned, nil
}

// reward runs a progression side effect and only logs failures, so that
// the main operation never fails because of badges.
func (s *ProgressionService) reward(what string, userID uint, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Str("reward", what).Msg("progression update failed")
	}
}

func (s *ProgressionService) AwardBadgeQuietly(userID uint, badgeType string) {
	s.reward(badgeType, userID, func() error {
		_, err := s.AwardBadge(userID, badgeType)
		return err
	})
}

func (s *ProgressionService) UpdateAchievementQuietly(userID uint, achievementType string, increment int) {
	s.reward(achievementType, userID, func() error {
		_, err := s.UpdateAchievement(userID, achievementType, increment)
		return err
	})
}
