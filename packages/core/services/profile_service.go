package services

import (
	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/utils"

	"gorm.io/gorm"
)

type ProfileService struct {
	db          *gorm.DB
	leaderboard *LeaderboardService
	players     *PlayerService
}

func NewProfileService(db *gorm.DB, leaderboard *LeaderboardService, players *PlayerService) *ProfileService {
	return &ProfileService{
		db:          db,
		leaderboard: leaderboard,
		players:     players,
	}
}

func (s *ProfileService) user(userID uint) (*authModels.User, error) {
	var user authModels.User
	if err := first(s.db, &user, "user", userID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *ProfileService) Overview(userID uint) (*models.ProfileOverview, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	details, err := s.leaderboard.PlayerDetails(userID)
	if err != nil {
		return nil, err
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread).Error; err != nil {
		return nil, err
	}

	return &models.ProfileOverview{
		User:                *user,
		Player:              details.Player,
		Rank:                details.Rank,
		KDRatio:             details.KDRatio,
		WinRate:             details.WinRate,
		XPForNextLevel:      utils.XPForNextLevel(details.Player.Level),
		Tower:               details.Tower,
		TowerRole:           details.TowerRole,
		Teams:               details.Teams,
		Badges:              details.Badges,
		UnreadNotifications: unread,
	}, nil
}

func (s *ProfileService) Stats(userID uint) (*models.ProfileStats, error) {
	details, err := s.leaderboard.PlayerDetails(userID)
	if err != nil {
		return nil, err
	}

	var completed int64
	for _, a := range details.Achievements {
		if a.Completed {
			completed++
		}
	}

	return &models.ProfileStats{
		Player:                details.Player,
		Rank:                  details.Rank,
		KDRatio:               details.KDRatio,
		WinRate:               details.WinRate,
		XPForNextLevel:        utils.XPForNextLevel(details.Player.Level),
		TournamentsPlayed:     details.Tournaments.Total,
		TournamentsWon:        details.Tournaments.Wins,
		BadgesEarned:          int64(len(details.Badges)),
		AchievementsCompleted: completed,
	}, nil
}

func (s *ProfileService) Tournaments(userID uint) (*models.PlayerTournaments, error) {
	if _, err := s.players.GetPlayerByID(userID); err != nil {
		return nil, err
	}
	t, err := loadPlayerTournaments(s.db, userID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Achievements lists every catalog achievement with the user's progress.
func (s *ProfileService) Achievements(userID uint) (*models.ProfileAchievements, error) {
	if _, err := s.players.GetPlayerByID(userID); err != nil {
		return nil, err
	}

	out := &models.ProfileAchievements{
		Badges:       []models.UserBadge{},
		Achievements: []models.AchievementProgress{},
	}
	if err := s.db.Where("user_id = ?", userID).Preload("Badge").Order("earned_at DESC").Find(&out.Badges).Error; err != nil {
		return nil, err
	}

	var catalog []models.Achievement
	if err := s.db.Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, err
	}
	var progress []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, err
	}
	byAchievement := make(map[uint]models.UserAchievement, len(progress))
	for _, p := range progress {
		byAchievement[p.AchievementID] = p
	}

	for _, a := range catalog {
		p := byAchievement[a.ID]
		out.Achievements = append(out.Achievements, models.AchievementProgress{
			Achievement: a,
			Progress:    p.Progress,
			Completed:   p.Completed,
			CompletedAt: p.CompletedAt,
		})
	}
	return out, nil
}

// UpdateProfile edits the user row and mirrors the displayed fields on the
// player record.
func (s *ProfileService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*authModels.User, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("name", req.Name)
	set("bio", req.Bio)
	set("avatar_url", req.AvatarURL)
	set("game_id", req.GameID)
	set("instagram_url", req.InstagramURL)
	set("youtube_url", req.YoutubeURL)
	set("discord_url", req.DiscordURL)
	set("custom_tagline", req.CustomTagline)

	if len(updates) == 0 {
		return user, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(user, userID).Error; err != nil {
			return err
		}
		return s.players.WithDB(tx).SyncProfile(*user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UpdateNotificationPrefs(userID uint, req models.UpdateNotificationPrefsRequest) (*authModels.User, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.NotifyTournaments != nil {
		updates["notify_tournaments"] = *req.NotifyTournaments
	}
	if req.NotifyTeams != nil {
		updates["notify_teams"] = *req.NotifyTeams
	}
	if req.NotifyTowers != nil {
		updates["notify_towers"] = *req.NotifyTowers
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.user(userID)
}

// PublicProfile is what anyone can see of a player, without contact
// details.
func (s *ProfileService) PublicProfile(username string) (*models.PublicProfile, error) {
	var user authModels.User
	if err := first(s.db.Where("username = ? AND enabled = ?", username, true), &user, "user"); err != nil {
		return nil, err
	}
	details, err := s.leaderboard.PlayerDetails(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.PublicProfile{
		Username:      user.Username,
		Name:          user.Name,
		Bio:           user.Bio,
		AvatarURL:     user.AvatarURL,
		GameID:        user.GameID,
		InstagramURL:  user.InstagramURL,
		YoutubeURL:    user.YoutubeURL,
		DiscordURL:    user.DiscordURL,
		CustomTagline: user.CustomTagline,
		MemberSince:   user.CreatedAt,
		Stats:         *details,
	}, nil
}
