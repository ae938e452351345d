package core

import (
	authMiddleware "towerhub-api/packages/auth/middleware"
	authModels "towerhub-api/packages/auth/models"
	authServices "towerhub-api/packages/auth/services"
	"towerhub-api/packages/core/cron"
	"towerhub-api/packages/core/handlers"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Options struct {
	RankSnapshotCron string
}

type Module struct {
	PlayerHandler       *handlers.PlayerHandler
	PlayerService       *services.PlayerService
	LeaderboardHandler  *handlers.LeaderboardHandler
	LeaderboardService  *services.LeaderboardService
	TowerHandler        *handlers.TowerHandler
	TowerService        *services.TowerService
	TeamHandler         *handlers.TeamHandler
	TeamService         *services.TeamService
	TournamentHandler   *handlers.TournamentHandler
	TournamentService   *services.TournamentService
	MatchHandler        *handlers.MatchHandler
	MatchService        *services.MatchService
	NotificationHandler *handlers.NotificationHandler
	NotificationService *services.NotificationService
	OrganizerHandler    *handlers.OrganizerHandler
	OrganizerService    *services.OrganizerService
	ProfileHandler      *handlers.ProfileHandler
	ProfileService      *services.ProfileService
	StatsHandler        *handlers.StatsHandler
	StatsService        *services.StatsService
	ProgressionService  *services.ProgressionService
	CleanupService      *services.CleanupService
	Scheduler           *cron.Scheduler
	db                  *gorm.DB
	logger              zerolog.Logger
}

func NewModule(db *gorm.DB, mailer authServices.EmailService, opts Options, logger zerolog.Logger) *Module {
	progressionService := services.NewProgressionService(db, logger)
	notificationService := services.NewNotificationService(db, mailer, logger)

	playerService := services.NewPlayerService(db)
	leaderboardService := services.NewLeaderboardService(db)
	towerService := services.NewTowerService(db, progressionService, notificationService)
	teamService := services.NewTeamService(db, progressionService, notificationService)
	tournamentService := services.NewTournamentService(db, progressionService, notificationService)
	matchService := services.NewMatchService(db, progressionService, notificationService)
	organizerService := services.NewOrganizerService(db, progressionService, notificationService)
	profileService := services.NewProfileService(db, leaderboardService, playerService)
	statsService := services.NewStatsService(db)
	cleanupService := services.NewCleanupService(db, notificationService, logger)

	scheduler := cron.NewScheduler(db, leaderboardService, cleanupService, opts.RankSnapshotCron, logger)

	return &Module{
		PlayerHandler:       handlers.NewPlayerHandler(playerService),
		PlayerService:       playerService,
		LeaderboardHandler:  handlers.NewLeaderboardHandler(leaderboardService),
		LeaderboardService:  leaderboardService,
		TowerHandler:        handlers.NewTowerHandler(towerService),
		TowerService:        towerService,
		TeamHandler:         handlers.NewTeamHandler(teamService),
		TeamService:         teamService,
		TournamentHandler:   handlers.NewTournamentHandler(tournamentService),
		TournamentService:   tournamentService,
		MatchHandler:        handlers.NewMatchHandler(matchService),
		MatchService:        matchService,
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		NotificationService: notificationService,
		OrganizerHandler:    handlers.NewOrganizerHandler(organizerService),
		OrganizerService:    organizerService,
		ProfileHandler:      handlers.NewProfileHandler(profileService),
		ProfileService:      profileService,
		StatsHandler:        handlers.NewStatsHandler(statsService),
		StatsService:        statsService,
		ProgressionService:  progressionService,
		CleanupService:      cleanupService,
		Scheduler:           scheduler,
		db:                  db,
		logger:              logger,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	jwt := authMiddleware.JWTMiddleware()

	players := r.Group("/players")
	{
		players.GET("", m.PlayerHandler.GetAllPlayers)
		players.GET("/:id", m.PlayerHandler.GetPlayer)
		players.GET("/:id/teams", m.PlayerHandler.GetPlayerTeams)
	}

	leaderboard := r.Group("/leaderboard")
	{
		leaderboard.GET("/players", m.LeaderboardHandler.GetPlayers)
		leaderboard.GET("/towers", m.LeaderboardHandler.GetTowers)
		leaderboard.GET("/teams", m.LeaderboardHandler.GetTeams)
		leaderboard.GET("/tournament-winners", m.LeaderboardHandler.GetTournamentWinners)
		leaderboard.GET("/compare", m.LeaderboardHandler.ComparePlayers)
		leaderboard.GET("/players/:id/details", m.LeaderboardHandler.GetPlayerDetails)
		leaderboard.GET("/players/:id/rank-history", m.LeaderboardHandler.GetRankHistory)
	}

	towers := r.Group("/towers")
	{
		towers.POST("", jwt, m.TowerHandler.CreateTower)
		towers.POST("/join", jwt, m.TowerHandler.JoinTower)
		towers.POST("/:id/leave", jwt, m.TowerHandler.LeaveTower)
		towers.DELETE("/:id", jwt, m.TowerHandler.DeleteTower)
		towers.PUT("/:id/settings", jwt, m.TowerHandler.UpdateSettings)

		towers.GET("/:id/overview", m.TowerHandler.GetOverview)
		towers.GET("/:id/members", authMiddleware.OptionalJWTMiddleware(), m.TowerHandler.GetMembers)
		towers.GET("/:id/teams-status", m.TowerHandler.GetTeamsStatus)
		towers.GET("/:id/tournaments", m.TowerHandler.GetTournaments)
		towers.GET("/:id/leaderboard", m.TowerHandler.GetLeaderboard)
		towers.GET("/:id/announcements", m.TowerHandler.GetAnnouncements)
		towers.POST("/:id/announcements", jwt, m.TowerHandler.CreateAnnouncement)

		towers.POST("/:id/members/:memberId/approve", jwt, m.TowerHandler.ApproveMember)
		towers.POST("/:id/members/:memberId/promote", jwt, m.TowerHandler.PromoteMember)
		towers.POST("/:id/members/:memberId/demote", jwt, m.TowerHandler.DemoteMember)
		towers.DELETE("/:id/members/:memberId", jwt, m.TowerHandler.RemoveMember)
		towers.POST("/:id/coleaders/:userId", jwt, m.TowerHandler.AddCoLeader)
		towers.POST("/:id/assign-coleader/:userId", jwt, m.TowerHandler.AssignCoLeader)
		towers.DELETE("/:id/coleader", jwt, m.TowerHandler.RemoveCoLeader)

		towers.POST("/:id/teams", jwt, m.TeamHandler.CreateTeam)
	}

	teams := r.Group("/teams")
	{
		teams.GET("/:id", m.TeamHandler.GetTeam)
		teams.DELETE("/:id", jwt, m.TeamHandler.DeleteTeam)
		teams.POST("/:id/members", jwt, m.TeamHandler.AddMember)
		teams.DELETE("/:id/members/:userId", jwt, m.TeamHandler.RemoveMember)
	}

	tournaments := r.Group("/tournaments")
	{
		tournaments.GET("", m.TournamentHandler.GetAllTournaments)
		tournaments.POST("", jwt, authMiddleware.RequireAnyRole(m.db, authModels.RoleOrganizer, authModels.RoleSuperAdmin), m.TournamentHandler.CreateTournament)
		tournaments.GET("/:id", m.TournamentHandler.GetTournament)
		tournaments.PATCH("/:id/status", jwt, m.TournamentHandler.UpdateStatus)

		tournaments.GET("/:id/registrations", m.TournamentHandler.GetRegistrations)
		tournaments.POST("/:id/registrations", jwt, m.TournamentHandler.RegisterTeam)
		tournaments.POST("/:id/registrations/:rid/approve", jwt, m.TournamentHandler.ApproveRegistration)
		tournaments.POST("/:id/registrations/:rid/reject", jwt, m.TournamentHandler.RejectRegistration)

		tournaments.GET("/:id/matches", m.MatchHandler.GetTournamentMatches)
		tournaments.POST("/:id/matches", jwt, m.MatchHandler.CreateMatch)
	}

	matches := r.Group("/matches")
	{
		matches.GET("/:id", m.MatchHandler.GetMatch)
		matches.PUT("/:id/room", jwt, m.MatchHandler.SetRoom)
		matches.POST("/:id/proofs", jwt, m.MatchHandler.AddProof)
		matches.POST("/:id/result", jwt, m.MatchHandler.RecordResult)
	}

	notifications := r.Group("/notifications", jwt)
	{
		notifications.GET("", m.NotificationHandler.GetNotifications)
		notifications.GET("/unread-count", m.NotificationHandler.GetUnreadCount)
		notifications.POST("/read-all", m.NotificationHandler.MarkAllRead)
		notifications.POST("/:id/read", m.NotificationHandler.MarkRead)
		notifications.DELETE("/:id", m.NotificationHandler.DeleteNotification)
	}

	profile := r.Group("/profile")
	{
		profile.GET("/overview", jwt, m.ProfileHandler.GetOverview)
		profile.GET("/stats", jwt, m.ProfileHandler.GetStats)
		profile.GET("/tournaments", jwt, m.ProfileHandler.GetTournaments)
		profile.GET("/achievements", jwt, m.ProfileHandler.GetAchievements)
		profile.PUT("", jwt, m.ProfileHandler.UpdateProfile)
		profile.PUT("/notifications", jwt, m.ProfileHandler.UpdateNotificationPrefs)
		profile.GET("/:username", m.ProfileHandler.GetPublicProfile)
	}

	organizer := r.Group("/organizer", jwt)
	{
		organizer.POST("/apply", m.OrganizerHandler.Apply)
		organizer.GET("/my-application", m.OrganizerHandler.MyApplication)
	}

	admin := r.Group("/admin", jwt, authMiddleware.RequireRole(m.db, authModels.RoleSuperAdmin))
	{
		admin.GET("/organizer-applications", m.OrganizerHandler.ListApplications)
		admin.POST("/organizer-applications/:id/approve", m.OrganizerHandler.ApproveApplication)
		admin.POST("/organizer-applications/:id/reject", m.OrganizerHandler.RejectApplication)
		admin.GET("/organizers", m.OrganizerHandler.ListOrganizers)
		admin.POST("/organizers/:userId/block", m.OrganizerHandler.BlockOrganizer)
	}

	r.GET("/stats", m.StatsHandler.GetStats)
}

// StartScheduler starts the cron jobs (rank snapshots, cleanups).
func (m *Module) StartScheduler() error {
	m.logger.Info().Msg("starting core module scheduler")
	return m.Scheduler.Start()
}

func (m *Module) StopScheduler() {
	m.logger.Info().Msg("stopping core module scheduler")
	m.Scheduler.Stop()
}

