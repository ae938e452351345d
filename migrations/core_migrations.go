package migrations

import (
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_03_000000_create_players_table",
			Up: func(db *gorm.DB) error {
				if err := db.AutoMigrate(&models.Player{}); err != nil {
					return err
				}
				// Ordre du classement joueurs
				return db.Exec(`CREATE INDEX IF NOT EXISTS idx_players_ranking ON players (performance_points DESC, matches_won DESC, id ASC)`).Error
			},
			Down: dropTables(&models.Player{}),
		},
		{
			Name: "2025_01_04_000000_create_towers_tables",
			Up:   createTables(&models.Tower{}, &models.TowerMember{}, &models.TowerAnnouncement{}),
			Down: dropTables(&models.Tower{}, &models.TowerMember{}, &models.TowerAnnouncement{}),
		},
		{
			Name: "2025_01_05_000000_create_teams_tables",
			Up:   createTables(&models.Team{}, &models.TeamMember{}),
			Down: dropTables(&models.Team{}, &models.TeamMember{}),
		},
		{
			Name: "2025_01_06_000000_create_tournaments_tables",
			Up:   createTables(&models.Tournament{}, &models.TournamentRegistration{}),
			Down: func(db *gorm.DB) error {
				if err := db.Migrator().DropTable("tournament_organizers"); err != nil {
					return err
				}
				return dropTables(&models.Tournament{}, &models.TournamentRegistration{})(db)
			},
		},
		{
			Name: "2025_01_07_000000_create_matches_tables",
			Up:   createTables(&models.Match{}, &models.Proof{}),
			Down: dropTables(&models.Match{}, &models.Proof{}),
		},
		{
			Name: "2025_01_08_000000_create_notifications_table",
			Up:   createTables(&models.Notification{}),
			Down: dropTables(&models.Notification{}),
		},
		{
			Name: "2025_01_09_000000_create_organizer_applications_table",
			Up:   createTables(&models.OrganizerApplication{}),
			Down: dropTables(&models.OrganizerApplication{}),
		},
		{
			Name: "2025_01_10_000000_create_progression_tables",
			Up:   createTables(&models.Badge{}, &models.UserBadge{}, &models.Achievement{}, &models.UserAchievement{}),
			Down: dropTables(&models.Badge{}, &models.UserBadge{}, &models.Achievement{}, &models.UserAchievement{}),
		},
		{
			Name: "2025_01_11_000000_create_rank_snapshots_table",
			Up:   createTables(&models.RankSnapshot{}),
			Down: dropTables(&models.RankSnapshot{}),
		},
	}
}
