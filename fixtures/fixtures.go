package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	authModels "towerhub-api/packages/auth/models"
	authServices "towerhub-api/packages/auth/services"
	authUtils "towerhub-api/packages/auth/utils"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	fixturePassword = "password123"
	towerCount      = 4
	membersPerTower = 4
)

// Fixtures builds a demo dataset through the regular services, so every
// counter, badge and notification is the one the API would produce.
type Fixtures struct {
	db          *gorm.DB
	logger      zerolog.Logger
	rng         *rand.Rand
	mobiles     int
	players     *services.PlayerService
	progression *services.ProgressionService
	towers      *services.TowerService
	teams       *services.TeamService
	tournaments *services.TournamentService
	matches     *services.MatchService
	leaderboard *services.LeaderboardService
}

func NewFixtures(db *gorm.DB, logger zerolog.Logger) *Fixtures {
	progression := services.NewProgressionService(db, logger)
	// Pas d'envoi de mails pendant la génération
	notifications := services.NewNotificationService(db, authServices.NewLogEmailService(zerolog.Nop()), logger)

	return &Fixtures{
		db:          db,
		logger:      logger,
		rng:         rand.New(rand.NewSource(42)), // #nosec G404 -- demo data only
		players:     services.NewPlayerService(db),
		progression: progression,
		towers:      services.NewTowerService(db, progression, notifications),
		teams:       services.NewTeamService(db, progression, notifications),
		tournaments: services.NewTournamentService(db, progression, notifications),
		matches:     services.NewMatchService(db, progression, notifications),
		leaderboard: services.NewLeaderboardService(db),
	}
}

// Seed inserts the badge and achievement catalog.
func (f *Fixtures) Seed() error {
	if err := f.progression.SeedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	f.logger.Info().Int("badges", len(services.DefaultBadges)).Int("achievements", len(services.DefaultAchievements)).Msg("catalog seeded")
	return nil
}

// GenerateTestData creates an admin, an organizer, four towers with one
// team each, a completed tournament and an upcoming one.
func (f *Fixtures) GenerateTestData() error {
	f.logger.Info().Msg("starting fixtures generation")

	if err := f.Seed(); err != nil {
		return err
	}

	admin, err := f.createUser("admin", "Admin", authModels.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	organizer, err := f.createUser("organizer", "Orga", authModels.RoleOrganizer)
	if err != nil {
		return fmt.Errorf("failed to create organizer: %w", err)
	}

	teams, err := f.generateTowersAndTeams()
	if err != nil {
		return fmt.Errorf("failed to generate towers: %w", err)
	}

	played, err := f.generateCompletedTournament(organizer.ID, teams)
	if err != nil {
		return fmt.Errorf("failed to generate tournament: %w", err)
	}

	if err := f.generateUpcomingTournament(organizer.ID, admin.ID, teams); err != nil {
		return fmt.Errorf("failed to generate upcoming tournament: %w", err)
	}

	snapshots, err := f.leaderboard.SnapshotRanks()
	if err != nil {
		return fmt.Errorf("failed to snapshot ranks: %w", err)
	}

	f.logger.Info().
		Int("towers", towerCount).
		Int("teams", len(teams)).
		Int("matches", played).
		Int("rank_snapshots", snapshots).
		Msg("fixtures generated")
	return nil
}

func (f *Fixtures) createUser(username, name string, roles ...string) (*authModels.User, error) {
	hashedPassword, err := authUtils.HashPassword(fixturePassword)
	if err != nil {
		return nil, err
	}
	f.mobiles++

	user := authModels.User{
		Name:     name,
		Username: username,
		Mobile:   fmt.Sprintf("+3361%07d", f.mobiles),
		Password: hashedPassword,
		Enabled:  true,
		Roles:    append(authModels.GetDefaultRoles(), roles...),
	}

	err = f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		_, err := f.players.WithDB(tx).CreatePlayer(user)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug().Str("username", username).Uint("id", user.ID).Msg("user created")
	return &user, nil
}

var towerNames = []string{"Iron Peak", "Night Owls", "Red Phoenix", "Storm Gate"}

// generateTowersAndTeams returns one team per tower with every member on it.
func (f *Fixtures) generateTowersAndTeams() ([]models.Team, error) {
	var teams []models.Team

	for i := 0; i < towerCount; i++ {
		leader, err := f.createUser(fmt.Sprintf("leader%d", i+1), fmt.Sprintf("Leader %d", i+1))
		if err != nil {
			return nil, err
		}
		tower, err := f.towers.Create(leader.ID, models.CreateTowerRequest{Name: towerNames[i]})
		if err != nil {
			return nil, err
		}

		team, err := f.teams.CreateTeam(leader.ID, tower.ID, models.CreateTeamRequest{Name: towerNames[i] + " Alpha"})
		if err != nil {
			return nil, err
		}
		if _, err := f.teams.AddMember(leader.ID, team.ID, leader.ID); err != nil {
			return nil, err
		}

		for j := 1; j < membersPerTower; j++ {
			user, err := f.createUser(fmt.Sprintf("player%d_%d", i+1, j), fmt.Sprintf("Player %d.%d", i+1, j))
			if err != nil {
				return nil, err
			}
			member, err := f.towers.Join(user.ID, tower.Code)
			if err != nil {
				return nil, err
			}
			if _, err := f.towers.ApproveMember(leader.ID, tower.ID, member.ID); err != nil {
				return nil, err
			}
			if _, err := f.teams.AddMember(leader.ID, team.ID, user.ID); err != nil {
				return nil, err
			}
		}

		full, err := f.teams.GetTeamByID(team.ID)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *full)
		f.logger.Info().Str("tower", tower.Name).Str("code", tower.Code).Msg("tower created")
	}
	return teams, nil
}

// generateCompletedTournament runs a round robin between every team.
func (f *Fixtures) generateCompletedTournament(organizerID uint, teams []models.Team) (int, error) {
	tournament, err := f.tournaments.CreateTournament(organizerID, models.CreateTournamentRequest{
		Title:         "TowerHub Open #1",
		Game:          "Free Fire",
		Description:   "Round robin, best team wins.",
		EntryFee:      0,
		MaxTeams:      8,
		MatchDateTime: time.Now().Add(-48 * time.Hour),
	})
	if err != nil {
		return 0, err
	}

	if err := f.registerAndApprove(organizerID, tournament.ID, teams); err != nil {
		return 0, err
	}
	if _, err := f.tournaments.UpdateStatus(organizerID, tournament.ID, models.TournamentLive); err != nil {
		return 0, err
	}

	played := 0
	for a := 0; a < len(teams); a++ {
		for b := a + 1; b < len(teams); b++ {
			if err := f.playMatch(organizerID, tournament.ID, teams[a], teams[b]); err != nil {
				return played, err
			}
			played++
		}
	}

	if _, err := f.tournaments.UpdateStatus(organizerID, tournament.ID, models.TournamentCompleted); err != nil {
		return played, err
	}
	return played, nil
}

func (f *Fixtures) generateUpcomingTournament(organizerID, adminID uint, teams []models.Team) error {
	tournament, err := f.tournaments.CreateTournament(organizerID, models.CreateTournamentRequest{
		Title:         "TowerHub Open #2",
		Game:          "Free Fire",
		EntryFee:      50,
		MaxTeams:      4,
		MatchDateTime: time.Now().Add(7 * 24 * time.Hour),
		OrganizerIDs:  []uint{adminID},
	})
	if err != nil {
		return err
	}

	// Inscriptions laissées en attente
	for _, team := range teams[:2] {
		leaderID, err := f.towerLeader(team.TowerID)
		if err != nil {
			return err
		}
		if _, err := f.tournaments.RegisterTeam(leaderID, tournament.ID, team.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fixtures) registerAndApprove(organizerID, tournamentID uint, teams []models.Team) error {
	for _, team := range teams {
		leaderID, err := f.towerLeader(team.TowerID)
		if err != nil {
			return err
		}
		reg, err := f.tournaments.RegisterTeam(leaderID, tournamentID, team.ID)
		if err != nil {
			return err
		}
		if _, err := f.tournaments.ApproveRegistration(organizerID, tournamentID, reg.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fixtures) playMatch(organizerID, tournamentID uint, teamA, teamB models.Team) error {
	match, err := f.matches.CreateMatch(organizerID, tournamentID, models.CreateMatchRequest{
		TeamAID: teamA.ID,
		TeamBID: teamB.ID,
		RoomID:  fmt.Sprintf("ROOM-%04d", f.rng.Intn(10000)),
	})
	if err != nil {
		return err
	}

	winner := teamA
	if f.rng.Intn(2) == 1 {
		winner = teamB
	}

	var stats []models.StatLine
	mvpGiven := false
	for _, team := range []models.Team{teamA, teamB} {
		for _, member := range team.Members {
			line := models.StatLine{
				UserID: member.UserID,
				Kills:  int64(f.rng.Intn(12)),
				Deaths: int64(f.rng.Intn(8)),
				Points: int64(20 + f.rng.Intn(60)),
			}
			if team.ID == winner.ID {
				line.Points += 40
				if !mvpGiven {
					line.MVP = true
					mvpGiven = true
				}
			}
			stats = append(stats, line)
		}
	}

	result, err := f.matches.RecordResult(organizerID, match.ID, models.MatchResultRequest{
		WinnerTeamID: winner.ID,
		Stats:        stats,
	})
	if err != nil {
		return err
	}

	f.logger.Debug().
		Uint("match", match.ID).
		Str("winner", winner.Name).
		Int("players", result.PlayersScored).
		Msg("match recorded")
	return nil
}

func (f *Fixtures) towerLeader(towerID uint) (uint, error) {
	tower, err := f.towers.GetTower(towerID)
	if err != nil {
		return 0, err
	}
	return tower.LeaderID, nil
}

// ClearAllData empties every table, children first.
func (f *Fixtures) ClearAllData() error {
	f.logger.Info().Msg("clearing all fixture data")

	all := models.All()
	tables := []interface{}{"tournament_organizers"}
	for i := len(all) - 1; i >= 0; i-- {
		tables = append(tables, all[i])
	}
	tables = append(tables, &authModels.RefreshToken{}, &authModels.User{})

	for _, table := range tables {
		var err error
		if name, ok := table.(string); ok {
			err = f.db.Exec("DELETE FROM " + name).Error
		} else {
			err = f.db.Unscoped().Where("1 = 1").Delete(table).Error
		}
		if err != nil {
			return fmt.Errorf("failed to clear table %v: %w", table, err)
		}
	}

	if f.db.Dialector.Name() == "postgres" {
		// Remise à zéro des séquences
		sequences := []string{"users", "towers", "tower_members", "teams", "team_members", "tournaments",
			"tournament_registrations", "matches", "notifications", "refresh_tokens"}
		for _, table := range sequences {
			if err := f.db.Exec(fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1", table)).Error; err != nil {
				f.logger.Warn().Err(err).Str("table", table).Msg("sequence reset failed")
			}
		}
	}

	f.logger.Info().Msg("all fixture data cleared")
	return nil
}
