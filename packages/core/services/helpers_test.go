package services

import (
	"sync"
	"testing"
	"time"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type sentMail struct {
	To      string
	Subject string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type env struct {
	db            *gorm.DB
	mailer        *recordingMailer
	progression   *ProgressionService
	notifications *NotificationService
	leaderboard   *LeaderboardService
	towers        *TowerService
	teams         *TeamService
	tournaments   *TournamentService
	matches       *MatchService
	organizers    *OrganizerService
	cleanup       *CleanupService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zerolog.Nop()
	mailer := &recordingMailer{}

	progression := NewProgressionService(db, logger)
	if err := progression.SeedCatalog(); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	notifications := NewNotificationService(db, mailer, logger)

	return &env{
		db:            db,
		mailer:        mailer,
		progression:   progression,
		notifications: notifications,
		leaderboard:   NewLeaderboardService(db),
		towers:        NewTowerService(db, progression, notifications),
		teams:         NewTeamService(db, progression, notifications),
		tournaments:   NewTournamentService(db, progression, notifications),
		matches:       NewMatchService(db, progression, notifications),
		organizers:    NewOrganizerService(db, progression, notifications),
		cleanup:       NewCleanupService(db, notifications, logger),
	}
}

type squad struct {
	owner   models.Player
	tower   *models.Tower
	team    *models.Team
	players []models.Player
}

// newSquad creates a tower owned by owner with one team holding the
// given players.
func (e *env) newSquad(t *testing.T, owner string, players ...string) squad {
	t.Helper()

	s := squad{owner: testutil.CreateUser(t, e.db, owner)}
	tower, err := e.towers.Create(s.owner.ID, models.CreateTowerRequest{Name: owner + " tower"})
	if err != nil {
		t.Fatalf("create tower: %v", err)
	}
	s.tower = tower

	team, err := e.teams.CreateTeam(s.owner.ID, tower.ID, models.CreateTeamRequest{Name: owner + " alpha"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	s.team = team

	for _, username := range players {
		p := testutil.CreateUser(t, e.db, username)
		member, err := e.towers.Join(p.ID, tower.Code)
		if err != nil {
			t.Fatalf("join %s: %v", username, err)
		}
		if _, err := e.towers.ApproveMember(s.owner.ID, tower.ID, member.ID); err != nil {
			t.Fatalf("approve %s: %v", username, err)
		}
		if _, err := e.teams.AddMember(s.owner.ID, team.ID, p.ID); err != nil {
			t.Fatalf("add %s to team: %v", username, err)
		}
		s.players = append(s.players, p)
	}
	return s
}

func (e *env) newAdmin(t *testing.T, username string) models.Player {
	t.Helper()
	return testutil.CreateUser(t, e.db, username, authModels.RolePlayer, authModels.RoleSuperAdmin)
}

func (e *env) newTournament(t *testing.T, adminID uint, maxTeams int) *models.Tournament {
	t.Helper()

	tournament, err := e.tournaments.CreateTournament(adminID, models.CreateTournamentRequest{
		Title:         "Friday Cup",
		Game:          "Valorant",
		MaxTeams:      maxTeams,
		MatchDateTime: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tournament
}

// enter registers and approves the squad's team.
func (e *env) enter(t *testing.T, adminID, tournamentID uint, s squad) *models.TournamentRegistration {
	t.Helper()

	reg, err := e.tournaments.RegisterTeam(s.owner.ID, tournamentID, s.team.ID)
	if err != nil {
		t.Fatalf("register %s: %v", s.team.Name, err)
	}
	reg, err = e.tournaments.ApproveRegistration(adminID, tournamentID, reg.ID)
	if err != nil {
		t.Fatalf("approve %s: %v", s.team.Name, err)
	}
	return reg
}

func (e *env) player(t *testing.T, id uint) models.Player {
	t.Helper()

	var p models.Player
	if err := e.db.First(&p, id).Error; err != nil {
		t.Fatalf("load player %d: %v", id, err)
	}
	return p
}
