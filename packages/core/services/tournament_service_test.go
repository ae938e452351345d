package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestCreateTournamentRequiresOrganizer(t *testing.T) {
	e := newEnv(t)
	player := testutil.CreateUser(t, e.db, "player")

	_, err := e.tournaments.CreateTournament(player.ID, models.CreateTournamentRequest{
		Title:         "Cup",
		Game:          "Valorant",
		MaxTeams:      8,
		MatchDateTime: time.Now(),
	})
	assert.T(t, errors.Is(err, authz.ErrForbidden))

	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 8)
	assert.Equal(t, models.TournamentUpcoming, tournament.Status)

	loaded, err := e.tournaments.GetTournamentByID(tournament.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(loaded.Organizers))
	assert.Equal(t, admin.ID, loaded.Organizers[0].ID)
}

func TestRegisterTeamCapacity(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 2)
	red := e.newSquad(t, "red", "r1")
	blue := e.newSquad(t, "blue", "b1")
	green := e.newSquad(t, "green", "g1")

	_, err := e.tournaments.RegisterTeam(red.owner.ID, tournament.ID, red.team.ID)
	assert.Equal(t, nil, err)
	_, err = e.tournaments.RegisterTeam(red.owner.ID, tournament.ID, red.team.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	// only the tower staff may register its team
	_, err = e.tournaments.RegisterTeam(red.owner.ID, tournament.ID, blue.team.ID)
	assert.T(t, errors.Is(err, authz.ErrForbidden))

	_, err = e.tournaments.RegisterTeam(blue.owner.ID, tournament.ID, blue.team.ID)
	assert.Equal(t, nil, err)

	_, err = e.tournaments.RegisterTeam(green.owner.ID, tournament.ID, green.team.ID)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "tournament is full", err.Error())
}

func TestApproveRegistration(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 4)
	red := e.newSquad(t, "red", "r1", "r2")

	reg, err := e.tournaments.RegisterTeam(red.owner.ID, tournament.ID, red.team.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.RegistrationPending, reg.Status)

	_, err = e.tournaments.ApproveRegistration(red.owner.ID, tournament.ID, reg.ID)
	assert.T(t, errors.Is(err, authz.ErrForbidden))

	reg, err = e.tournaments.ApproveRegistration(admin.ID, tournament.ID, reg.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.RegistrationApproved, reg.Status)

	_, err = e.tournaments.ApproveRegistration(admin.ID, tournament.ID, reg.ID)
	assert.Equal(t, KindInvalid, KindOf(err))

	var tower models.Tower
	e.db.First(&tower, red.tower.ID)
	assert.Equal(t, 1, tower.TournamentsParticipated)

	for _, p := range red.players {
		var ua models.UserAchievement
		err := e.db.Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
			Where("user_achievements.user_id = ? AND achievements.type = ?", p.ID, models.AchievementTournamentParticipation).
			First(&ua).Error
		assert.Equal(t, nil, err)
		assert.Equal(t, 1, ua.Progress)
	}
}

func TestStatusTransitions(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 4)

	_, err := e.tournaments.UpdateStatus(admin.ID, tournament.ID, models.TournamentCompleted)
	assert.Equal(t, KindInvalid, KindOf(err))

	updated, err := e.tournaments.UpdateStatus(admin.ID, tournament.ID, models.TournamentLive)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.TournamentLive, updated.Status)

	updated, err = e.tournaments.UpdateStatus(admin.ID, tournament.ID, models.TournamentCompleted)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.TournamentCompleted, updated.Status)
	assert.T(t, updated.CompletedAt != nil)
	// nobody registered, so nobody won
	assert.T(t, updated.WinnerTeamID == nil)

	_, err = e.tournaments.UpdateStatus(admin.ID, tournament.ID, models.TournamentCancelled)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestGetAllTournamentsFiltersStatus(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	first := e.newTournament(t, admin.ID, 4)
	e.newTournament(t, admin.ID, 4)
	_, err := e.tournaments.UpdateStatus(admin.ID, first.ID, models.TournamentLive)
	assert.Equal(t, nil, err)

	res, err := e.tournaments.GetAllTournaments(1, 10, "live")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, first.ID, res.Data[0].ID)

	_, err = e.tournaments.GetAllTournaments(1, 10, "paused")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestRegistrationDecidedOnce(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 4)
	red := e.newSquad(t, "red", "r1")

	reg, err := e.tournaments.RegisterTeam(red.owner.ID, tournament.ID, red.team.ID)
	assert.Equal(t, nil, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.tournaments.ApproveRegistration(admin.ID, tournament.ID, reg.ID); err == nil {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, approved)

	var tower models.Tower
	e.db.First(&tower, red.tower.ID)
	assert.Equal(t, 1, tower.TournamentsParticipated)

	// a stale PENDING read cannot flip the decision
	err = decideRegistration(e.db, reg.ID, map[string]interface{}{"status": models.RegistrationRejected})
	assert.Equal(t, KindConflict, KindOf(err))

	var stored models.TournamentRegistration
	e.db.First(&stored, reg.ID)
	assert.Equal(t, models.RegistrationApproved, stored.Status)
}
