package services

import (
	"errors"
	"testing"
	"time"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestOrganizerApplicationFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	alice := testutil.CreateUser(t, e.db, "alice")
	req := models.OrganizerApplyRequest{Reason: "  I run weekly scrims for my city  "}

	app, err := e.organizers.Apply(alice.ID, req)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, "I run weekly scrims for my city", app.Reason)

	_, err = e.organizers.Apply(alice.ID, req)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = e.organizers.Approve(alice.ID, app.ID)
	assert.T(t, errors.Is(err, authz.ErrForbidden))

	approved, err := e.organizers.Approve(admin.ID, app.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.ApplicationApproved, approved.Status)
	assert.Equal(t, admin.ID, *approved.ReviewedBy)

	var user authModels.User
	e.db.First(&user, alice.ID)
	assert.T(t, user.HasRole(authModels.RoleOrganizer))

	ok, err := authz.NewAuthorizer(e.db).Allowed(alice.ID, authz.IsOrganizer{})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)

	_, err = e.organizers.Apply(alice.ID, req)
	assert.Equal(t, KindConflict, KindOf(err))

	organizers, err := e.organizers.ListOrganizers()
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(organizers))
	assert.Equal(t, alice.ID, organizers[0].ID)

	blocked, err := e.organizers.Block(admin.ID, alice.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, blocked.HasRole(authModels.RoleOrganizer))

	_, err = e.organizers.Block(admin.ID, alice.ID)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestRejectedApplicantMayReapply(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	alice := testutil.CreateUser(t, e.db, "alice")

	app, err := e.organizers.Apply(alice.ID, models.OrganizerApplyRequest{Reason: "first attempt at this"})
	assert.Equal(t, nil, err)
	_, err = e.organizers.Reject(admin.ID, app.ID)
	assert.Equal(t, nil, err)

	_, err = e.organizers.Reject(admin.ID, app.ID)
	assert.Equal(t, KindInvalid, KindOf(err))

	again, err := e.organizers.Apply(alice.ID, models.OrganizerApplyRequest{Reason: "second attempt, with more"})
	assert.Equal(t, nil, err)
	assert.Equal(t, app.ID, again.ID)
	assert.Equal(t, models.ApplicationPending, again.Status)

	pending, err := e.organizers.ListApplications("pending")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(pending))
}

func TestCleanupRejectsStaleRegistrations(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 4)
	red := e.newSquad(t, "red", "r1")
	blue := e.newSquad(t, "blue", "b1")
	e.enter(t, admin.ID, tournament.ID, red)
	_, err := e.tournaments.RegisterTeam(blue.owner.ID, tournament.ID, blue.team.ID)
	assert.Equal(t, nil, err)

	count, err := e.cleanup.StaleRegistrationsCount()
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), count)

	_, err = e.tournaments.UpdateStatus(admin.ID, tournament.ID, models.TournamentLive)
	assert.Equal(t, nil, err)

	count, err = e.cleanup.StaleRegistrationsCount()
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), count)

	rejected, err := e.cleanup.RejectStaleRegistrations()
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), rejected)

	var reg models.TournamentRegistration
	e.db.Where("team_id = ?", blue.team.ID).First(&reg)
	assert.Equal(t, models.RegistrationRejected, reg.Status)
}

func TestCleanupExpiresJoinRequests(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	late := testutil.CreateUser(t, e.db, "late")
	fresh := testutil.CreateUser(t, e.db, "fresh")
	tower, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Night Owls"})
	assert.Equal(t, nil, err)

	old, err := e.towers.Join(late.ID, tower.Code)
	assert.Equal(t, nil, err)
	_, err = e.towers.Join(fresh.ID, tower.Code)
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, e.db.Model(old).Update("joined_at", time.Now().Add(-2*JoinRequestTTL)).Error)

	n, err := e.cleanup.ExpireJoinRequests(JoinRequestTTL)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), n)

	var left int64
	e.db.Model(&models.TowerMember{}).Where("tower_id = ?", tower.ID).Count(&left)
	assert.Equal(t, int64(2), left)
}
