package authz

import (
	"errors"
	"testing"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestTowerAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	co := testutil.CreateUser(t, db, "co")
	member := testutil.CreateUser(t, db, "member")

	tower := models.Tower{Name: "Night Owls", Code: "ABC234", LeaderID: owner.ID, MaxTeams: 10, MaxMembers: 50}
	assert.Equal(t, nil, db.Create(&tower).Error)
	assert.Equal(t, nil, db.Create(&models.TowerMember{TowerID: tower.ID, UserID: co.ID, Role: models.TowerRoleCoLeader, Approved: true}).Error)
	assert.Equal(t, nil, db.Create(&models.TowerMember{TowerID: tower.ID, UserID: member.ID, Role: models.TowerRoleMember, Approved: true}).Error)

	a := NewAuthorizer(db)
	for _, c := range []struct {
		userID uint
		want   bool
	}{
		{owner.ID, true},
		{co.ID, true},
		{member.ID, false},
	} {
		ok, err := a.Allowed(c.userID, TowerAdmin(tower.ID))
		assert.Equal(t, nil, err)
		assert.Equal(t, c.want, ok)
	}

	ok, err := a.Allowed(owner.ID, TowerAdmin(tower.ID+1))
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)
}

func TestRequireNamesMissingCapability(t *testing.T) {
	db := testutil.NewDB(t)
	player := testutil.CreateUser(t, db, "player")
	admin := testutil.CreateUser(t, db, "admin", authModels.RolePlayer, authModels.RoleSuperAdmin)

	a := NewAuthorizer(db)
	err := a.Require(player.ID, TournamentStaff(1))
	assert.T(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "forbidden: requires tournament organizer or super admin", err.Error())

	assert.Equal(t, nil, a.Require(admin.ID, TournamentStaff(1)))
	assert.Equal(t, nil, a.Require(admin.ID, AnyOf(IsOrganizer{}, IsSuperAdmin{})))
}

func TestTournamentOrganizer(t *testing.T) {
	db := testutil.NewDB(t)
	org := testutil.CreateUser(t, db, "org", authModels.RolePlayer, authModels.RoleOrganizer)
	other := testutil.CreateUser(t, db, "other", authModels.RolePlayer, authModels.RoleOrganizer)

	tournament := models.Tournament{Title: "Cup", Game: "Valorant", MaxTeams: 8, Organizers: []models.Player{org}}
	assert.Equal(t, nil, db.Omit("Organizers.*").Create(&tournament).Error)

	a := NewAuthorizer(db)
	ok, err := a.Allowed(org.ID, IsOrganizer{TournamentID: tournament.ID})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)

	ok, err = a.Allowed(other.ID, IsOrganizer{TournamentID: tournament.ID})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)

	// the platform role is enough to create tournaments
	ok, err = a.Allowed(other.ID, IsOrganizer{})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
}

func TestDisabledUserLosesRoles(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin", authModels.RolePlayer, authModels.RoleSuperAdmin)
	assert.Equal(t, nil, db.Model(&authModels.User{}).Where("id = ?", admin.ID).Update("enabled", false).Error)

	ok, err := NewAuthorizer(db).Allowed(admin.ID, IsSuperAdmin{})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)
}
