package services

import (
	"errors"
	"testing"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestCreateTowerMakesOwnerCoLeader(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")

	tower, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "  Night Owls "})
	assert.Equal(t, nil, err)
	assert.Equal(t, "Night Owls", tower.Name)
	assert.Equal(t, owner.ID, tower.LeaderID)
	assert.NotEqual(t, "", tower.Code)

	var member models.TowerMember
	assert.Equal(t, nil, e.db.Where("user_id = ?", owner.ID).First(&member).Error)
	assert.Equal(t, models.TowerRoleCoLeader, member.Role)
	assert.Equal(t, true, member.Approved)

	var badges int64
	e.db.Model(&models.UserBadge{}).Where("user_id = ?", owner.ID).Count(&badges)
	assert.Equal(t, int64(1), badges)

	// TOWER_CREATED completes at once and pays 50 XP
	assert.Equal(t, 50, e.player(t, owner.ID).XP)
}

func TestCreateTowerConflicts(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	other := testutil.CreateUser(t, e.db, "other")

	_, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Night Owls"})
	assert.Equal(t, nil, err)

	_, err = e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Second"})
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = e.towers.Create(other.ID, models.CreateTowerRequest{Name: "Night Owls"})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestJoinTower(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	joiner := testutil.CreateUser(t, e.db, "joiner")
	tower, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Night Owls"})
	assert.Equal(t, nil, err)

	_, err = e.towers.Join(joiner.ID, "NOPE")
	assert.T(t, IsNotFound(err))

	member, err := e.towers.Join(joiner.ID, " "+tower.Code+" ")
	assert.Equal(t, nil, err)
	assert.Equal(t, false, member.Approved)

	_, err = e.towers.Join(joiner.ID, tower.Code)
	assert.Equal(t, KindConflict, KindOf(err))

	count, err := e.notifications.UnreadCount(owner.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), count)

	_, err = e.towers.ApproveMember(joiner.ID, tower.ID, member.ID)
	assert.T(t, errors.Is(err, authz.ErrForbidden))

	approved, err := e.towers.ApproveMember(owner.ID, tower.ID, member.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, approved.Approved)
}

func TestJoinFullTower(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	tower, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Tiny"})
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, e.db.Model(tower).Update("max_members", 1).Error)

	joiner := testutil.CreateUser(t, e.db, "joiner")
	_, err = e.towers.Join(joiner.ID, tower.Code)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestOwnerCannotLeave(t *testing.T) {
	e := newEnv(t)
	s := e.newSquad(t, "owner", "p1")

	err := e.towers.Leave(s.owner.ID, s.tower.ID)
	assert.Equal(t, KindInvalid, KindOf(err))

	assert.Equal(t, nil, e.towers.Leave(s.players[0].ID, s.tower.ID))

	var inTeam int64
	e.db.Model(&models.TeamMember{}).Where("user_id = ?", s.players[0].ID).Count(&inTeam)
	assert.Equal(t, int64(0), inTeam)
}
