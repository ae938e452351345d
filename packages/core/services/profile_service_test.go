package services

import (
	"testing"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func newProfileService(e *env) *ProfileService {
	return NewProfileService(e.db, e.leaderboard, NewPlayerService(e.db))
}

func TestProfileOverview(t *testing.T) {
	e := newEnv(t)
	s := e.newSquad(t, "owner", "p1")
	profiles := newProfileService(e)
	testutil.SetStats(t, e.db, s.players[0].ID, 250, 20, 10, 4, 3, 1)

	overview, err := profiles.Overview(s.players[0].ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), overview.Rank)
	assert.Equal(t, 2.0, overview.KDRatio)
	assert.Equal(t, 75.0, overview.WinRate)
	assert.Equal(t, 100, overview.XPForNextLevel)
	assert.Equal(t, s.tower.ID, overview.Tower.ID)
	assert.Equal(t, 1, len(overview.Teams))
	// join approval and team membership
	assert.Equal(t, int64(2), overview.UnreadNotifications)

	owner, err := profiles.Overview(s.owner.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, models.TowerRoleOwner, owner.TowerRole)

	_, err = profiles.Overview(9999)
	assert.T(t, IsNotFound(err))
}

func TestProfileAchievementsListsCatalog(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	_, err := e.towers.Create(owner.ID, models.CreateTowerRequest{Name: "Night Owls"})
	assert.Equal(t, nil, err)

	res, err := newProfileService(e).Achievements(owner.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, len(DefaultAchievements), len(res.Achievements))
	assert.Equal(t, 1, len(res.Badges))
	assert.Equal(t, models.BadgeTowerOwner, res.Badges[0].Badge.Type)

	completed := 0
	for _, a := range res.Achievements {
		if a.Completed {
			completed++
			assert.Equal(t, models.AchievementTowerCreated, a.Achievement.Type)
		}
	}
	assert.Equal(t, 1, completed)
}

func TestUpdateProfileSyncsPlayer(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	profiles := newProfileService(e)

	name, avatar := "Alice Liddell", "https://cdn.example.com/alice.png"
	user, err := profiles.UpdateProfile(alice.ID, models.UpdateProfileRequest{Name: &name, AvatarURL: &avatar})
	assert.Equal(t, nil, err)
	assert.Equal(t, name, user.Name)

	p := e.player(t, alice.ID)
	assert.Equal(t, name, p.Name)
	assert.Equal(t, avatar, p.AvatarURL)

	off := false
	user, err = profiles.UpdateNotificationPrefs(alice.ID, models.UpdateNotificationPrefsRequest{NotifyTeams: &off})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, user.NotifyTeams)
	assert.Equal(t, true, user.NotifyTowers)
}

func TestPublicProfile(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	testutil.SetStats(t, e.db, alice.ID, 120, 0, 0, 0, 0, 0)

	public, err := newProfileService(e).PublicProfile("alice")
	assert.Equal(t, nil, err)
	assert.Equal(t, "alice", public.Username)
	assert.Equal(t, int64(120), public.Stats.Player.PerformancePoints)
	assert.Equal(t, int64(1), public.Stats.Rank)

	_, err = newProfileService(e).PublicProfile("nobody")
	assert.T(t, IsNotFound(err))
}
