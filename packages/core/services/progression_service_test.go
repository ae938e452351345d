package services

import (
	"testing"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, nil, e.progression.SeedCatalog())

	var badges, achievements int64
	e.db.Model(&models.Badge{}).Count(&badges)
	e.db.Model(&models.Achievement{}).Count(&achievements)
	assert.Equal(t, int64(len(DefaultBadges)), badges)
	assert.Equal(t, int64(len(DefaultAchievements)), achievements)
}

func TestAddXPLevelsUp(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateUser(t, e.db, "alice")

	res, err := e.progression.AddXP(p.ID, 90)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, false, res.LeveledUp)

	// 90 + 350: 100 for level 1, 200 for level 2, 140 left at level 3
	res, err = e.progression.AddXP(p.ID, 350)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 140, res.XP)
	assert.Equal(t, true, res.LeveledUp)

	stored := e.player(t, p.ID)
	assert.Equal(t, 3, stored.Level)
	assert.Equal(t, 140, stored.XP)

	_, err = e.progression.AddXP(9999, 10)
	assert.T(t, IsNotFound(err))
}

func TestAwardBadgeOnce(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateUser(t, e.db, "alice")

	awarded, err := e.progression.AwardBadge(p.ID, models.BadgeVeteran)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, awarded)

	awarded, err = e.progression.AwardBadge(p.ID, models.BadgeVeteran)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, awarded)

	_, err = e.progression.AwardBadge(p.ID, "UNKNOWN")
	assert.T(t, IsNotFound(err))
}

func TestAchievementCompletesOnce(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateUser(t, e.db, "alice")

	// TOURNAMENT_WIN: target 5, 250 XP
	ua, err := e.progression.UpdateAchievement(p.ID, models.AchievementTournamentWin, 3)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, ua.Progress)
	assert.Equal(t, false, ua.Completed)

	ua, err = e.progression.UpdateAchievement(p.ID, models.AchievementTournamentWin, 4)
	assert.Equal(t, nil, err)
	assert.Equal(t, 5, ua.Progress)
	assert.Equal(t, true, ua.Completed)
	assert.T(t, ua.CompletedAt != nil)

	ua, err = e.progression.UpdateAchievement(p.ID, models.AchievementTournamentWin, 1)
	assert.Equal(t, nil, err)
	assert.Equal(t, 5, ua.Progress)

	// 250 XP paid once: 100 spent on level 1, 150 left at level 2
	stored := e.player(t, p.ID)
	assert.Equal(t, 2, stored.Level)
	assert.Equal(t, 150, stored.XP)
}

func TestCheckMatchMilestones(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreateUser(t, e.db, "alice")
	testutil.SetStats(t, e.db, p.ID, 0, SharpshooterKills, 10, VeteranMatches, 1, 0)

	earned, err := e.progression.CheckMatchMilestones(e.player(t, p.ID))
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{models.BadgeFirstWin, models.BadgeVeteran, models.BadgeSharpshooter}, earned)

	earned, err = e.progression.CheckMatchMilestones(e.player(t, p.ID))
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(earned))
}
