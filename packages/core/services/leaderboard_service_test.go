package services

import (
	"errors"
	"testing"
	"time"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestPlayersLeaderboardOrder(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")
	dave := testutil.CreateUser(t, e.db, "dave")
	testutil.SetStats(t, e.db, alice.ID, 300, 30, 10, 10, 7, 2)
	testutil.SetStats(t, e.db, bob.ID, 500, 50, 0, 10, 9, 4)
	testutil.SetStats(t, e.db, carol.ID, 300, 12, 12, 8, 4, 0)
	testutil.SetStats(t, e.db, dave.ID, 100, 5, 20, 6, 1, 0)

	q, err := NewPageQuery(0, 0, "")
	assert.Equal(t, nil, err)
	page, err := e.leaderboard.Players(q)
	assert.Equal(t, nil, err)

	assert.Equal(t, int64(4), page.Pagination.Total)
	assert.Equal(t, false, page.Pagination.HasMore)
	assert.Equal(t, 4, len(page.Leaderboard))

	got := []uint{}
	for i, entry := range page.Leaderboard {
		assert.Equal(t, int64(i+1), entry.Rank)
		got = append(got, entry.ID)
	}
	// alice and carol tie, lower id first
	assert.Equal(t, []uint{bob.ID, alice.ID, carol.ID, dave.ID}, got)

	// no deaths: the ratio is the raw kill count
	assert.Equal(t, 50.0, page.Leaderboard[0].KDRatio)
	assert.Equal(t, 90.0, page.Leaderboard[0].WinRate)
	assert.Equal(t, 3.0, page.Leaderboard[1].KDRatio)
}

func TestPlayersLeaderboardOffset(t *testing.T) {
	e := newEnv(t)
	for i, name := range []string{"p1", "p2", "p3", "p4", "p5"} {
		p := testutil.CreateUser(t, e.db, name)
		testutil.SetStats(t, e.db, p.ID, int64(100-i*10), 0, 0, 0, 0, 0)
	}

	q, err := NewPageQuery(2, 2, "allTime")
	assert.Equal(t, nil, err)
	page, err := e.leaderboard.Players(q)
	assert.Equal(t, nil, err)

	assert.Equal(t, 2, len(page.Leaderboard))
	assert.Equal(t, int64(3), page.Leaderboard[0].Rank)
	assert.Equal(t, "p3", page.Leaderboard[0].Username)
	assert.Equal(t, int64(4), page.Leaderboard[1].Rank)
	assert.Equal(t, true, page.Pagination.HasMore)
	assert.Equal(t, int64(5), page.Pagination.Total)
}

func TestNewPageQueryRejectsBadInput(t *testing.T) {
	_, err := NewPageQuery(-1, 0, "")
	assert.T(t, errors.Is(err, ranking.ErrInvalidArgument))

	_, err = NewPageQuery(10, 0, "decade")
	assert.T(t, errors.Is(err, ranking.ErrInvalidArgument))
}

func TestComparePlayers(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	testutil.SetStats(t, e.db, alice.ID, 200, 40, 10, 10, 5, 1)
	testutil.SetStats(t, e.db, bob.ID, 400, 20, 10, 10, 8, 3)

	cmp, err := e.leaderboard.Compare([]uint{alice.ID, bob.ID, alice.ID})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(cmp.Players))
	assert.Equal(t, alice.ID, cmp.Players[0].ID)
	assert.Equal(t, int64(2), cmp.Players[0].Rank)
	assert.Equal(t, int64(1), cmp.Players[1].Rank)
	assert.Equal(t, int64(400), cmp.Comparison.Highest.PerformancePoints)
	assert.Equal(t, 4.0, cmp.Comparison.Highest.KDRatio)
	assert.Equal(t, int64(3), cmp.Comparison.Highest.MvpCount)
	assert.Equal(t, int64(2), cmp.Comparison.Lowest.Rank)
}

func TestCompareErrors(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")

	_, err := e.leaderboard.Compare([]uint{alice.ID, alice.ID})
	assert.T(t, errors.Is(err, ranking.ErrInvalidArgument))

	_, err = e.leaderboard.Compare([]uint{alice.ID, 9999})
	assert.T(t, IsNotFound(err))
}

func TestSnapshotRanksAndHistory(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")
	testutil.SetStats(t, e.db, alice.ID, 100, 0, 0, 0, 0, 0)
	testutil.SetStats(t, e.db, bob.ID, 100, 0, 0, 0, 0, 0)
	testutil.SetStats(t, e.db, carol.ID, 300, 0, 0, 0, 0, 0)

	n, err := e.leaderboard.SnapshotRanks()
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, n)

	testutil.SetStats(t, e.db, bob.ID, 500, 0, 0, 0, 0, 0)

	history, err := e.leaderboard.RankHistory(bob.ID, ranking.PeriodMonth)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), history.CurrentRank)
	assert.Equal(t, 2, len(history.History))
	// bob tied with alice behind carol when the snapshot was taken
	assert.Equal(t, int64(2), history.History[0].Rank)
	assert.Equal(t, int64(100), history.History[0].Points)
	assert.Equal(t, int64(1), history.History[1].Rank)

	_, err = e.leaderboard.RankHistory(4242, ranking.PeriodAllTime)
	assert.T(t, IsNotFound(err))
}

func backdate(t *testing.T, e *env, model interface{}, id uint, age time.Duration) {
	t.Helper()
	if err := e.db.Model(model).Where("id = ?", id).UpdateColumn("created_at", time.Now().Add(-age)).Error; err != nil {
		t.Fatalf("backdate %d: %v", id, err)
	}
}

func TestPeriodWindowAppliesToPageAndTotal(t *testing.T) {
	e := newEnv(t)
	veteran := testutil.CreateUser(t, e.db, "veteran")
	rookie := testutil.CreateUser(t, e.db, "rookie")
	newcomer := testutil.CreateUser(t, e.db, "newcomer")
	testutil.SetStats(t, e.db, veteran.ID, 900, 0, 0, 0, 0, 0)
	testutil.SetStats(t, e.db, rookie.ID, 200, 0, 0, 0, 0, 0)
	testutil.SetStats(t, e.db, newcomer.ID, 100, 0, 0, 0, 0, 0)
	backdate(t, e, &models.Player{}, veteran.ID, 10*24*time.Hour)

	q, err := NewPageQuery(0, 0, "week")
	assert.Equal(t, nil, err)
	page, err := e.leaderboard.Players(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, ranking.PeriodWeek, page.Period)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, len(page.Leaderboard))
	assert.Equal(t, rookie.ID, page.Leaderboard[0].ID)
	assert.Equal(t, int64(1), page.Leaderboard[0].Rank)

	q, _ = NewPageQuery(0, 0, "month")
	page, err = e.leaderboard.Players(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, veteran.ID, page.Leaderboard[0].ID)

	// the window only filters listings, absolute rank stays global
	details, err := e.leaderboard.PlayerDetails(rookie.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), details.Rank)
}

func TestTeamsLeaderboardFollowsMembers(t *testing.T) {
	e := newEnv(t)
	red := e.newSquad(t, "red", "r1")
	blue := e.newSquad(t, "blue", "b1", "b2")
	testutil.SetStats(t, e.db, red.players[0].ID, 10, 4, 2, 0, 0, 0)
	testutil.SetStats(t, e.db, blue.players[0].ID, 30, 6, 3, 0, 0, 1)
	testutil.SetStats(t, e.db, blue.players[1].ID, 20, 2, 1, 0, 0, 0)

	q, _ := NewPageQuery(0, 0, "")
	page, err := e.leaderboard.Teams(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, len(page.Leaderboard))

	top := page.Leaderboard[0]
	assert.Equal(t, blue.team.ID, top.ID)
	assert.Equal(t, int64(1), top.Rank)
	assert.Equal(t, int64(50), top.TotalPoints)
	assert.Equal(t, 2, top.MemberCount)
	assert.Equal(t, int64(8), top.TotalKills)
	assert.Equal(t, int64(1), top.TotalMVPs)
	assert.Equal(t, 2, len(top.Members))
	assert.Equal(t, blue.tower.ID, top.Tower.ID)
	assert.Equal(t, red.team.ID, page.Leaderboard[1].ID)
	assert.Equal(t, int64(10), page.Leaderboard[1].TotalPoints)

	// no stored team score: the next read follows the members
	testutil.SetStats(t, e.db, red.players[0].ID, 80, 4, 2, 0, 0, 0)
	page, err = e.leaderboard.Teams(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, red.team.ID, page.Leaderboard[0].ID)
	assert.Equal(t, int64(80), page.Leaderboard[0].TotalPoints)

	q, _ = NewPageQuery(1, 1, "")
	page, err = e.leaderboard.Teams(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(page.Leaderboard))
	assert.Equal(t, blue.team.ID, page.Leaderboard[0].ID)
	assert.Equal(t, int64(2), page.Leaderboard[0].Rank)
}

func TestTowersLeaderboard(t *testing.T) {
	e := newEnv(t)
	red := e.newSquad(t, "red", "r1")
	blue := e.newSquad(t, "blue", "b1", "b2")
	e.db.Model(&models.Tower{}).Where("id = ?", red.tower.ID).UpdateColumn("total_points", 40)
	e.db.Model(&models.Tower{}).Where("id = ?", blue.tower.ID).UpdateColumn("total_points", 90)

	q, _ := NewPageQuery(0, 0, "")
	page, err := e.leaderboard.Towers(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(2), page.Pagination.Total)

	top := page.Leaderboard[0]
	assert.Equal(t, blue.tower.ID, top.ID)
	assert.Equal(t, int64(1), top.Rank)
	assert.Equal(t, int64(90), top.TotalPoints)
	// owner plus two approved players
	assert.Equal(t, int64(3), top.TotalMembers)
	assert.Equal(t, int64(1), top.TotalTeams)
	assert.Equal(t, blue.owner.ID, top.Leader.ID)
	assert.Equal(t, red.tower.ID, page.Leaderboard[1].ID)
	assert.Equal(t, int64(2), page.Leaderboard[1].TotalMembers)

	backdate(t, e, &models.Tower{}, blue.tower.ID, 40*24*time.Hour)
	q, _ = NewPageQuery(0, 0, "month")
	page, err = e.leaderboard.Towers(q)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, red.tower.ID, page.Leaderboard[0].ID)
	assert.Equal(t, int64(1), page.Leaderboard[0].Rank)
}

func TestPlayerDetailsRankMatchesCompare(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")
	testutil.SetStats(t, e.db, alice.ID, 200, 10, 5, 4, 1, 0)
	testutil.SetStats(t, e.db, bob.ID, 200, 0, 0, 0, 0, 0)
	testutil.SetStats(t, e.db, carol.ID, 300, 0, 0, 0, 0, 0)

	cmp, err := e.leaderboard.Compare([]uint{alice.ID, bob.ID})
	assert.Equal(t, nil, err)

	for _, entry := range cmp.Players {
		details, err := e.leaderboard.PlayerDetails(entry.ID)
		assert.Equal(t, nil, err)
		assert.Equal(t, int64(2), details.Rank)
		assert.Equal(t, entry.Rank, details.Rank)
	}

	details, err := e.leaderboard.PlayerDetails(alice.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2.0, details.KDRatio)
	assert.Equal(t, 25.0, details.WinRate)
	assert.Equal(t, 0, len(details.Teams))
	assert.T(t, details.Tower == nil)

	_, err = e.leaderboard.PlayerDetails(9999)
	assert.T(t, IsNotFound(err))
}
