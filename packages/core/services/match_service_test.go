package services

import (
	"sync"
	"testing"
	"time"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/utils"

	"github.com/bmizerany/assert"
	"gorm.io/gorm"
)

type matchSetup struct {
	admin      models.Player
	tournament *models.Tournament
	red, blue  squad
	match      *models.Match
}

func (e *env) liveMatch(t *testing.T) matchSetup {
	t.Helper()

	m := matchSetup{admin: e.newAdmin(t, "admin")}
	m.tournament = e.newTournament(t, m.admin.ID, 4)
	m.red = e.newSquad(t, "red", "r1", "r2")
	m.blue = e.newSquad(t, "blue", "b1", "b2")
	e.enter(t, m.admin.ID, m.tournament.ID, m.red)
	e.enter(t, m.admin.ID, m.tournament.ID, m.blue)

	match, err := e.matches.CreateMatch(m.admin.ID, m.tournament.ID, models.CreateMatchRequest{
		TeamAID: m.red.team.ID,
		TeamBID: m.blue.team.ID,
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	m.match = match

	if _, err := e.tournaments.UpdateStatus(m.admin.ID, m.tournament.ID, models.TournamentLive); err != nil {
		t.Fatalf("go live: %v", err)
	}
	return m
}

func TestCreateMatchRequiresApprovedTeams(t *testing.T) {
	e := newEnv(t)
	admin := e.newAdmin(t, "admin")
	tournament := e.newTournament(t, admin.ID, 4)
	red := e.newSquad(t, "red", "r1")
	blue := e.newSquad(t, "blue", "b1")
	e.enter(t, admin.ID, tournament.ID, red)

	_, err := e.matches.CreateMatch(admin.ID, tournament.ID, models.CreateMatchRequest{TeamAID: red.team.ID, TeamBID: blue.team.ID})
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = e.matches.CreateMatch(admin.ID, tournament.ID, models.CreateMatchRequest{TeamAID: red.team.ID, TeamBID: red.team.ID})
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestRecordResultUpdatesCounters(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)
	r1, r2 := m.red.players[0], m.red.players[1]
	b1 := m.blue.players[0]

	res, err := e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{
		WinnerTeamID: m.red.team.ID,
		Stats: []models.StatLine{
			{UserID: r1.ID, Kills: 12, Deaths: 3, MVP: true, Points: 120},
			{UserID: r2.ID, Kills: 6, Deaths: 5, Points: 60},
			{UserID: b1.ID, Kills: 4, Deaths: 9, Points: 40},
		},
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 4, res.PlayersScored)
	assert.T(t, res.Match.CompletedAt != nil)
	assert.Equal(t, m.red.team.ID, *res.Match.WinnerTeamID)

	p := e.player(t, r1.ID)
	assert.Equal(t, int64(120), p.PerformancePoints)
	assert.Equal(t, int64(12), p.Kills)
	assert.Equal(t, int64(3), p.Deaths)
	assert.Equal(t, int64(1), p.MatchesPlayed)
	assert.Equal(t, int64(1), p.MatchesWon)
	assert.Equal(t, int64(1), p.MvpCount)
	assert.Equal(t, utils.XPMatchPlayed+utils.XPMatchWon, p.XP)

	// b2 had no stat line but still played
	b2 := e.player(t, m.blue.players[1].ID)
	assert.Equal(t, int64(1), b2.MatchesPlayed)
	assert.Equal(t, int64(0), b2.MatchesWon)
	assert.Equal(t, int64(0), b2.PerformancePoints)
	assert.Equal(t, utils.XPMatchPlayed, b2.XP)

	var red, blue models.Tower
	e.db.First(&red, m.red.tower.ID)
	e.db.First(&blue, m.blue.tower.ID)
	assert.Equal(t, int64(180), red.TotalPoints)
	assert.Equal(t, int64(40), blue.TotalPoints)

	var reg models.TournamentRegistration
	e.db.Where("tournament_id = ? AND team_id = ?", m.tournament.ID, m.red.team.ID).First(&reg)
	assert.Equal(t, 1, reg.Wins)
	assert.Equal(t, 0, reg.Losses)

	var firstWin int64
	e.db.Model(&models.UserBadge{}).
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ? AND badges.type = ?", r1.ID, models.BadgeFirstWin).
		Count(&firstWin)
	assert.Equal(t, int64(1), firstWin)
}

func TestRecordResultOnlyOnce(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)
	req := models.MatchResultRequest{WinnerTeamID: m.blue.team.ID}

	_, err := e.matches.RecordResult(m.admin.ID, m.match.ID, req)
	assert.Equal(t, nil, err)

	_, err = e.matches.RecordResult(m.admin.ID, m.match.ID, req)
	assert.Equal(t, KindConflict, KindOf(err))

	assert.Equal(t, int64(1), e.player(t, m.blue.players[0].ID).MatchesPlayed)
}

func TestRecordResultValidation(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)

	_, err := e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{WinnerTeamID: 9999})
	assert.Equal(t, KindInvalid, KindOf(err))

	_, err = e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{
		WinnerTeamID: m.red.team.ID,
		Stats:        []models.StatLine{{UserID: m.admin.ID, Kills: 1}},
	})
	assert.Equal(t, KindInvalid, KindOf(err))

	// nothing was applied
	assert.Equal(t, int64(0), e.player(t, m.red.players[0].ID).MatchesPlayed)
}

func TestCompleteTournamentPicksWinner(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)

	_, err := e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{WinnerTeamID: m.blue.team.ID})
	assert.Equal(t, nil, err)

	done, err := e.tournaments.UpdateStatus(m.admin.ID, m.tournament.ID, models.TournamentCompleted)
	assert.Equal(t, nil, err)
	assert.Equal(t, m.blue.team.ID, *done.WinnerTeamID)

	var tower models.Tower
	e.db.First(&tower, m.blue.tower.ID)
	assert.Equal(t, 1, tower.TournamentsWon)

	winners, err := e.leaderboard.TournamentWinners(5)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(winners))
	assert.Equal(t, m.blue.team.ID, winners[0].Winners[0].Team.ID)
	assert.Equal(t, 1, winners[0].Winners[0].Position)
}

func TestClaimMatchIsGuarded(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)

	assert.Equal(t, nil, claimMatch(e.db, m.match.ID, m.red.team.ID, time.Now()))
	// a request that loaded the match before the first commit
	err := claimMatch(e.db, m.match.ID, m.blue.team.ID, time.Now())
	assert.Equal(t, KindConflict, KindOf(err))

	var match models.Match
	e.db.First(&match, m.match.ID)
	assert.Equal(t, m.red.team.ID, *match.WinnerTeamID)
}

func TestRecordResultConcurrentCallsApplyOnce(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)
	req := models.MatchResultRequest{
		WinnerTeamID: m.red.team.ID,
		Stats:        []models.StatLine{{UserID: m.red.players[0].ID, Kills: 5, Points: 50}},
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.matches.RecordResult(m.admin.ID, m.match.ID, req)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if KindOf(err) == KindConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 7, conflicts)

	p := e.player(t, m.red.players[0].ID)
	assert.Equal(t, int64(1), p.MatchesPlayed)
	assert.Equal(t, int64(1), p.MatchesWon)
	assert.Equal(t, int64(5), p.Kills)

	var tower models.Tower
	e.db.First(&tower, m.red.tower.ID)
	assert.Equal(t, int64(50), tower.TotalPoints)

	var reg models.TournamentRegistration
	e.db.Where("tournament_id = ? AND team_id = ?", m.tournament.ID, m.blue.team.ID).First(&reg)
	assert.Equal(t, 1, reg.Losses)
}

func TestRecordResultPanicRollsBack(t *testing.T) {
	e := newEnv(t)
	m := e.liveMatch(t)

	err := e.db.Callback().Update().Before("gorm:update").Register("test:fail_players", func(db *gorm.DB) {
		if db.Statement.Table == "players" {
			panic("players table unavailable")
		}
	})
	assert.Equal(t, nil, err)

	panicked := func() (recovered interface{}) {
		defer func() { recovered = recover() }()
		e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{WinnerTeamID: m.red.team.ID})
		return nil
	}()
	assert.Equal(t, "players table unavailable", panicked)
	assert.Equal(t, nil, e.db.Callback().Update().Remove("test:fail_players"))

	// the claim was rolled back with the rest
	var match models.Match
	e.db.First(&match, m.match.ID)
	assert.T(t, match.CompletedAt == nil)

	_, err = e.matches.RecordResult(m.admin.ID, m.match.ID, models.MatchResultRequest{WinnerTeamID: m.red.team.ID})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), e.player(t, m.red.players[0].ID).MatchesPlayed)
}
