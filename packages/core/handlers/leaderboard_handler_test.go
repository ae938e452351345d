package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"
	"towerhub-api/packages/core/services"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLeaderboardRouter(t *testing.T) (*gin.Engine, []models.Player) {
	t.Helper()

	db := testutil.NewDB(t)
	var players []models.Player
	for i, name := range []string{"alice", "bob", "carol"} {
		p := testutil.CreateUser(t, db, name)
		testutil.SetStats(t, db, p.ID, int64(300-i*100), int64(10*(i+1)), 5, 10, 5, 0)
		players = append(players, p)
	}

	h := NewLeaderboardHandler(services.NewLeaderboardService(db))
	r := gin.New()
	r.GET("/leaderboard/players", h.GetPlayers)
	r.GET("/leaderboard/compare", h.ComparePlayers)
	r.GET("/leaderboard/players/:id/rank-history", h.GetRankHistory)
	return r, players
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetPlayersPage(t *testing.T) {
	r, players := newLeaderboardRouter(t)

	w := get(r, "/leaderboard/players?limit=2&offset=1")
	assert.Equal(t, http.StatusOK, w.Code)

	var page models.LeaderboardPage[models.PlayerLeaderboardEntry]
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, len(page.Leaderboard))
	assert.Equal(t, int64(2), page.Leaderboard[0].Rank)
	assert.Equal(t, players[1].ID, page.Leaderboard[0].ID)
	assert.Equal(t, ranking.PeriodAllTime, page.Period)
	assert.Equal(t, int64(3), page.Pagination.Total)
}

func TestGetPlayersBadQuery(t *testing.T) {
	r, _ := newLeaderboardRouter(t)

	for _, url := range []string{
		"/leaderboard/players?limit=abc",
		"/leaderboard/players?offset=-1",
		"/leaderboard/players?period=forever",
	} {
		w := get(r, url)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestComparePlayersStatus(t *testing.T) {
	r, players := newLeaderboardRouter(t)

	w := get(r, fmt.Sprintf("/leaderboard/compare?userIds=%d,%d", players[0].ID, players[2].ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var cmp models.PlayerComparison
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &cmp))
	assert.Equal(t, 2, len(cmp.Players))
	assert.Equal(t, int64(3), cmp.Comparison.Lowest.Rank)

	w = get(r, fmt.Sprintf("/leaderboard/compare?userIds=%d", players[0].ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/leaderboard/compare?userIds=1,x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, fmt.Sprintf("/leaderboard/compare?userIds=%d,9999", players[0].ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRankHistoryStatus(t *testing.T) {
	r, players := newLeaderboardRouter(t)

	w := get(r, fmt.Sprintf("/leaderboard/players/%d/rank-history", players[2].ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var history models.RankHistory
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, int64(3), history.CurrentRank)
	assert.Equal(t, ranking.PeriodMonth, history.Period)

	assert.Equal(t, http.StatusBadRequest, get(r, "/leaderboard/players/abc/rank-history").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/leaderboard/players/9999/rank-history").Code)
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", ranking.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: requires tower owner", authz.ErrForbidden), http.StatusForbidden},
		{services.NotFound("tower not found"), http.StatusNotFound},
		{services.Invalid("nope"), http.StatusBadRequest},
		{services.Unauthorized("who"), http.StatusUnauthorized},
		{services.Forbidden("no"), http.StatusForbidden},
		{services.Conflict("tournament is full"), http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		r := gin.New()
		err := c.err
		r.GET("/", func(ctx *gin.Context) { respondError(ctx, err) })

		w := get(r, "/")
		assert.Equal(t, c.want, w.Code)

		var body map[string]string
		assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &body))
		if c.want == http.StatusInternalServerError {
			assert.Equal(t, "Internal server error", body["error"])
		} else {
			assert.Equal(t, err.Error(), body["error"])
		}
	}
}
