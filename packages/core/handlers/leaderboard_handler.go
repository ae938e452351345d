package handlers

import (
	"net/http"

	"towerhub-api/packages/core/ranking"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

func pageQuery(c *gin.Context) (services.PageQuery, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return services.PageQuery{}, err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return services.PageQuery{}, err
	}
	return services.NewPageQuery(limit, offset, c.Query("period"))
}

// GetPlayers ranks players by performance points
// @Summary Player leaderboard
// @Description Players ranked by performance points, ties broken by id. Ranks are page ranks (offset + index + 1).
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Param period query string false "week, month, year or allTime"
// @Success 200 {object} models.LeaderboardPage[models.PlayerLeaderboardEntry]
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/players [get]
func (h *LeaderboardHandler) GetPlayers(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.leaderboardService.Players(q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTowers ranks towers by total points
// @Summary Tower leaderboard
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Param period query string false "week, month, year or allTime"
// @Success 200 {object} models.LeaderboardPage[models.TowerLeaderboardEntry]
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/towers [get]
func (h *LeaderboardHandler) GetTowers(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.leaderboardService.Towers(q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTeams ranks teams by the sum of their members' points
// @Summary Team leaderboard
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Param period query string false "week, month, year or allTime"
// @Success 200 {object} models.LeaderboardPage[models.TeamLeaderboardEntry]
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/teams [get]
func (h *LeaderboardHandler) GetTeams(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.leaderboardService.Teams(q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTournamentWinners lists the podiums of completed tournaments
// @Summary Tournament winners
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Number of tournaments (default 20)"
// @Success 200 {array} models.TournamentWinners
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/tournament-winners [get]
func (h *LeaderboardHandler) GetTournamentWinners(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	if limit > ranking.MaxLimit {
		limit = ranking.MaxLimit
	}

	winners, err := h.leaderboardService.TournamentWinners(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tournaments": winners})
}

// GetPlayerDetails returns a player's absolute rank and profile data
// @Summary Player details
// @Tags leaderboard
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} models.PlayerDetails
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/players/{id}/details [get]
func (h *LeaderboardHandler) GetPlayerDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "player")
	if !ok {
		return
	}

	details, err := h.leaderboardService.PlayerDetails(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ComparePlayers compares 2 to 5 players
// @Summary Compare players
// @Tags leaderboard
// @Produce json
// @Param userIds query string true "Comma separated player ids (2 to 5)"
// @Success 200 {object} models.PlayerComparison
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/compare [get]
func (h *LeaderboardHandler) ComparePlayers(c *gin.Context) {
	ids, err := parseIDList(c.Query("userIds"))
	if err != nil {
		respondError(c, err)
		return
	}

	comparison, err := h.leaderboardService.Compare(ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// GetRankHistory returns the stored daily ranks of a player
// @Summary Player rank history
// @Tags leaderboard
// @Produce json
// @Param id path int true "Player ID"
// @Param period query string false "week, month (default), year or allTime"
// @Success 200 {object} models.RankHistory
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /leaderboard/players/{id}/rank-history [get]
func (h *LeaderboardHandler) GetRankHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "player")
	if !ok {
		return
	}

	period := ranking.PeriodMonth
	if raw := c.Query("period"); raw != "" {
		p, err := ranking.ParsePeriod(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		period = p
	}

	history, err := h.leaderboardService.RankHistory(id, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
