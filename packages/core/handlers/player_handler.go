package handlers

import (
	"net/http"

	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

// GetPlayer retrieves a player by ID
// @Summary Get player by ID
// @Description Get player information by player ID
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /players/{id} [get]
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "player")
	if !ok {
		return
	}

	player, err := h.playerService.GetPlayerByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, player)
}

// GetAllPlayers searches players
// @Summary Get all players
// @Description Players ordered by points, filtered by username or name
// @Tags players
// @Produce json
// @Param search query string false "Username or name fragment"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Items per page (default: 20, max: 100)"
// @Success 200 {object} services.PaginatedPlayersResponse
// @Failure 500 {object} map[string]string
// @Router /players [get]
func (h *PlayerHandler) GetAllPlayers(c *gin.Context) {
	page, pageSize := pageParams(c, 20)

	result, err := h.playerService.ListPlayers(c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlayerTeams lists the teams of a player
// @Summary Get player teams
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {array} models.Team
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /players/{id}/teams [get]
func (h *PlayerHandler) GetPlayerTeams(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "player")
	if !ok {
		return
	}

	if _, err := h.playerService.GetPlayerByID(id); err != nil {
		respondError(c, err)
		return
	}

	teams, err := h.playerService.GetPlayerTeams(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}
