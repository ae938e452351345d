package handlers

import (
	"net/http"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// GetTournamentMatches lists the matches of a tournament
// @Summary Tournament matches
// @Tags matches
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {array} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{id}/matches [get]
func (h *MatchHandler) GetTournamentMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}

	matches, err := h.matchService.GetTournamentMatches(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GetMatch gets a match by ID
// @Summary Get match by ID
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "match")
	if !ok {
		return
	}

	match, err := h.matchService.GetMatchByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// CreateMatch schedules a match between two approved registrants
// @Summary Create a match
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param match body models.CreateMatchRequest true "Match data"
// @Success 201 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /tournaments/{id}/matches [post]
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}
	var req models.CreateMatchRequest
	if !bindJSON(c, &req) {
		return
	}

	match, err := h.matchService.CreateMatch(userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, match)
}

// SetRoom sets the in-game room of a match
// @Summary Set match room
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param room body models.SetRoomRequest true "Room"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /matches/{id}/room [put]
func (h *MatchHandler) SetRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "match")
	if !ok {
		return
	}
	var req models.SetRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	match, err := h.matchService.SetRoom(userID, id, req.RoomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// AddProof attaches a proof link to a match
// @Summary Add a match proof
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param proof body models.AddProofRequest true "Proof"
// @Success 201 {object} models.Proof
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /matches/{id}/proofs [post]
func (h *MatchHandler) AddProof(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "match")
	if !ok {
		return
	}
	var req models.AddProofRequest
	if !bindJSON(c, &req) {
		return
	}

	proof, err := h.matchService.AddProof(userID, id, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proof)
}

// RecordResult records the outcome of a match
// @Summary Record match result
// @Description Organizers only, once per match. Updates player counters, tower points, registration wins and XP.
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param result body models.MatchResultRequest true "Result"
// @Success 200 {object} models.MatchResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches/{id}/result [post]
func (h *MatchHandler) RecordResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "match")
	if !ok {
		return
	}
	var req models.MatchResultRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.matchService.RecordResult(userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
