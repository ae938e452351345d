package handlers

import (
	"net/http"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(tournamentService *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
	}
}

// CreateTournament creates a new tournament
// @Summary Create a new tournament
// @Description Organizers and super admins only. The creator is always an organizer; tower leaders are notified.
// @Tags tournaments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tournament body models.CreateTournamentRequest true "Tournament data"
// @Success 201 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateTournamentRequest
	if !bindJSON(c, &req) {
		return
	}

	tournament, err := h.tournamentService.CreateTournament(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tournament)
}

// GetTournament gets a tournament by ID
// @Summary Get tournament by ID
// @Description Get tournament information with organizers and registrations
// @Tags tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// GetAllTournaments lists tournaments
// @Summary Get all tournaments
// @Tags tournaments
// @Produce json
// @Param status query string false "UPCOMING, LIVE, COMPLETED or CANCELLED"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Items per page (default: 20, max: 100)"
// @Success 200 {object} services.PaginatedTournamentsResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /tournaments [get]
func (h *TournamentHandler) GetAllTournaments(c *gin.Context) {
	page, pageSize := pageParams(c, 20)

	result, err := h.tournamentService.GetAllTournaments(page, pageSize, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus moves a tournament to its next status
// @Summary Update tournament status
// @Description UPCOMING -> LIVE -> COMPLETED, or CANCELLED before completion. Completing designates the winner.
// @Tags tournaments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param status body models.UpdateTournamentStatusRequest true "New status"
// @Success 200 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{id}/status [patch]
func (h *TournamentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}
	var req models.UpdateTournamentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(userID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// RegisterTeam enters a team in the tournament
// @Summary Register a team
// @Description Tower admins of the team only, while the tournament is upcoming. Pending and approved entries count against maxTeams.
// @Tags tournaments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param registration body models.RegisterTeamRequest true "Team"
// @Success 201 {object} models.TournamentRegistration
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tournaments/{id}/registrations [post]
func (h *TournamentHandler) RegisterTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}
	var req models.RegisterTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	reg, err := h.tournamentService.RegisterTeam(userID, id, req.TeamID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// GetRegistrations lists the tournament's registrations
// @Summary Tournament registrations
// @Tags tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {array} models.TournamentRegistration
// @Failure 404 {object} map[string]string
// @Router /tournaments/{id}/registrations [get]
func (h *TournamentHandler) GetRegistrations(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}

	regs, err := h.tournamentService.Registrations(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// ApproveRegistration accepts a pending registration
// @Summary Approve a registration
// @Tags tournaments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tournament ID"
// @Param rid path int true "Registration ID"
// @Success 200 {object} models.TournamentRegistration
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tournaments/{id}/registrations/{rid}/approve [post]
func (h *TournamentHandler) ApproveRegistration(c *gin.Context) {
	h.reviewRegistration(c, h.tournamentService.ApproveRegistration)
}

// RejectRegistration refuses a pending registration
// @Summary Reject a registration
// @Tags tournaments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tournament ID"
// @Param rid path int true "Registration ID"
// @Success 200 {object} models.TournamentRegistration
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /tournaments/{id}/registrations/{rid}/reject [post]
func (h *TournamentHandler) RejectRegistration(c *gin.Context) {
	h.reviewRegistration(c, h.tournamentService.RejectRegistration)
}

func (h *TournamentHandler) reviewRegistration(c *gin.Context, review func(actorID, tournamentID, regID uint) (*models.TournamentRegistration, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "tournament")
	if !ok {
		return
	}
	regID, ok := parseIDParam(c, "rid", "registration")
	if !ok {
		return
	}

	reg, err := review(userID, id, regID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reg)
}
