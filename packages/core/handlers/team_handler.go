package handlers

import (
	"net/http"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a new team in a tower
// @Summary Create a new team
// @Description Tower admins only. Team names are unique inside a tower.
// @Tags teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tower ID"
// @Param team body models.CreateTeamRequest true "Team data"
// @Success 201 {object} models.Team
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /towers/{id}/teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	var req models.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(userID, towerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// GetTeam gets a team by ID
// @Summary Get team by ID
// @Description Team with members and its aggregate, recomputed from the current members
// @Tags teams
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} models.TeamDetails
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /teams/{id} [get]
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "team")
	if !ok {
		return
	}

	team, err := h.teamService.GetTeam(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// AddMember adds a tower member to the team
// @Summary Add a team member
// @Tags teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param member body models.AddTeamMemberRequest true "Member"
// @Success 201 {object} models.TeamMember
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id", "team")
	if !ok {
		return
	}
	var req models.AddTeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.AddMember(actorID, teamID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// RemoveMember removes a player from the team
// @Summary Remove a team member
// @Tags teams
// @Security BearerAuth
// @Produce json
// @Param id path int true "Team ID"
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /teams/{id}/members/{userId} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id", "team")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(actorID, teamID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// DeleteTeam deletes a team
// @Summary Delete team
// @Description Tower admins only, refused while the team is in an ongoing tournament
// @Tags teams
// @Security BearerAuth
// @Produce json
// @Param id path int true "Team ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /teams/{id} [delete]
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "team")
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
}
