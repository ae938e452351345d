package handlers

import (
	"net/http"

	"towerhub-api/packages/auth/middleware"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type TowerHandler struct {
	towerService *services.TowerService
}

func NewTowerHandler(towerService *services.TowerService) *TowerHandler {
	return &TowerHandler{
		towerService: towerService,
	}
}

// CreateTower creates a tower led by the caller
// @Summary Create a tower
// @Description The creator becomes the leader and gets a 6 character invite code
// @Tags towers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tower body models.CreateTowerRequest true "Tower data"
// @Success 201 {object} models.Tower
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /towers [post]
func (h *TowerHandler) CreateTower(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateTowerRequest
	if !bindJSON(c, &req) {
		return
	}

	tower, err := h.towerService.Create(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tower)
}

// JoinTower requests to join a tower with its invite code
// @Summary Join a tower
// @Tags towers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.JoinTowerRequest true "Invite code"
// @Success 201 {object} models.TowerMember
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /towers/join [post]
func (h *TowerHandler) JoinTower(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.JoinTowerRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.towerService.Join(userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// LeaveTower removes the caller from the tower
// @Summary Leave a tower
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/leave [post]
func (h *TowerHandler) LeaveTower(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	if err := h.towerService.Leave(userID, towerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You left the tower"})
}

// ApproveMember approves a pending join request
// @Summary Approve a join request
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param memberId path int true "Member ID"
// @Success 200 {object} models.TowerMember
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /towers/{id}/members/{memberId}/approve [post]
func (h *TowerHandler) ApproveMember(c *gin.Context) {
	h.memberAction(c, h.towerService.ApproveMember)
}

// PromoteMember makes a member an elite member
// @Summary Promote a member
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param memberId path int true "Member ID"
// @Success 200 {object} models.TowerMember
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id}/members/{memberId}/promote [post]
func (h *TowerHandler) PromoteMember(c *gin.Context) {
	h.memberAction(c, h.towerService.Promote)
}

// DemoteMember sets a member back to MEMBER
// @Summary Demote a member
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param memberId path int true "Member ID"
// @Success 200 {object} models.TowerMember
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id}/members/{memberId}/demote [post]
func (h *TowerHandler) DemoteMember(c *gin.Context) {
	h.memberAction(c, h.towerService.Demote)
}

func (h *TowerHandler) memberAction(c *gin.Context, action func(actorID, towerID, memberID uint) (*models.TowerMember, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId", "member")
	if !ok {
		return
	}

	member, err := action(userID, towerID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// RemoveMember kicks a member or refuses a join request
// @Summary Remove a member
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param memberId path int true "Member ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/members/{memberId} [delete]
func (h *TowerHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberId", "member")
	if !ok {
		return
	}

	if err := h.towerService.RemoveMember(userID, towerID, memberID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// AddCoLeader gives an approved member the co-leader role
// @Summary Add a co-leader
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param userId path int true "User ID"
// @Success 200 {object} models.TowerMember
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/coleaders/{userId} [post]
func (h *TowerHandler) AddCoLeader(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	member, err := h.towerService.AddCoLeader(actorID, towerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// AssignCoLeader names the tower's co-leader
// @Summary Assign the co-leader
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Param userId path int true "User ID"
// @Success 200 {object} models.Tower
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id}/assign-coleader/{userId} [post]
func (h *TowerHandler) AssignCoLeader(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	tower, err := h.towerService.AssignCoLeader(actorID, towerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tower)
}

// RemoveCoLeader clears the tower's co-leader
// @Summary Remove the co-leader
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {object} models.Tower
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id}/coleader [delete]
func (h *TowerHandler) RemoveCoLeader(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	tower, err := h.towerService.RemoveCoLeader(actorID, towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tower)
}

// DeleteTower deletes a tower without teams
// @Summary Delete a tower
// @Tags towers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id} [delete]
func (h *TowerHandler) DeleteTower(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	if err := h.towerService.Delete(actorID, towerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tower deleted successfully"})
}

// UpdateSettings edits the tower
// @Summary Update tower settings
// @Tags towers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tower ID"
// @Param settings body models.UpdateTowerSettingsRequest true "Settings"
// @Success 200 {object} models.Tower
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /towers/{id}/settings [put]
func (h *TowerHandler) UpdateSettings(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	var req models.UpdateTowerSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	tower, err := h.towerService.UpdateSettings(actorID, towerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tower)
}

// GetOverview returns the tower with its members, teams and active entries
// @Summary Tower overview
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {object} models.TowerOverview
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/overview [get]
func (h *TowerHandler) GetOverview(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	overview, err := h.towerService.Overview(towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetMembers lists members; pending requests are only shown to tower admins
// @Summary Tower members
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {object} models.TowerMembersResponse
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/members [get]
func (h *TowerHandler) GetMembers(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	members, err := h.towerService.Members(viewerID, towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// GetTeamsStatus lists the tower's teams with aggregates and active entries
// @Summary Tower teams status
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {array} models.TeamStatus
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/teams-status [get]
func (h *TowerHandler) GetTeamsStatus(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	teams, err := h.towerService.TeamsStatus(towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// GetTournaments lists every registration of the tower's teams
// @Summary Tower tournaments
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {array} models.TournamentRegistration
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/tournaments [get]
func (h *TowerHandler) GetTournaments(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	regs, err := h.towerService.Tournaments(towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// GetLeaderboard ranks the tower's members
// @Summary Tower member leaderboard
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {array} models.TowerMemberRankEntry
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/leaderboard [get]
func (h *TowerHandler) GetLeaderboard(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	entries, err := h.towerService.Leaderboard(towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetAnnouncements lists the latest announcements
// @Summary Tower announcements
// @Tags towers
// @Produce json
// @Param id path int true "Tower ID"
// @Success 200 {array} models.TowerAnnouncement
// @Failure 404 {object} map[string]string
// @Router /towers/{id}/announcements [get]
func (h *TowerHandler) GetAnnouncements(c *gin.Context) {
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}

	list, err := h.towerService.Announcements(towerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"announcements": list})
}

// CreateAnnouncement posts an announcement to every member
// @Summary Post an announcement
// @Tags towers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Tower ID"
// @Param announcement body models.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} models.TowerAnnouncement
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /towers/{id}/announcements [post]
func (h *TowerHandler) CreateAnnouncement(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	towerID, ok := parseIDParam(c, "id", "tower")
	if !ok {
		return
	}
	var req models.CreateAnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.towerService.CreateAnnouncement(actorID, towerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}
