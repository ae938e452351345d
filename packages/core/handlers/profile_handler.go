package handlers

import (
	"net/http"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetOverview returns the caller's profile dashboard
// @Summary Profile overview
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ProfileOverview
// @Failure 401 {object} map[string]string
// @Router /profile/overview [get]
func (h *ProfileHandler) GetOverview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	overview, err := h.profileService.Overview(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetStats returns the caller's counters and rank
// @Summary Profile stats
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ProfileStats
// @Failure 401 {object} map[string]string
// @Router /profile/stats [get]
func (h *ProfileHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.profileService.Stats(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTournaments lists the caller's tournaments
// @Summary Profile tournaments
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.PlayerTournaments
// @Failure 401 {object} map[string]string
// @Router /profile/tournaments [get]
func (h *ProfileHandler) GetTournaments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tournaments, err := h.profileService.Tournaments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournaments)
}

// GetAchievements lists badges and achievement progress
// @Summary Profile achievements
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ProfileAchievements
// @Failure 401 {object} map[string]string
// @Router /profile/achievements [get]
func (h *ProfileHandler) GetAchievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	achievements, err := h.profileService.Achievements(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievements)
}

// UpdateProfile edits the caller's public profile
// @Summary Update profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} authModels.User
// @Failure 400 {object} map[string]string
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateNotificationPrefs toggles e-mail notification categories
// @Summary Update notification preferences
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param prefs body models.UpdateNotificationPrefsRequest true "Preferences"
// @Success 200 {object} authModels.User
// @Failure 400 {object} map[string]string
// @Router /profile/notifications [put]
func (h *ProfileHandler) UpdateNotificationPrefs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateNotificationPrefsRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profileService.UpdateNotificationPrefs(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetPublicProfile shows a player's public profile
// @Summary Public profile
// @Tags profile
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} map[string]string
// @Router /profile/{username} [get]
func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.profileService.PublicProfile(c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
