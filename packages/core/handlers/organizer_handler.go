package handlers

import (
	"net/http"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type OrganizerHandler struct {
	organizerService *services.OrganizerService
}

func NewOrganizerHandler(organizerService *services.OrganizerService) *OrganizerHandler {
	return &OrganizerHandler{
		organizerService: organizerService,
	}
}

// Apply submits an organizer application
// @Summary Apply to become an organizer
// @Tags organizers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param application body models.OrganizerApplyRequest true "Motivation"
// @Success 201 {object} models.OrganizerApplication
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organizer/apply [post]
func (h *OrganizerHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.OrganizerApplyRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.organizerService.Apply(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// MyApplication returns the caller's application
// @Summary My organizer application
// @Tags organizers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.OrganizerApplication
// @Failure 404 {object} map[string]string
// @Router /organizer/my-application [get]
func (h *OrganizerHandler) MyApplication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	app, err := h.organizerService.MyApplication(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListApplications lists organizer applications
// @Summary List organizer applications
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {array} models.OrganizerApplication
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/organizer-applications [get]
func (h *OrganizerHandler) ListApplications(c *gin.Context) {
	apps, err := h.organizerService.ListApplications(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ApproveApplication grants the organizer role
// @Summary Approve an organizer application
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.OrganizerApplication
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/organizer-applications/{id}/approve [post]
func (h *OrganizerHandler) ApproveApplication(c *gin.Context) {
	h.review(c, h.organizerService.Approve)
}

// RejectApplication refuses an organizer application
// @Summary Reject an organizer application
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.OrganizerApplication
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/organizer-applications/{id}/reject [post]
func (h *OrganizerHandler) RejectApplication(c *gin.Context) {
	h.review(c, h.organizerService.Reject)
}

func (h *OrganizerHandler) review(c *gin.Context, review func(adminID, appID uint) (*models.OrganizerApplication, error)) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "application")
	if !ok {
		return
	}

	app, err := review(adminID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListOrganizers lists users holding the organizer role
// @Summary List organizers
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.OrganizerView
// @Failure 403 {object} map[string]string
// @Router /admin/organizers [get]
func (h *OrganizerHandler) ListOrganizers(c *gin.Context) {
	organizers, err := h.organizerService.ListOrganizers()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizers": organizers})
}

// BlockOrganizer removes the organizer role
// @Summary Block an organizer
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} authModels.User
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/organizers/{userId}/block [post]
func (h *OrganizerHandler) BlockOrganizer(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	user, err := h.organizerService.Block(adminID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
