package handlers

import (
	"net/http"
	"strconv"

	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications lists the caller's latest notifications
// @Summary List notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param unreadOnly query bool false "Only unread notifications"
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]string
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unreadOnly", "false"))

	list, err := h.notificationService.List(userID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// GetUnreadCount counts unread notifications
// @Summary Unread notifications count
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UnreadCountResponse
// @Failure 401 {object} map[string]string
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UnreadCountResponse{Count: count})
}

// MarkRead marks one notification as read
// @Summary Mark a notification as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "notification")
	if !ok {
		return
	}

	n, err := h.notificationService.MarkRead(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

// MarkAllRead marks every notification as read
// @Summary Mark all notifications as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification deletes one notification
// @Summary Delete a notification
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
