package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/middleware"
	"github.com/huangang/taskflow/backend/internal/services"
	"github.com/huangang/taskflow/backend/pkg/response"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	publisher           services.Publisher
}

func NewNotificationHandler(notificationService *services.NotificationService, publisher services.Publisher) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		publisher:           publisher,
	}
}

// List returns the caller's notifications, newest first
// GET /api/notifications?unread=
func (h *NotificationHandler) List(c *gin.Context) {
	var unread *bool
	if raw := c.Query("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "unread must be true or false")
			return
		}
		unread = &v
	}

	items, err := h.notificationService.List(c.Request.Context(), middleware.GetUserID(c), unread)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, items)
}

// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// Create stores a notification for any member and pushes it live.
// POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req services.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	n, err := h.notificationService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.publisher != nil {
		h.publisher.Publish(n.UserID, n)
	}

	response.Created(c, n)
}

// PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	n, err := h.notificationService.MarkAsRead(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, n)
}

// PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"updated": updated})
}

// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notificationService.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "notification deleted successfully"})
}
