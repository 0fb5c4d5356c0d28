package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"huntx-client/internal/models"
)

// NotificationService is the notification aggregator surface used by the bridge.
type NotificationService interface {
	List() []models.Notification
	UnreadCount() int
	MarkAllRead(ctx context.Context) error
}

type NotificationHandler struct {
	store NotificationService
}

func NewNotificationHandler(store NotificationService) *NotificationHandler {
	return &NotificationHandler{store: store}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.store.List(),
		"unread":        h.store.UnreadCount(),
	})
}

// MarkRead clears the unread badge. Local state stays read even when the
// backend call fails.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.store.MarkAllRead(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": h.store.UnreadCount()})
}
