package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"huntx-client/internal/models"
)

// ConnectionService is the connection tracker surface used by the bridge.
type ConnectionService interface {
	List() models.ConnectionList
	Status(userID string) models.ConnectionStatus
	Connect(ctx context.Context, userID string) error
	Accept(ctx context.Context, userID string) error
	Reject(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) error
}

type ConnectionHandler struct {
	tracker ConnectionService
}

func NewConnectionHandler(tracker ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{tracker: tracker}
}

func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.List())
}

func (h *ConnectionHandler) Connect(c *gin.Context) { h.act(c, h.tracker.Connect) }
func (h *ConnectionHandler) Accept(c *gin.Context)  { h.act(c, h.tracker.Accept) }
func (h *ConnectionHandler) Reject(c *gin.Context)  { h.act(c, h.tracker.Reject) }
func (h *ConnectionHandler) Remove(c *gin.Context)  { h.act(c, h.tracker.Remove) }

func (h *ConnectionHandler) act(c *gin.Context, action func(context.Context, string) error) {
	userID := c.Param("user_id")
	if err := action(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "status": h.tracker.Status(userID)})
}
