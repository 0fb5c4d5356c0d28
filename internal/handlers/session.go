package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"huntx-client/internal/models"
)

// SessionService is the session store surface used by the bridge.
type SessionService interface {
	Current() (models.Session, bool)
	SignIn(ctx context.Context, creds models.Credentials) (models.Session, error)
	SignOut(ctx context.Context) error
	ToggleTheme(ctx context.Context) (models.Theme, error)
}

// SessionHandler exposes the session to the view.
type SessionHandler struct {
	store SessionService
}

func NewSessionHandler(store SessionService) *SessionHandler {
	return &SessionHandler{store: store}
}

// GetSession returns the current identity. A signed-out client still has a theme.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.store.Current()
	c.JSON(http.StatusOK, gin.H{"signed_in": ok, "session": sess})
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sess, err := h.store.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signed_in": true, "session": sess})
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.store.SignOut(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) ToggleTheme(c *gin.Context) {
	theme, err := h.store.ToggleTheme(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
