package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"huntx-client/internal/models"
)

// ConversationService is the conversation store surface used by the bridge.
type ConversationService interface {
	Conversations() []models.Conversation
	Search(query string) []models.Conversation
	Select(id string) error
	Selected() (models.Conversation, bool)
	Unread(id string) int
	SendMessage(ctx context.Context, conversationID, content string) (models.Message, error)
	StartConversation(ctx context.Context, recipientID string) (models.Conversation, error)
}

// ConversationHandler manages private conversation endpoints.
type ConversationHandler struct {
	store ConversationService
}

func NewConversationHandler(store ConversationService) *ConversationHandler {
	return &ConversationHandler{store: store}
}

type conversationView struct {
	models.Conversation
	Unread int `json:"unread"`
}

func (h *ConversationHandler) view(list []models.Conversation) []conversationView {
	out := make([]conversationView, 0, len(list))
	for _, conv := range list {
		out = append(out, conversationView{Conversation: conv, Unread: h.store.Unread(conv.ID)})
	}
	return out
}

// ListConversations returns the conversations, most recent first, optionally
// filtered by the other participant's name.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	var list []models.Conversation
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		list = h.store.Search(q)
	} else {
		list = h.store.Conversations()
	}

	resp := gin.H{"conversations": h.view(list)}
	if sel, ok := h.store.Selected(); ok {
		resp["selected"] = sel.ID
	}
	c.JSON(http.StatusOK, resp)
}

type startConversationRequest struct {
	RecipientID string `json:"recipient_id"`
}

func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	conv, err := h.store.StartConversation(c.Request.Context(), req.RecipientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) SelectConversation(c *gin.Context) {
	id := c.Param("conversation_id")
	if err := h.store.Select(id); err != nil {
		respondError(c, err)
		return
	}
	sel, _ := h.store.Selected()
	c.JSON(http.StatusOK, sel)
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (h *ConversationHandler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	msg, err := h.store.SendMessage(c.Request.Context(), c.Param("conversation_id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
