package api

import (
	"context"
	"net/http"

	"huntx-client/internal/models"
)

// Conversations lists every conversation of the signed-in user with its messages.
func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var out wireConversations
	if err := c.read(ctx, "list conversations", request{
		method: http.MethodGet,
		route:  "/messages/conversations",
		path:   "/messages/conversations",
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	convs := make([]models.Conversation, 0, len(out))
	for _, wc := range out {
		convs = append(convs, wc.model())
	}
	return convs, nil
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// SendMessage posts content to a conversation and returns the accepted message.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	var out wireMessage
	if err := c.write(ctx, "send message", request{
		method: http.MethodPost,
		route:  "/messages/send",
		path:   "/messages/send",
		body:   sendMessageRequest{ConversationID: conversationID, Content: content},
		auth:   true,
	}, &out); err != nil {
		return models.Message{}, err
	}
	return out.model(conversationID), nil
}

type startConversationRequest struct {
	RecipientID string `json:"recipientId"`
}

// StartConversation opens a conversation with recipientID. The backend may return
// an existing one.
func (c *Client) StartConversation(ctx context.Context, recipientID string) (models.Conversation, error) {
	var out wireConversation
	if err := c.write(ctx, "start conversation", request{
		method: http.MethodPost,
		route:  "/messages/start",
		path:   "/messages/start",
		body:   startConversationRequest{RecipientID: recipientID},
		auth:   true,
	}, &out); err != nil {
		return models.Conversation{}, err
	}
	return out.model(), nil
}
