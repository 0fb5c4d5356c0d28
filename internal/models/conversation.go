package models

import (
	"sort"
	"time"
)

// Participant is one side of a two-party conversation.
type Participant struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Conversation represents a private thread between exactly two users.
type Conversation struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
}

// Message represents a chat message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HasParticipant checks whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return Participant{}, false
}

// Pairs reports whether the conversation is between a and b, in either order.
func (c Conversation) Pairs(a, b string) bool {
	return len(c.Participants) == 2 && c.HasParticipant(a) && c.HasParticipant(b)
}

// LastMessage returns the newest message, if any.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// ValidParticipants checks the exactly-two, unique, non-empty rule.
func (c Conversation) ValidParticipants() bool {
	if len(c.Participants) != 2 {
		return false
	}
	a, b := c.Participants[0].ID, c.Participants[1].ID
	return a != "" && b != "" && a != b
}

// Before orders messages by creation time, then id.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// SortMessages sorts in place by (CreatedAt, ID).
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Before(msgs[j]) })
}
