// Package conversations keeps the private conversations of the signed-in user.
package conversations

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"huntx-client/internal/api"
	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
	"huntx-client/internal/realtime"
)

// API is the part of the REST client used by the store.
type API interface {
	Conversations(ctx context.Context) ([]models.Conversation, error)
	SendMessage(ctx context.Context, conversationID, content string) (models.Message, error)
	StartConversation(ctx context.Context, recipientID string) (models.Conversation, error)
}

// Emitter sends events over the realtime channel.
type Emitter interface {
	Emit(event string, payload any) error
}

// SessionSource reports the signed-in user.
type SessionSource interface {
	Current() (models.Session, bool)
}

// Change tells listeners what moved. ConversationID is empty when the whole list
// changed.
type Change struct {
	ConversationID string
}

// Store holds conversations keyed by id. Message lists only grow; the same
// message arriving twice, from REST or realtime, is stored once.
type Store struct {
	api     API
	emitter Emitter
	session SessionSource

	mu       sync.RWMutex
	convs    map[string]models.Conversation
	selected string
	unread   map[string]int

	listeners listeners.Registry[Change]
}

func NewStore(api API, emitter Emitter, session SessionSource) *Store {
	return &Store{
		api:     api,
		emitter: emitter,
		session: session,
		convs:   make(map[string]models.Conversation),
		unread:  make(map[string]int),
	}
}

// LoadConversations fetches every conversation and merges it into local state.
func (s *Store) LoadConversations(ctx context.Context) ([]models.Conversation, error) {
	const op = "load conversations"
	sess, ok := s.session.Current()
	if !ok {
		return nil, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}

	list, err := s.api.Conversations(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.sameUser(sess.UserID) {
		s.mu.Unlock()
		return nil, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	for _, conv := range list {
		if !conv.HasParticipant(sess.UserID) {
			log.Printf("conversation %s does not include user_id=%s, skipped", conv.ID, sess.UserID)
			continue
		}
		s.upsertLocked(conv)
	}
	s.mu.Unlock()

	s.listeners.Notify(Change{})
	return s.Conversations(), nil
}

// Conversations returns every conversation, most recent activity first.
func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(models.Conversation) bool { return true })
}

// Conversation returns one conversation by id.
func (s *Store) Conversation(id string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		return models.Conversation{}, false
	}
	return clone(conv), true
}

// Search filters conversations by the other participant's name, ignoring case.
func (s *Store) Search(query string) []models.Conversation {
	query = strings.ToLower(strings.TrimSpace(query))
	me := s.me()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(c models.Conversation) bool {
		if query == "" {
			return true
		}
		other, ok := c.Other(me)
		return ok && strings.Contains(strings.ToLower(other.Name), query)
	})
}

// Select makes id the open conversation and marks it read.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	if _, ok := s.convs[id]; !ok {
		s.mu.Unlock()
		return models.Errorf(models.KindFetch, "select conversation", models.ErrNotFound, "conversation %s not found", id)
	}
	s.selected = id
	s.unread[id] = 0
	s.mu.Unlock()

	s.listeners.Notify(Change{ConversationID: id})
	return nil
}

// Selected returns the open conversation, if any.
func (s *Store) Selected() (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[s.selected]
	if !ok {
		return models.Conversation{}, false
	}
	return clone(conv), true
}

// Unread returns the number of messages from others received in id since it was
// last selected.
func (s *Store) Unread(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[id]
}

// UnreadTotal sums Unread over every conversation.
func (s *Store) UnreadTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.unread {
		total += n
	}
	return total
}

// SendMessage posts content to conversationID, merges the accepted message and
// relays it to the recipient over the realtime channel.
func (s *Store) SendMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	const op = "send message"
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, models.Errorf(models.KindSend, op, models.ErrValidation, "message content is empty")
	}
	sess, ok := s.session.Current()
	if !ok {
		return models.Message{}, models.NewError(models.KindSend, op, models.ErrNotSignedIn)
	}
	conv, ok := s.Conversation(conversationID)
	if !ok {
		return models.Message{}, models.Errorf(models.KindSend, op, models.ErrNotFound, "conversation %s not found", conversationID)
	}
	recipient, ok := conv.Other(sess.UserID)
	if !ok {
		return models.Message{}, models.Errorf(models.KindSend, op, models.ErrValidation, "conversation %s has no recipient", conversationID)
	}

	msg, err := s.api.SendMessage(ctx, conversationID, content)
	if err != nil {
		return models.Message{}, err
	}
	if msg.ConversationID == "" {
		msg.ConversationID = conversationID
	}
	if msg.SenderID == "" {
		msg.SenderID = sess.UserID
	}
	if msg.SenderName == "" {
		msg.SenderName = sess.DisplayName
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	applied := s.sameUser(sess.UserID)
	if applied {
		s.upsertLocked(models.Conversation{ID: conversationID, Messages: []models.Message{msg}})
	}
	s.mu.Unlock()
	if applied {
		s.listeners.Notify(Change{ConversationID: conversationID})
	}

	if err := s.emitter.Emit(realtime.EventSendMessage, api.NewOutgoingMessage(msg, sess.DisplayName, recipient.ID)); err != nil {
		log.Printf("relay message %s failed: %v", msg.ID, err)
	}
	return msg, nil
}

// StartConversation returns the conversation with recipientID, creating it on
// the backend only when none is loaded. The result becomes selected.
func (s *Store) StartConversation(ctx context.Context, recipientID string) (models.Conversation, error) {
	const op = "start conversation"
	sess, ok := s.session.Current()
	if !ok {
		return models.Conversation{}, models.NewError(models.KindSend, op, models.ErrNotSignedIn)
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" || recipientID == sess.UserID {
		return models.Conversation{}, models.Errorf(models.KindSend, op, models.ErrValidation, "a conversation needs another participant")
	}

	if existing, ok := s.findPair(sess.UserID, recipientID); ok {
		return existing, s.Select(existing.ID)
	}

	conv, err := s.api.StartConversation(ctx, recipientID)
	if err != nil {
		return models.Conversation{}, err
	}
	if !conv.Pairs(sess.UserID, recipientID) {
		return models.Conversation{}, models.Errorf(models.KindSend, op, models.ErrShapeMismatch, "conversation %s does not pair %s with %s", conv.ID, sess.UserID, recipientID)
	}

	s.mu.Lock()
	if !s.sameUser(sess.UserID) {
		s.mu.Unlock()
		return models.Conversation{}, models.NewError(models.KindSend, op, models.ErrNotSignedIn)
	}
	stored := s.upsertLocked(conv)
	s.selected = stored.ID
	s.unread[stored.ID] = 0
	stored = clone(stored)
	s.mu.Unlock()

	s.listeners.Notify(Change{ConversationID: stored.ID})
	return stored, nil
}

// HandleIncoming merges a message pushed by the broker. It is registered for the
// newMessage event.
func (s *Store) HandleIncoming(data json.RawMessage) {
	msg, err := api.DecodeMessage(data)
	if err != nil {
		log.Printf("dropping inbound message: %v", models.NewError(models.KindFetch, "inbound message", err))
		return
	}
	sess, ok := s.session.Current()
	if !ok {
		return
	}

	s.mu.Lock()
	conv, known := s.convs[msg.ConversationID]
	if !known {
		conv = models.Conversation{
			ID: msg.ConversationID,
			Participants: []models.Participant{
				{ID: msg.SenderID, Name: msg.SenderName},
				{ID: sess.UserID, Name: sess.DisplayName},
			},
		}
		if !conv.ValidParticipants() {
			s.mu.Unlock()
			log.Printf("dropping inbound message %s: sender is the current user of an unknown conversation", msg.ID)
			return
		}
	} else if !conv.HasParticipant(msg.SenderID) {
		s.mu.Unlock()
		log.Printf("dropping inbound message %s: sender %s is not in conversation %s", msg.ID, msg.SenderID, msg.ConversationID)
		return
	}

	isNew := !containsMessage(conv.Messages, msg.ID)
	conv.Messages = append(append([]models.Message(nil), conv.Messages...), msg)
	s.upsertLocked(conv)
	if isNew && msg.SenderID != sess.UserID && s.selected != msg.ConversationID {
		s.unread[msg.ConversationID]++
	}
	s.mu.Unlock()

	s.listeners.Notify(Change{ConversationID: msg.ConversationID})
}

// OnChange registers fn for every store change.
func (s *Store) OnChange(fn func(Change)) (cancel func()) {
	return s.listeners.Add(fn)
}

// Reset drops every conversation. It runs when the session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	s.convs = make(map[string]models.Conversation)
	s.unread = make(map[string]int)
	s.selected = ""
	s.mu.Unlock()

	s.listeners.Notify(Change{})
}

func (s *Store) me() string {
	sess, _ := s.session.Current()
	return sess.UserID
}

// sameUser reports whether the session that started an operation is still the
// current one. Results of requests that outlive their session are dropped.
func (s *Store) sameUser(userID string) bool {
	sess, ok := s.session.Current()
	return ok && sess.UserID == userID
}

func (s *Store) findPair(a, b string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.sortedLocked(func(c models.Conversation) bool { return c.Pairs(a, b) })
	if len(matches) == 0 {
		return models.Conversation{}, false
	}
	return matches[0], true
}

func (s *Store) upsertLocked(conv models.Conversation) models.Conversation {
	existing, ok := s.convs[conv.ID]
	if !ok {
		existing = models.Conversation{ID: conv.ID}
	}
	merged := mergeConversation(existing, conv)
	s.convs[conv.ID] = merged
	return merged
}

func (s *Store) sortedLocked(keep func(models.Conversation) bool) []models.Conversation {
	out := make([]models.Conversation, 0, len(s.convs))
	for _, conv := range s.convs {
		if keep(conv) {
			out = append(out, clone(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, iok := out[i].LastMessage()
		lj, jok := out[j].LastMessage()
		switch {
		case iok && jok && !li.CreatedAt.Equal(lj.CreatedAt):
			return li.CreatedAt.After(lj.CreatedAt)
		case iok != jok:
			return iok
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func containsMessage(msgs []models.Message, id string) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}

func clone(c models.Conversation) models.Conversation {
	c.Participants = append([]models.Participant(nil), c.Participants...)
	c.Messages = append([]models.Message(nil), c.Messages...)
	return c
}
