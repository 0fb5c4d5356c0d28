// Package connections tracks the professional network of the signed-in user.
package connections

import (
	"context"
	"sort"
	"strings"
	"sync"

	"huntx-client/internal/api"
	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
)

// API is the part of the REST client used by the tracker.
type API interface {
	Connections(ctx context.Context) (models.ConnectionList, error)
	ConnectionAction(ctx context.Context, action api.ConnectionAction, userID string) error
	Users(ctx context.Context) ([]models.Contact, error)
}

// SessionSource reports the signed-in user.
type SessionSource interface {
	Current() (models.Session, bool)
}

// Tracker keeps one ConnectionRequest per counterpart. Every local transition
// is checked before the backend is called, and applied only after it succeeds.
type Tracker struct {
	api     API
	session SessionSource

	mu       sync.RWMutex
	requests map[string]models.ConnectionRequest
	contacts map[string]models.Contact

	listeners listeners.Registry[models.ConnectionList]
}

func NewTracker(api API, session SessionSource) *Tracker {
	return &Tracker{
		api:      api,
		session:  session,
		requests: make(map[string]models.ConnectionRequest),
		contacts: make(map[string]models.Contact),
	}
}

// Load replaces local state with the backend view. A pair already connected
// locally stays connected even if the backend still reports it pending.
func (t *Tracker) Load(ctx context.Context) (models.ConnectionList, error) {
	const op = "load connections"
	sess, ok := t.session.Current()
	if !ok {
		return models.ConnectionList{}, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	list, err := t.api.Connections(ctx)
	if err != nil {
		return models.ConnectionList{}, err
	}
	me := sess.UserID

	next := make(map[string]models.ConnectionRequest)
	contacts := make(map[string]models.Contact)
	for _, c := range list.PendingRequests {
		next[c.ID] = models.ConnectionRequest{RequesterID: c.ID, TargetID: me, Status: models.ConnectionPending}
		contacts[c.ID] = c
	}
	for _, c := range list.SentRequests {
		next[c.ID] = models.ConnectionRequest{RequesterID: me, TargetID: c.ID, Status: models.ConnectionPending}
		contacts[c.ID] = c
	}
	for _, c := range list.Connections {
		req := next[c.ID]
		if req.RequesterID == "" {
			req = models.ConnectionRequest{RequesterID: c.ID, TargetID: me}
		}
		req.Status = models.ConnectionConnected
		next[c.ID] = req
		contacts[c.ID] = c
	}

	t.mu.Lock()
	if cur, ok := t.session.Current(); !ok || cur.UserID != me {
		t.mu.Unlock()
		return models.ConnectionList{}, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	for id, prev := range t.requests {
		if cur, ok := next[id]; ok && prev.Status == models.ConnectionConnected && cur.Status == models.ConnectionPending {
			cur.Status = models.ConnectionConnected
			next[id] = cur
		}
	}
	t.requests = next
	t.contacts = contacts
	out := t.listLocked(me)
	t.mu.Unlock()

	t.listeners.Notify(out)
	return out, nil
}

// Status returns the relationship with userID.
func (t *Tracker) Status(userID string) models.ConnectionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	req, ok := t.requests[userID]
	if !ok || req.Status == "" {
		return models.ConnectionNone
	}
	return req.Status
}

// Request returns the tracked request with userID, if any.
func (t *Tracker) Request(userID string) (models.ConnectionRequest, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	req, ok := t.requests[userID]
	return req, ok
}

// List returns the current network grouped by status.
func (t *Tracker) List() models.ConnectionList {
	sess, _ := t.session.Current()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.listLocked(sess.UserID)
}

// Connect sends a connection request to userID.
func (t *Tracker) Connect(ctx context.Context, userID string) error {
	return t.apply(ctx, api.ActionConnect, userID, models.ConnectionPending, nil)
}

// Accept accepts the pending request userID sent.
func (t *Tracker) Accept(ctx context.Context, userID string) error {
	return t.apply(ctx, api.ActionAccept, userID, models.ConnectionConnected, requireIncoming)
}

// Reject declines the pending request userID sent.
func (t *Tracker) Reject(ctx context.Context, userID string) error {
	return t.apply(ctx, api.ActionReject, userID, models.ConnectionNone, requireIncoming)
}

// Remove ends an existing connection with userID.
func (t *Tracker) Remove(ctx context.Context, userID string) error {
	return t.apply(ctx, api.ActionRemove, userID, models.ConnectionNone, func(req models.ConnectionRequest, me string) error {
		if req.Status != models.ConnectionConnected {
			return models.ErrInvalidTransition
		}
		return nil
	})
}

func requireIncoming(req models.ConnectionRequest, me string) error {
	if !req.Incoming(me) {
		return models.ErrInvalidTransition
	}
	return nil
}

func (t *Tracker) apply(ctx context.Context, action api.ConnectionAction, userID string, to models.ConnectionStatus, guard func(models.ConnectionRequest, string) error) error {
	op := string(action) + " connection"
	sess, ok := t.session.Current()
	if !ok {
		return models.NewError(models.KindSend, op, models.ErrNotSignedIn)
	}
	me := sess.UserID
	if userID == "" || userID == me {
		return models.Errorf(models.KindSend, op, models.ErrValidation, "a connection needs another user")
	}

	req, _ := t.Request(userID)
	if req.RequesterID == "" {
		req = models.ConnectionRequest{RequesterID: me, TargetID: userID, Status: models.ConnectionNone}
	}
	next := req
	if err := next.Transition(to); err != nil {
		return models.NewError(models.KindSend, op, err)
	}
	if guard == nil {
		guard = func(models.ConnectionRequest, string) error { return nil }
	}
	if err := guard(req, me); err != nil {
		return models.Errorf(models.KindSend, op, err, "cannot %s from status %s", action, t.Status(userID))
	}

	if err := t.api.ConnectionAction(ctx, action, userID); err != nil {
		return models.Reclassify(err, models.KindSend)
	}

	if to == models.ConnectionPending {
		next.RequesterID, next.TargetID = me, userID
	}

	t.mu.Lock()
	if to == models.ConnectionNone {
		delete(t.requests, userID)
	} else {
		t.requests[userID] = next
	}
	out := t.listLocked(me)
	t.mu.Unlock()

	t.listeners.Notify(out)
	return nil
}

// Search lists users whose name or role contains query, excluding the current
// user.
func (t *Tracker) Search(ctx context.Context, query string) ([]models.Contact, error) {
	sess, ok := t.session.Current()
	if !ok {
		return nil, models.NewError(models.KindFetch, "search users", models.ErrNotSignedIn)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	users, err := t.api.Users(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Contact
	for _, u := range users {
		if u.ID == sess.UserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), query) || strings.Contains(strings.ToLower(string(u.Role)), query) {
			out = append(out, u)
		}
	}
	return out, nil
}

// OnChange registers fn for every network change.
func (t *Tracker) OnChange(fn func(models.ConnectionList)) (cancel func()) {
	return t.listeners.Add(fn)
}

// Reset drops every tracked request. It runs when the session ends.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.requests = make(map[string]models.ConnectionRequest)
	t.contacts = make(map[string]models.Contact)
	t.mu.Unlock()

	t.listeners.Notify(models.ConnectionList{})
}

func (t *Tracker) listLocked(me string) models.ConnectionList {
	var out models.ConnectionList
	ids := make([]string, 0, len(t.requests))
	for id := range t.requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		req := t.requests[id]
		contact, ok := t.contacts[id]
		if !ok {
			contact = models.Contact{ID: id}
		}
		switch {
		case req.Status == models.ConnectionConnected:
			out.Connections = append(out.Connections, contact)
		case req.Incoming(me):
			out.PendingRequests = append(out.PendingRequests, contact)
		case req.Status == models.ConnectionPending:
			out.SentRequests = append(out.SentRequests, contact)
		}
	}
	return out
}
