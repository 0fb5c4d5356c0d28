// Package notifications aggregates the alerts pushed to the signed-in user.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"huntx-client/internal/api"
	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
	"huntx-client/internal/observability"
	"huntx-client/internal/realtime"
)

// API is the part of the REST client used by the aggregator.
type API interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) error
}

// PushEvents maps each realtime event to the notification type it carries.
var PushEvents = map[string]models.NotificationType{
	realtime.EventNewMessageNotification:    models.NotificationMessage,
	realtime.EventNewJobNotification:        models.NotificationJob,
	realtime.EventNewPostNotification:       models.NotificationPost,
	realtime.EventNewConnectionNotification: models.NotificationConnection,
}

// SessionSource reports the signed-in user.
type SessionSource interface {
	Current() (models.Session, bool)
}

// Aggregator keeps notifications newest first. Read flags only go from false
// to true.
type Aggregator struct {
	api     API
	session SessionSource

	mu    sync.RWMutex
	items []models.Notification

	listeners listeners.Registry[[]models.Notification]
	unread    listeners.Registry[int]
}

func NewAggregator(api API, session SessionSource) *Aggregator {
	return &Aggregator{api: api, session: session}
}

// Load fetches notifications from the backend and merges them by id. The
// result is dropped when the signed-in user changed while the call was out.
func (a *Aggregator) Load(ctx context.Context) error {
	const op = "load notifications"
	sess, ok := a.session.Current()
	if !ok {
		return models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	list, err := a.api.Notifications(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if !a.sameUser(sess.UserID) {
		a.mu.Unlock()
		return models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	byID := make(map[string]int, len(a.items))
	for i, n := range a.items {
		byID[n.ID] = i
	}
	for _, n := range list {
		if i, ok := byID[n.ID]; ok {
			n.Read = n.Read || a.items[i].Read
			a.items[i] = n
			continue
		}
		byID[n.ID] = len(a.items)
		a.items = append(a.items, n)
	}
	sort.SliceStable(a.items, func(i, j int) bool { return a.items[i].CreatedAt.After(a.items[j].CreatedAt) })
	a.mu.Unlock()

	a.notify()
	return nil
}

func (a *Aggregator) sameUser(userID string) bool {
	sess, ok := a.session.Current()
	return ok && sess.UserID == userID
}

// List returns a copy of every notification, newest first.
func (a *Aggregator) List() []models.Notification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Notification(nil), a.items...)
}

// UnreadCount is the number of notifications not yet read.
func (a *Aggregator) UnreadCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.unreadLocked()
}

func (a *Aggregator) unreadLocked() int {
	n := 0
	for _, item := range a.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAllRead flips every local notification to read, then tells the backend.
// A backend failure is returned but the local state is kept.
func (a *Aggregator) MarkAllRead(ctx context.Context) error {
	a.mu.Lock()
	changed := false
	for i := range a.items {
		if !a.items[i].Read {
			a.items[i].Read = true
			changed = true
		}
	}
	a.mu.Unlock()
	if changed {
		a.notify()
	}

	if err := a.api.MarkNotificationsRead(ctx); err != nil {
		log.Printf("mark notifications read failed, local state kept: %v", err)
		return models.Reclassify(err, models.KindFetch)
	}
	return nil
}

// HandlePush returns the handler for one of the PushEvents.
func (a *Aggregator) HandlePush(t models.NotificationType) realtime.Handler {
	return func(data json.RawMessage) {
		n, err := api.DecodeNotification(data, t)
		if err != nil {
			log.Printf("dropping %s notification: %v", t, models.NewError(models.KindFetch, "inbound notification", err))
			return
		}
		n.Read = false
		a.push(n)
	}
}

func (a *Aggregator) push(n models.Notification) {
	a.mu.Lock()
	for _, item := range a.items {
		if item.ID == n.ID {
			a.mu.Unlock()
			return
		}
	}
	a.items = append([]models.Notification{n}, a.items...)
	a.mu.Unlock()

	a.notify()
}

// OnChange registers fn for every list change.
func (a *Aggregator) OnChange(fn func([]models.Notification)) (cancel func()) {
	return a.listeners.Add(fn)
}

// OnUnreadChange registers fn for the unread count, called after every change.
func (a *Aggregator) OnUnreadChange(fn func(int)) (cancel func()) {
	return a.unread.Add(fn)
}

// Reset drops every notification. It runs when the session ends.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.items = nil
	a.mu.Unlock()

	a.notify()
}

func (a *Aggregator) notify() {
	a.mu.RLock()
	list := append([]models.Notification(nil), a.items...)
	unread := a.unreadLocked()
	a.mu.RUnlock()

	observability.SetUnreadNotifications(unread)
	a.listeners.Notify(list)
	a.unread.Notify(unread)
}
