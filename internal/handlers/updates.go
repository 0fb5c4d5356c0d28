package handlers

import (
	"github.com/gin-gonic/gin"

	"huntx-client/internal/app"
	"huntx-client/internal/conversations"
	"huntx-client/internal/models"
	"huntx-client/internal/realtime"
	"huntx-client/internal/ws"
)

// Bridge couples the client stores to the bridge router and its push stream.
type Bridge struct {
	app *app.App
	hub *ws.Hub
}

func NewBridge(a *app.App, hub *ws.Hub) *Bridge {
	return &Bridge{app: a, hub: hub}
}

// Router builds the gin engine serving a.
func (b *Bridge) Router(token string, debug bool) *gin.Engine {
	return NewRouter(RouterConfig{
		ServiceName:   b.app.Config.Telemetry.ServiceName,
		Token:         token,
		Debug:         debug,
		Audit:         b.app.Audit,
		Session:       b.app.Session,
		Conversations: b.app.Conversations,
		Notifications: b.app.Notifications,
		Connections:   b.app.Connections,
		Updates:       ws.NewUpdatesHandler(b.hub, b.Snapshot),
	})
}

// Follow pushes every store change to the hub until the returned cancel is called.
func (b *Bridge) Follow() (cancel func()) {
	cancels := []func(){
		b.app.Session.OnChange(func(models.Session) { b.hub.Broadcast(b.sessionUpdate()) }),
		b.app.Conversations.OnChange(func(ch conversations.Change) {
			update := b.conversationsUpdate()
			update.Data.(map[string]any)["changed"] = ch.ConversationID
			b.hub.Broadcast(update)
		}),
		b.app.Notifications.OnChange(func([]models.Notification) { b.hub.Broadcast(b.notificationsUpdate()) }),
		b.app.Connections.OnChange(func(models.ConnectionList) { b.hub.Broadcast(b.connectionsUpdate()) }),
		b.app.Channel.OnStateChange(func(s realtime.State) {
			b.hub.Broadcast(ws.Update{Type: ws.TopicRealtime, Data: map[string]any{"state": s.String()}})
		}),
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Snapshot returns the current state of every topic.
func (b *Bridge) Snapshot() []ws.Update {
	return []ws.Update{
		b.sessionUpdate(),
		b.conversationsUpdate(),
		b.notificationsUpdate(),
		b.connectionsUpdate(),
		{Type: ws.TopicRealtime, Data: map[string]any{"state": b.app.Channel.State().String()}},
	}
}

func (b *Bridge) sessionUpdate() ws.Update {
	sess, ok := b.app.Session.Current()
	return ws.Update{Type: ws.TopicSession, Data: map[string]any{"signed_in": ok, "session": sess}}
}

func (b *Bridge) conversationsUpdate() ws.Update {
	h := ConversationHandler{store: b.app.Conversations}
	data := map[string]any{
		"conversations": h.view(b.app.Conversations.Conversations()),
		"unread":        b.app.Conversations.UnreadTotal(),
	}
	if sel, ok := b.app.Conversations.Selected(); ok {
		data["selected"] = sel.ID
	}
	return ws.Update{Type: ws.TopicConversations, Data: data}
}

func (b *Bridge) notificationsUpdate() ws.Update {
	return ws.Update{Type: ws.TopicNotifications, Data: map[string]any{
		"notifications": b.app.Notifications.List(),
		"unread":        b.app.Notifications.UnreadCount(),
	}}
}

func (b *Bridge) connectionsUpdate() ws.Update {
	return ws.Update{Type: ws.TopicConnections, Data: b.app.Connections.List()}
}
