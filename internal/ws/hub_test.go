package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(nil, ConnInfo{ConnID: "c1"})
	if hub.Len() != 1 {
		t.Fatalf("expected client to be registered")
	}

	hub.RemoveClient(nil)
	if hub.Len() != 0 {
		t.Fatalf("expected client to be removed")
	}
}

func TestUpdatesHandlerSendsSnapshotAndBroadcasts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	handler := NewUpdatesHandler(hub, func() []Update {
		return []Update{{Type: TopicSession, Data: map[string]string{"userId": "u1"}}}
	})
	r := gin.New()
	r.GET("/ws/updates", handler.Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/updates", http.Header{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Update
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Type != TopicSession {
		t.Fatalf("expected session snapshot, got %q", first.Type)
	}

	hub.Broadcast(Update{Type: TopicNotifications, Data: map[string]int{"unread": 2}})
	var next Update
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if next.Type != TopicNotifications {
		t.Fatalf("expected notifications update, got %q", next.Type)
	}
}
