package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/models"
)

type brokerConn struct {
	conn  *websocket.Conn
	auth  string
	token string
}

func (bc *brokerConn) read(t *testing.T) frame {
	t.Helper()
	require.NoError(t, bc.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, bc.conn.ReadJSON(&f))
	return f
}

func (bc *brokerConn) send(t *testing.T, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, bc.conn.WriteJSON(frame{Event: event, Data: raw}))
}

type fakeBroker struct {
	srv   *httptest.Server
	conns chan *brokerConn
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()
	b := &fakeBroker{conns: make(chan *brokerConn, 8)}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.conns <- &brokerConn{conn: conn, auth: r.Header.Get("Authorization"), token: r.URL.Query().Get("token")}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBroker) url() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/ws"
}

func (b *fakeBroker) accept(t *testing.T) *brokerConn {
	t.Helper()
	select {
	case bc := <-b.conns:
		t.Cleanup(func() { bc.conn.Close() })
		return bc
	case <-time.After(3 * time.Second):
		t.Fatal("no connection from channel")
	}
	return nil
}

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(10 * time.Millisecond)
}

func newTestChannel(t *testing.T, b *fakeBroker) *Channel {
	t.Helper()
	ch := NewChannel(b.url(), WithBackOff(fastBackOff))
	t.Cleanup(ch.Disconnect)
	return ch
}

var testSession = models.Session{UserID: "u1", Token: "tok", Role: models.RoleJobSeeker}

func decodeString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestConnectJoinsFirstThenFlushesQueue(t *testing.T) {
	b := newFakeBroker(t)
	ch := newTestChannel(t, b)

	require.NoError(t, ch.Emit(EventSendMessage, map[string]string{"content": "first"}))
	require.NoError(t, ch.Emit(EventSendMessage, map[string]string{"content": "second"}))
	require.NoError(t, ch.Connect(context.Background(), testSession))

	bc := b.accept(t)
	assert.Equal(t, "Bearer tok", bc.auth)
	assert.Equal(t, "tok", bc.token)

	join := bc.read(t)
	assert.Equal(t, EventJoin, join.Event)
	assert.Equal(t, "u1", decodeString(t, join.Data))

	for _, want := range []string{"first", "second"} {
		f := bc.read(t)
		assert.Equal(t, EventSendMessage, f.Event)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(f.Data, &payload))
		assert.Equal(t, want, payload["content"])
	}

	require.Eventually(t, func() bool { return ch.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectReemitsJoin(t *testing.T) {
	b := newFakeBroker(t)
	ch := newTestChannel(t, b)

	var mu sync.Mutex
	var states []State
	ch.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	require.NoError(t, ch.Connect(context.Background(), testSession))
	first := b.accept(t)
	assert.Equal(t, EventJoin, first.read(t).Event)
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)

	first.conn.Close()

	second := b.accept(t)
	join := second.read(t)
	assert.Equal(t, EventJoin, join.Event)
	assert.Equal(t, "u1", decodeString(t, join.Data))
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StateReconnecting)
}

func TestHandlersAndUnsubscribe(t *testing.T) {
	b := newFakeBroker(t)
	ch := newTestChannel(t, b)

	gotA := make(chan string, 4)
	gotB := make(chan string, 4)
	subA := ch.On(EventNewMessage, func(data json.RawMessage) { gotA <- string(data) })
	ch.On(EventNewMessage, func(data json.RawMessage) { gotB <- string(data) })

	require.NoError(t, ch.Connect(context.Background(), testSession))
	bc := b.accept(t)
	bc.read(t)

	bc.send(t, EventNewMessage, "one")
	assert.Equal(t, `"one"`, receive(t, gotA))
	assert.Equal(t, `"one"`, receive(t, gotB))

	subA.Unsubscribe()
	subA.Unsubscribe()
	bc.send(t, EventNewMessage, "two")
	assert.Equal(t, `"two"`, receive(t, gotB))
	select {
	case v := <-gotA:
		t.Fatalf("unsubscribed handler received %s", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive(t *testing.T, c chan string) string {
	t.Helper()
	select {
	case v := <-c:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
	return ""
}

func TestEmitAfterDisconnectFails(t *testing.T) {
	b := newFakeBroker(t)
	ch := newTestChannel(t, b)

	require.NoError(t, ch.Connect(context.Background(), testSession))
	b.accept(t)
	ch.Disconnect()

	assert.Equal(t, StateDisconnected, ch.State())
	err := ch.Emit(EventSendMessage, "late")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrChannelClosed)
	assert.True(t, models.IsKind(err, models.KindChannel))
}

func TestConnectRequiresSession(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/ws")
	err := ch.Connect(context.Background(), models.Session{Token: "tok"})
	assert.ErrorIs(t, err, models.ErrNotSignedIn)
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestUnreachableBrokerKeepsReconnecting(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/ws", WithBackOff(fastBackOff))
	t.Cleanup(ch.Disconnect)

	require.NoError(t, ch.Connect(context.Background(), testSession))
	require.Eventually(t, func() bool { return ch.State() == StateReconnecting }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, ch.Emit(EventSendMessage, "queued"))
}

func watchStates(ch *Channel) <-chan State {
	out := make(chan State, 16)
	ch.OnStateChange(func(s State) {
		select {
		case out <- s:
		default:
		}
	})
	return out
}

func waitState(t *testing.T, states <-chan State, want State) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-timeout:
			t.Fatalf("channel never reached %s", want)
		}
	}
}

func readContent(t *testing.T, bc *brokerConn) string {
	t.Helper()
	f := bc.read(t)
	require.Equal(t, EventSendMessage, f.Event)
	return decodeString(t, f.Data)
}

func TestEmitsWhileReconnectingFlushAfterJoin(t *testing.T) {
	b := newFakeBroker(t)
	ch := NewChannel(b.url(), WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(200 * time.Millisecond)
	}))
	t.Cleanup(ch.Disconnect)
	states := watchStates(ch)

	require.NoError(t, ch.Connect(context.Background(), testSession))
	first := b.accept(t)
	assert.Equal(t, EventJoin, first.read(t).Event)
	waitState(t, states, StateConnected)

	first.conn.Close()
	waitState(t, states, StateReconnecting)
	require.NoError(t, ch.Emit(EventSendMessage, "a"))
	require.NoError(t, ch.Emit(EventSendMessage, "b"))
	assert.Equal(t, StateReconnecting, ch.State())

	second := b.accept(t)
	join := second.read(t)
	assert.Equal(t, EventJoin, join.Event)
	assert.Equal(t, "u1", decodeString(t, join.Data))
	assert.Equal(t, "a", readContent(t, second))
	assert.Equal(t, "b", readContent(t, second))
	waitState(t, states, StateConnected)
}

func TestEmitStreamAcrossReconnectStaysInOrder(t *testing.T) {
	b := newFakeBroker(t)
	ch := NewChannel(b.url(), WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(30 * time.Millisecond)
	}))
	t.Cleanup(ch.Disconnect)
	states := watchStates(ch)

	require.NoError(t, ch.Connect(context.Background(), testSession))
	first := b.accept(t)
	first.read(t)
	waitState(t, states, StateConnected)

	first.conn.Close()
	waitState(t, states, StateReconnecting)

	const total = 100
	go func() {
		for i := 0; i < total; i++ {
			_ = ch.Emit(EventSendMessage, strconv.Itoa(i))
			time.Sleep(time.Millisecond)
		}
	}()

	second := b.accept(t)
	assert.Equal(t, EventJoin, second.read(t).Event)
	for i := 0; i < total; i++ {
		require.Equal(t, strconv.Itoa(i), readContent(t, second))
	}
}

func TestRequeueKeepsEmitOrder(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/ws")
	ch.queue = []frame{{Event: "b", seq: 2}, {Event: "c", seq: 3}}

	ch.requeueLocked(frame{Event: "a", seq: 1})
	ch.requeueLocked(frame{Event: "d", seq: 4})

	var events []string
	for _, f := range ch.queue {
		events = append(events, f.Event)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, events)
}

func TestFailedWritesRequeueInEmitOrder(t *testing.T) {
	b := newFakeBroker(t)
	ch := NewChannel(b.url(), WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(200 * time.Millisecond)
	}))
	t.Cleanup(ch.Disconnect)
	states := watchStates(ch)

	require.NoError(t, ch.Connect(context.Background(), testSession))
	first := b.accept(t)
	first.read(t)
	waitState(t, states, StateConnected)

	ch.mu.Lock()
	conn := ch.conn
	ch.mu.Unlock()
	require.NoError(t, conn.Close())

	require.NoError(t, ch.Emit(EventSendMessage, "a"))
	require.NoError(t, ch.Emit(EventSendMessage, "b"))
	require.NoError(t, ch.Emit(EventSendMessage, "c"))

	second := b.accept(t)
	assert.Equal(t, EventJoin, second.read(t).Event)
	for _, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, readContent(t, second))
	}
}
