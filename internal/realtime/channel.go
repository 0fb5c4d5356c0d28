// Package realtime keeps the persistent broker connection of a signed-in user.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
	"huntx-client/internal/observability"
)

const writeWait = 10 * time.Second

var errStale = errors.New("connection superseded")

// Handler receives the raw data of one inbound event.
type Handler func(data json.RawMessage)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`

	seq uint64
}

// Option configures a Channel.
type Option func(*Channel)

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithBackOff replaces the reconnect policy. fn is called once per Connect.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Channel) { c.newBackOff = fn }
}

// ExponentialBackOff is the default reconnect policy: doubling waits between
// initial and max with 50% jitter, retried forever.
func ExponentialBackOff(initial, max time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.Multiplier = 2
		b.MaxInterval = max
		b.RandomizationFactor = 0.5
		b.MaxElapsedTime = 0
		b.Reset()
		return b
	}
}

// Channel is a reconnecting event channel. Outbound events emitted while the
// transport is down are queued and flushed in order after the join frame.
// Inbound events are delivered at most once.
type Channel struct {
	url        string
	dialer     *websocket.Dialer
	newBackOff func() backoff.BackOff

	mu     sync.Mutex
	state  State
	gen    uint64
	userID string
	conn   *websocket.Conn
	cancel context.CancelFunc
	closed bool
	seq    uint64
	queue  []frame

	writeMu sync.Mutex

	hmu      sync.RWMutex
	handlers map[string][]*Subscription

	stateListeners listeners.Registry[State]
}

// NewChannel builds a channel for the broker at rawURL (ws:// or wss://).
func NewChannel(rawURL string, opts ...Option) *Channel {
	c := &Channel{
		url:        rawURL,
		dialer:     websocket.DefaultDialer,
		newBackOff: ExponentialBackOff(500*time.Millisecond, 30*time.Second),
		handlers:   make(map[string][]*Subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the channel for sess and keeps it open until Disconnect. It
// returns once the connection loop is started; dial failures are retried in the
// background. Connecting again for the same user is a no-op.
func (c *Channel) Connect(ctx context.Context, sess models.Session) error {
	if !sess.Valid() {
		return models.NewError(models.KindChannel, "connect", models.ErrNotSignedIn)
	}

	c.mu.Lock()
	if c.cancel != nil && c.userID == sess.UserID {
		c.mu.Unlock()
		return nil
	}
	if c.userID != "" && c.userID != sess.UserID {
		c.queue = nil
	}
	c.stopLocked()
	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.userID = sess.UserID
	c.closed = false
	c.mu.Unlock()

	c.setState(gen, StateConnecting)
	go c.run(runCtx, gen, sess)
	return nil
}

// Disconnect closes the channel and drops queued emits. Later emits fail until
// the next Connect.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.closed = true
	c.queue = nil
	c.stopLocked()
	c.gen++
	gen := c.gen
	c.userID = ""
	c.mu.Unlock()

	observability.SetRealtimeQueueDepth(0)
	c.setState(gen, StateDisconnected)
}

func (c *Channel) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChange registers fn for every state transition.
func (c *Channel) OnStateChange(fn func(State)) (cancel func()) {
	return c.stateListeners.Add(fn)
}

// Emit sends event with payload. While the transport is down the frame is queued.
// After Disconnect it fails with ErrChannelClosed.
func (c *Channel) Emit(event string, payload any) error {
	op := "emit " + event
	data, err := json.Marshal(payload)
	if err != nil {
		return models.NewError(models.KindChannel, op, err)
	}
	f := frame{Event: event, Data: data}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.NewError(models.KindChannel, op, models.ErrChannelClosed)
	}
	c.seq++
	f.seq = c.seq
	if c.state != StateConnected || c.conn == nil {
		c.queue = append(c.queue, f)
		depth := len(c.queue)
		c.mu.Unlock()
		observability.SetRealtimeQueueDepth(depth)
		return nil
	}
	conn, gen := c.conn, c.gen
	c.mu.Unlock()

	if err := c.writeFrame(conn, f); err != nil {
		log.Printf("realtime emit failed event=%s, queued for reconnect: %v", event, err)
		c.mu.Lock()
		if !c.closed && gen == c.gen {
			c.requeueLocked(f)
		}
		depth := len(c.queue)
		c.mu.Unlock()
		observability.SetRealtimeQueueDepth(depth)
	}
	return nil
}

// requeueLocked puts back a frame whose write failed, in emit order. Frames
// queued by later emits during the same drop stay behind it.
func (c *Channel) requeueLocked(f frame) {
	i := slices.IndexFunc(c.queue, func(q frame) bool { return q.seq > f.seq })
	if i < 0 {
		i = len(c.queue)
	}
	c.queue = slices.Insert(c.queue, i, f)
}

// Subscription is one registered handler.
type Subscription struct {
	ch    *Channel
	event string
	fn    Handler
	once  sync.Once
}

// On registers fn for event. Handlers of one channel run one at a time, in
// registration order, on the read goroutine.
func (c *Channel) On(event string, fn Handler) *Subscription {
	sub := &Subscription{ch: c, event: event, fn: fn}
	c.hmu.Lock()
	c.handlers[event] = append(c.handlers[event], sub)
	c.hmu.Unlock()
	return sub
}

// Unsubscribe removes exactly this handler. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		c := s.ch
		c.hmu.Lock()
		defer c.hmu.Unlock()
		subs := c.handlers[s.event]
		for i, sub := range subs {
			if sub == s {
				c.handlers[s.event] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(c.handlers[s.event]) == 0 {
			delete(c.handlers, s.event)
		}
	})
}

func (c *Channel) dispatch(event string, data json.RawMessage) {
	c.hmu.RLock()
	subs := append([]*Subscription(nil), c.handlers[event]...)
	c.hmu.RUnlock()
	for _, sub := range subs {
		sub.fn(data)
	}
}

func (c *Channel) setState(gen uint64, s State) {
	c.mu.Lock()
	if gen != c.gen || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	observability.SetRealtimeConnected(s == StateConnected)
	c.stateListeners.Notify(s)
}

func (c *Channel) run(ctx context.Context, gen uint64, sess models.Session) {
	bo := c.newBackOff()
	for {
		conn, err := c.dial(ctx, sess)
		if err == nil {
			bo.Reset()
			err = c.serve(ctx, gen, conn, sess)
		}
		if ctx.Err() != nil || errors.Is(err, errStale) {
			return
		}

		log.Printf("realtime connection lost user_id=%s: %v", sess.UserID, models.NewError(models.KindChannel, "realtime", err))
		c.setState(gen, StateReconnecting)
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			log.Printf("realtime giving up user_id=%s", sess.UserID)
			c.setState(gen, StateDisconnected)
			return
		}
		observability.IncRealtimeReconnect()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (c *Channel) dial(ctx context.Context, sess models.Session) (*websocket.Conn, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", sess.Token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)
	conn, _, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		publishLifecycle(context.WithoutCancel(ctx), "error", ConnInfo{UserID: sess.UserID, URL: c.url}, err.Error())
		return nil, err
	}
	return conn, nil
}

// serve owns conn until it fails: join, flush the queue, then read.
func (c *Channel) serve(ctx context.Context, gen uint64, conn *websocket.Conn, sess models.Session) error {
	info := ConnInfo{ConnID: uuid.NewString(), UserID: sess.UserID, URL: c.url, ConnectedAt: time.Now()}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return errStale
	}
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
	}()

	if err := c.writeFrame(conn, joinFrame(sess.UserID)); err != nil {
		return err
	}
	if err := c.flush(gen, conn); err != nil {
		return err
	}

	pubCtx := context.WithoutCancel(ctx)
	log.Printf("realtime connected user_id=%s conn_id=%s", sess.UserID, info.ConnID)
	publishLifecycle(pubCtx, "connect", info, "")

	err := c.readLoop(conn)
	publishLifecycle(pubCtx, "disconnect", info, err.Error())
	return err
}

func joinFrame(userID string) frame {
	data, _ := json.Marshal(userID)
	return frame{Event: EventJoin, Data: data}
}

// flush writes queued frames in order. The switch to Connected happens under
// the same lock that saw the queue empty, so no Emit can queue a frame that
// would be left behind.
func (c *Channel) flush(gen uint64, conn *websocket.Conn) error {
	for {
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return errStale
		}
		if len(c.queue) == 0 {
			changed := c.state != StateConnected
			c.state = StateConnected
			c.mu.Unlock()
			observability.SetRealtimeQueueDepth(0)
			if changed {
				observability.SetRealtimeConnected(true)
				c.stateListeners.Notify(StateConnected)
			}
			return nil
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		if err := c.writeFrame(conn, next); err != nil {
			c.mu.Lock()
			if gen == c.gen {
				c.requeueLocked(next)
			}
			c.mu.Unlock()
			return err
		}
	}
}

func (c *Channel) writeFrame(conn *websocket.Conn, f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		return err
	}
	observability.IncRealtimeEvent("out", f.Event)
	return nil
}

func (c *Channel) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			log.Printf("realtime dropping malformed frame: %v", err)
			continue
		}
		observability.IncRealtimeEvent("in", f.Event)
		c.dispatch(f.Event, f.Data)
	}
}
