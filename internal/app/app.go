// Package app wires the client stores together and follows the session
// lifecycle.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/jmoiron/sqlx"

	"huntx-client/internal/api"
	"huntx-client/internal/config"
	"huntx-client/internal/connections"
	"huntx-client/internal/conversations"
	"huntx-client/internal/db"
	"huntx-client/internal/jobs"
	"huntx-client/internal/models"
	"huntx-client/internal/notifications"
	"huntx-client/internal/observability"
	"huntx-client/internal/policy"
	"huntx-client/internal/posts"
	"huntx-client/internal/profile"
	"huntx-client/internal/rabbitmq"
	"huntx-client/internal/realtime"
	"huntx-client/internal/repositories"
	"huntx-client/internal/session"
	"huntx-client/internal/telemetry"
)

const auditRoutingKey = "audit.client"

// App owns one instance of every store. They are created once and shared by
// reference with every consumer.
type App struct {
	Config        *config.Config
	API           *api.Client
	Policy        *policy.Engine
	Session       *session.Store
	Channel       *realtime.Channel
	Conversations *conversations.Store
	Notifications *notifications.Aggregator
	Connections   *connections.Tracker
	Jobs          *jobs.Board
	Posts         *posts.Feed
	Profile       *profile.Service
	Audit         *telemetry.AuditEmitter

	db              *sqlx.DB
	publisher       rabbitmq.Publisher
	shutdownTracing func(context.Context) error
	cancels         []func()

	mu         sync.Mutex
	activeUser string
	loads      sync.WaitGroup
}

// New builds the client from cfg. Call Start to restore the persisted session.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	shutdown, err := telemetry.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))
	audit := telemetry.NewAuditEmitter(publisher, auditRoutingKey, cfg.Telemetry.ServiceName, cfg.Telemetry.Environment)

	database, err := db.Connect(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		_ = publisher.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("open storage: %w", err)
	}

	engine, err := policy.LoadEngine(ctx, cfg.Policy.File)
	if err != nil {
		database.Close()
		_ = publisher.Close()
		_ = shutdown(ctx)
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, nil)
	sess := session.NewStore(client, repositories.NewSessionRepo(database), audit)
	client.SetTokenSource(sess)

	channel := realtime.NewChannel(cfg.RealtimeURL(),
		realtime.WithBackOff(realtime.ExponentialBackOff(cfg.Realtime.InitialBackoff, cfg.Realtime.MaxBackoff)))

	a := &App{
		Config:          cfg,
		API:             client,
		Policy:          engine,
		Session:         sess,
		Channel:         channel,
		Conversations:   conversations.NewStore(client, channel, sess),
		Notifications:   notifications.NewAggregator(client, sess),
		Connections:     connections.NewTracker(client, sess),
		Jobs:            jobs.NewBoard(client, engine, sess),
		Posts:           posts.NewFeed(client, sess),
		Profile:         profile.NewService(client, sess),
		Audit:           audit,
		db:              database,
		publisher:       publisher,
		shutdownTracing: shutdown,
	}
	a.wire()
	return a, nil
}

func (a *App) wire() {
	subs := []*realtime.Subscription{
		a.Channel.On(realtime.EventNewMessage, a.Conversations.HandleIncoming),
	}
	for event, t := range notifications.PushEvents {
		subs = append(subs, a.Channel.On(event, a.Notifications.HandlePush(t)))
	}
	subs = append(subs, a.Channel.On(realtime.EventNewConnectionNotification, func(json.RawMessage) {
		a.background("connections", func(ctx context.Context) error {
			_, err := a.Connections.Load(ctx)
			return err
		})
	}))
	for _, sub := range subs {
		a.cancels = append(a.cancels, sub.Unsubscribe)
	}
	a.cancels = append(a.cancels, a.Session.OnChange(a.onSessionChange))
}

// Start restores the persisted session, which opens the realtime channel when
// one is present.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Init(ctx)
}

func (a *App) onSessionChange(s models.Session) {
	a.mu.Lock()
	prev := a.activeUser
	if s.Valid() && s.UserID == prev {
		a.mu.Unlock()
		return
	}
	if s.Valid() {
		a.activeUser = s.UserID
	} else {
		a.activeUser = ""
	}
	a.mu.Unlock()

	if prev != "" {
		a.Channel.Disconnect()
		a.Conversations.Reset()
		a.Notifications.Reset()
		a.Connections.Reset()
		a.Posts.Reset()
	}
	if !s.Valid() {
		return
	}

	if err := a.Channel.Connect(context.Background(), s); err != nil {
		log.Printf("realtime connect failed user_id=%s: %v", s.UserID, err)
	}
	a.background("conversations", func(ctx context.Context) error {
		_, err := a.Conversations.LoadConversations(ctx)
		return err
	})
	a.background("notifications", a.Notifications.Load)
	a.background("connections", func(ctx context.Context) error {
		_, err := a.Connections.Load(ctx)
		return err
	})
}

// background runs an initial load without blocking the caller. Failures are
// logged only.
func (a *App) background(name string, load func(context.Context) error) {
	a.loads.Add(1)
	go func() {
		defer a.loads.Done()
		if err := load(context.Background()); err != nil {
			log.Printf("initial %s load failed: %v", name, err)
		}
	}()
}

// WaitLoads blocks until every background load has finished.
func (a *App) WaitLoads() {
	a.loads.Wait()
}

// WaitConnected blocks until the realtime channel is connected or ctx is done.
func (a *App) WaitConnected(ctx context.Context) error {
	connected := make(chan struct{}, 1)
	cancel := a.Channel.OnStateChange(func(s realtime.State) {
		if s == realtime.StateConnected {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	if a.Channel.State() == realtime.StateConnected {
		return nil
	}
	select {
	case <-connected:
		return nil
	case <-ctx.Done():
		return models.NewError(models.KindChannel, "wait connected", ctx.Err())
	}
}

// Close disconnects the channel and releases storage, broker and tracing.
func (a *App) Close(ctx context.Context) error {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.Channel.Disconnect()
	a.loads.Wait()

	var firstErr error
	if err := a.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.shutdownTracing(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
