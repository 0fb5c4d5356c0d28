package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"huntx-client/internal/middleware"
	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
	"huntx-client/internal/ws"
)

// RouterConfig carries everything the bridge router serves.
type RouterConfig struct {
	ServiceName   string
	Token         string
	Debug         bool
	Audit         *telemetry.AuditEmitter
	Session       SessionService
	Conversations ConversationService
	Notifications NotificationService
	Connections   ConnectionService
	Updates       *ws.UpdatesHandler
}

// NewRouter builds the view bridge.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestID(),
		observability.HTTPMetricsMiddleware(),
		middleware.BridgeAuth(cfg.Token),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionHandler := NewSessionHandler(cfg.Session)
	router.GET("/session", sessionHandler.GetSession)
	router.POST("/session/signin", sessionHandler.SignIn)
	router.POST("/session/signout", sessionHandler.SignOut)
	router.POST("/session/theme/toggle", sessionHandler.ToggleTheme)

	conversationHandler := NewConversationHandler(cfg.Conversations)
	router.GET("/conversations", conversationHandler.ListConversations)
	router.POST("/conversations/start", conversationHandler.StartConversation)
	router.POST("/conversations/:conversation_id/select", conversationHandler.SelectConversation)
	router.POST("/conversations/:conversation_id/messages", conversationHandler.PostMessage)

	notificationHandler := NewNotificationHandler(cfg.Notifications)
	router.GET("/notifications", notificationHandler.ListNotifications)
	router.POST("/notifications/mark-read", notificationHandler.MarkRead)

	connectionHandler := NewConnectionHandler(cfg.Connections)
	router.GET("/connections", connectionHandler.ListConnections)
	router.POST("/connections/:user_id/connect", connectionHandler.Connect)
	router.POST("/connections/:user_id/accept", connectionHandler.Accept)
	router.POST("/connections/:user_id/reject", connectionHandler.Reject)
	router.POST("/connections/:user_id/remove", connectionHandler.Remove)

	if cfg.Updates != nil {
		router.GET("/ws/updates", cfg.Updates.Handle)
	}

	RegisterDebugRoutes(router, cfg.Audit, cfg.Session, cfg.Debug)
	return router
}
