package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/api"
	"huntx-client/internal/connections"
	"huntx-client/internal/conversations"
	"huntx-client/internal/mocks"
	"huntx-client/internal/models"
	"huntx-client/internal/notifications"
	"huntx-client/internal/realtime"
	"huntx-client/internal/session"
)

type fixture struct {
	router   *gin.Engine
	session  *session.Store
	authAPI  *mocks.AuthAPIMock
	repo     *mocks.SessionRepositoryMock
	msgAPI   *mocks.MessageAPIMock
	notifAPI *mocks.NotificationAPIMock
	connAPI  *mocks.ConnectionAPIMock
	emitter  *mocks.EmitterMock
	convs    *conversations.Store
	notifs   *notifications.Aggregator
	tracker  *connections.Tracker
}

var annSession = models.Session{UserID: "u1", Token: "tok", Role: models.RoleJobSeeker, DisplayName: "Ann", Theme: models.ThemeLight}

func setupRouter(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		authAPI:  new(mocks.AuthAPIMock),
		repo:     new(mocks.SessionRepositoryMock),
		msgAPI:   new(mocks.MessageAPIMock),
		notifAPI: new(mocks.NotificationAPIMock),
		connAPI:  new(mocks.ConnectionAPIMock),
		emitter:  new(mocks.EmitterMock),
	}
	f.session = session.NewStore(f.authAPI, f.repo, nil)
	if signedIn {
		f.repo.On("Load", mock.Anything).Return(annSession, nil).Once()
	} else {
		f.repo.On("Load", mock.Anything).Return(models.Session{}, nil).Once()
	}
	require.NoError(t, f.session.Init(context.Background()))

	f.convs = conversations.NewStore(f.msgAPI, f.emitter, f.session)
	f.notifs = notifications.NewAggregator(f.notifAPI, f.session)
	f.tracker = connections.NewTracker(f.connAPI, f.session)
	f.router = NewRouter(RouterConfig{
		ServiceName:   "huntx-client-test",
		Session:       f.session,
		Conversations: f.convs,
		Notifications: f.notifs,
		Connections:   f.tracker,
	})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func (f *fixture) loadC42(t *testing.T) {
	t.Helper()
	f.msgAPI.On("Conversations", mock.Anything).Return([]models.Conversation{{
		ID:           "C42",
		Participants: []models.Participant{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Bob"}},
		Messages: []models.Message{{
			ID: "m1", ConversationID: "C42", SenderID: "u2", Content: "Hi",
			CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		}},
	}}, nil).Once()
	_, err := f.convs.LoadConversations(context.Background())
	require.NoError(t, err)
}

func TestHealthz(t *testing.T) {
	f := setupRouter(t, false)

	rec := f.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSessionSignedOut(t *testing.T) {
	f := setupRouter(t, false)

	rec := f.do(http.MethodGet, "/session", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["signed_in"])
	assert.Equal(t, "light", resp["session"].(map[string]any)["theme"])
}

func TestSignInSuccess(t *testing.T) {
	f := setupRouter(t, false)
	creds := models.Credentials{Email: "ann@example.com", Password: "pw"}
	f.authAPI.On("SignIn", mock.Anything, creds).
		Return(models.AuthResult{Token: "tok", Role: models.RoleJobSeeker, UserID: "u1", DisplayName: "Ann"}, nil).Once()
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("models.Session")).Return(nil).Once()

	rec := f.do(http.MethodPost, "/session/signin", `{"email":"ann@example.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["signed_in"])
	sess := resp["session"].(map[string]any)
	assert.Equal(t, "u1", sess["userId"])
	assert.NotContains(t, sess, "token")
	f.authAPI.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestSignInRejected(t *testing.T) {
	f := setupRouter(t, false)
	f.authAPI.On("SignIn", mock.Anything, mock.Anything).
		Return(nil, models.Errorf(models.KindAuth, "signin", models.ErrInvalidCredentials, "Invalid credentials")).Once()

	rec := f.do(http.MethodPost, "/session/signin", `{"email":"ann@example.com","password":"bad"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "Invalid credentials")
}

func TestSignInMissingFields(t *testing.T) {
	f := setupRouter(t, false)

	rec := f.do(http.MethodPost, "/session/signin", `{"email":"ann@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.authAPI.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
}

func TestSignOutAndToggleTheme(t *testing.T) {
	f := setupRouter(t, true)
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(s models.Session) bool { return s.Theme == models.ThemeDark })).Return(nil).Once()
	f.repo.On("Clear", mock.Anything).Return(nil).Once()

	rec := f.do(http.MethodPost, "/session/theme/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decode(t, rec)["theme"])

	rec = f.do(http.MethodPost, "/session/signout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := f.session.Current()
	assert.False(t, ok)
	f.repo.AssertExpectations(t)
}

func TestListConversationsWithSearch(t *testing.T) {
	f := setupRouter(t, true)
	f.loadC42(t)

	rec := f.do(http.MethodGet, "/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["conversations"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "C42", list[0].(map[string]any)["id"])

	rec = f.do(http.MethodGet, "/conversations?q=zed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["conversations"])
}

func TestSelectUnknownConversation(t *testing.T) {
	f := setupRouter(t, true)

	rec := f.do(http.MethodPost, "/conversations/nope/select", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageSendsAndRelays(t *testing.T) {
	f := setupRouter(t, true)
	f.loadC42(t)
	f.msgAPI.On("SendMessage", mock.Anything, "C42", "Hello").
		Return(models.Message{ID: "m2", ConversationID: "C42", SenderID: "u1", Content: "Hello", CreatedAt: time.Now().UTC()}, nil).Once()

	rec := f.do(http.MethodPost, "/conversations/C42/messages", `{"content":"  Hello "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "m2", decode(t, rec)["id"])
	frames := f.emitter.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, realtime.EventSendMessage, frames[0].Event)
	conv, _ := f.convs.Conversation("C42")
	assert.Len(t, conv.Messages, 2)
}

func TestPostMessageEmptyContent(t *testing.T) {
	f := setupRouter(t, true)
	f.loadC42(t)

	rec := f.do(http.MethodPost, "/conversations/C42/messages", `{"content":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.msgAPI.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessageSignedOut(t *testing.T) {
	f := setupRouter(t, false)

	rec := f.do(http.MethodPost, "/conversations/C42/messages", `{"content":"Hello"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartConversationWithSelf(t *testing.T) {
	f := setupRouter(t, true)

	rec := f.do(http.MethodPost, "/conversations/start", `{"recipient_id":"u1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkReadBackendFailureKeepsLocalState(t *testing.T) {
	f := setupRouter(t, true)
	f.notifAPI.On("Notifications", mock.Anything).Return([]models.Notification{
		{ID: "n1", Type: models.NotificationJob, Message: "new job", CreatedAt: time.Now()},
	}, nil).Once()
	require.NoError(t, f.notifs.Load(context.Background()))
	f.notifAPI.On("MarkNotificationsRead", mock.Anything).
		Return(models.NewError(models.KindFetch, "mark notifications read", models.ErrNetworkFailure)).Once()

	rec := f.do(http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["unread"])

	rec = f.do(http.MethodPost, "/notifications/mark-read", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 0, f.notifs.UnreadCount())
}

func TestConnectionAccept(t *testing.T) {
	f := setupRouter(t, true)
	f.connAPI.On("Connections", mock.Anything).Return(models.ConnectionList{
		PendingRequests: []models.Contact{{ID: "u3", Name: "Cid"}},
	}, nil).Once()
	_, err := f.tracker.Load(context.Background())
	require.NoError(t, err)
	f.connAPI.On("ConnectionAction", mock.Anything, api.ActionAccept, "u3").Return(nil).Once()

	rec := f.do(http.MethodPost, "/connections/u3/accept", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connected", decode(t, rec)["status"])

	rec = f.do(http.MethodGet, "/connections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["connections"], 1)
	f.connAPI.AssertExpectations(t)
}

func TestConnectionAcceptWithoutRequest(t *testing.T) {
	f := setupRouter(t, true)

	rec := f.do(http.MethodPost, "/connections/u9/accept", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.connAPI.AssertNotCalled(t, "ConnectionAction", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusForForbidden(t *testing.T) {
	err := models.NewError(models.KindFetch, "apply", models.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, statusFor(err))
	assert.Equal(t, http.StatusBadGateway, statusFor(assert.AnError))
}
