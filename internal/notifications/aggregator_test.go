package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/mocks"
	"huntx-client/internal/models"
	"huntx-client/internal/realtime"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type fixedSession struct {
	s models.Session
}

func (f *fixedSession) Current() (models.Session, bool) { return f.s, f.s.Valid() }

func signedIn() *fixedSession {
	return &fixedSession{s: models.Session{UserID: "u1", Token: "tok"}}
}

func seeded(t *testing.T) (*Aggregator, *mocks.NotificationAPIMock) {
	t.Helper()
	apiMock := new(mocks.NotificationAPIMock)
	apiMock.On("Notifications", mock.Anything).Return([]models.Notification{
		{ID: "n1", Type: models.NotificationJob, Message: "new job", CreatedAt: t0},
		{ID: "n2", Type: models.NotificationPost, Message: "new post", CreatedAt: t0.Add(time.Minute), Read: true},
		{ID: "n3", Type: models.NotificationMessage, Message: "new message", CreatedAt: t0.Add(2 * time.Minute)},
	}, nil).Once()
	agg := NewAggregator(apiMock, signedIn())
	require.NoError(t, agg.Load(context.Background()))
	return agg, apiMock
}

func TestLoadOrdersNewestFirst(t *testing.T) {
	agg, _ := seeded(t)

	list := agg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID)
	assert.Equal(t, 2, agg.UnreadCount())
}

func TestMarkAllReadWhenBackendFails(t *testing.T) {
	agg, apiMock := seeded(t)
	apiMock.On("MarkNotificationsRead", mock.Anything).Return(models.NewError(models.KindFetch, "mark notifications read", models.ErrNetworkFailure)).Once()

	err := agg.MarkAllRead(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindFetch))

	for _, n := range agg.List() {
		assert.True(t, n.Read, n.ID)
	}
	assert.Equal(t, 0, agg.UnreadCount())
}

func TestMarkAllReadVisibleBeforeBackendAnswers(t *testing.T) {
	agg, apiMock := seeded(t)
	release := make(chan struct{})
	apiMock.On("MarkNotificationsRead", mock.Anything).Run(func(mock.Arguments) { <-release }).Return(nil).Once()

	done := make(chan error, 1)
	go func() { done <- agg.MarkAllRead(context.Background()) }()

	require.Eventually(t, func() bool { return agg.UnreadCount() == 0 }, time.Second, 5*time.Millisecond)
	for _, n := range agg.List() {
		assert.True(t, n.Read, n.ID)
	}

	close(release)
	require.NoError(t, <-done)
	apiMock.AssertExpectations(t)
}

func TestHandlePushPrependsUnreadAndDedupes(t *testing.T) {
	agg, _ := seeded(t)
	var counts []int
	agg.OnUnreadChange(func(n int) { counts = append(counts, n) })

	handler := agg.HandlePush(PushEvents[realtime.EventNewConnectionNotification])
	handler(json.RawMessage(`{"_id":"n4","message":"Bob wants to connect","read":true,"createdAt":"2024-01-01T11:00:00Z"}`))
	handler(json.RawMessage(`{"_id":"n4","message":"Bob wants to connect","createdAt":"2024-01-01T11:00:00Z"}`))

	list := agg.List()
	require.Len(t, list, 4)
	assert.Equal(t, "n4", list[0].ID)
	assert.Equal(t, models.NotificationConnection, list[0].Type)
	assert.False(t, list[0].Read)
	assert.Equal(t, []int{3}, counts)
}

func TestHandlePushDropsMalformed(t *testing.T) {
	agg, _ := seeded(t)
	agg.HandlePush(models.NotificationJob)(json.RawMessage(`{"message":"no id"}`))
	assert.Len(t, agg.List(), 3)
}

func TestLoadNeverUnreadsLocalState(t *testing.T) {
	agg, apiMock := seeded(t)
	apiMock.On("MarkNotificationsRead", mock.Anything).Return(nil).Once()
	require.NoError(t, agg.MarkAllRead(context.Background()))

	apiMock.On("Notifications", mock.Anything).Return([]models.Notification{
		{ID: "n1", Type: models.NotificationJob, CreatedAt: t0},
	}, nil).Once()
	require.NoError(t, agg.Load(context.Background()))

	assert.Equal(t, 0, agg.UnreadCount())
}

func TestReset(t *testing.T) {
	agg, _ := seeded(t)
	agg.Reset()
	assert.Empty(t, agg.List())
	assert.Equal(t, 0, agg.UnreadCount())
}

func TestLoadDroppedAfterSignOut(t *testing.T) {
	apiMock := new(mocks.NotificationAPIMock)
	sess := signedIn()
	agg := NewAggregator(apiMock, sess)
	started := make(chan struct{})
	release := make(chan struct{})
	apiMock.On("Notifications", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Notification{{ID: "n1", Message: "for u1", CreatedAt: t0}}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- agg.Load(context.Background()) }()
	<-started
	sess.s = models.Session{}
	agg.Reset()
	close(release)

	err := <-done
	assert.ErrorIs(t, err, models.ErrNotSignedIn)
	assert.Empty(t, agg.List())
	assert.Equal(t, 0, agg.UnreadCount())
}

func TestLoadDroppedAfterUserSwitch(t *testing.T) {
	apiMock := new(mocks.NotificationAPIMock)
	sess := signedIn()
	agg := NewAggregator(apiMock, sess)
	started := make(chan struct{})
	release := make(chan struct{})
	apiMock.On("Notifications", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Notification{{ID: "n1", Message: "for u1", CreatedAt: t0}}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- agg.Load(context.Background()) }()
	<-started
	sess.s = models.Session{UserID: "u9", Token: "other"}
	agg.Reset()
	close(release)

	require.Error(t, <-done)
	assert.Empty(t, agg.List())
}

func TestLoadRequiresSession(t *testing.T) {
	apiMock := new(mocks.NotificationAPIMock)
	agg := NewAggregator(apiMock, &fixedSession{})

	err := agg.Load(context.Background())
	assert.True(t, models.IsKind(err, models.KindFetch))
	assert.ErrorIs(t, err, models.ErrNotSignedIn)
	apiMock.AssertNotCalled(t, "Notifications", mock.Anything)
}
