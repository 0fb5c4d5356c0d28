package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"huntx-client/internal/mocks"
	"huntx-client/internal/observability"
)

func TestPublishEventWithoutPublisher(t *testing.T) {
	observability.SetPublisher(nil)

	err := observability.PublishEvent(context.Background(), "realtime.lifecycle", observability.EventEnvelope{EventType: "realtime"}, nil)

	assert.NoError(t, err)
}

func TestPublishEventForwardsHeaders(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	observability.SetPublisher(publisher)
	t.Cleanup(func() { observability.SetPublisher(nil) })

	envelope := observability.EventEnvelope{EventType: "ws_events", EventName: "ws_connect"}
	headers := observability.BuildHeaders("req-1", "trace-1")
	publisher.On("Publish", mock.Anything, "ws_events.bridge", envelope, map[string]string{
		"x-request-id": "req-1",
		"trace_id":     "trace-1",
	}).Return(assert.AnError).Once()

	err := observability.PublishEvent(context.Background(), "ws_events.bridge", envelope, headers)

	assert.ErrorIs(t, err, assert.AnError)
	publisher.AssertExpectations(t)
}

func TestBuildHeadersSkipsEmpty(t *testing.T) {
	assert.Empty(t, observability.BuildHeaders("", ""))
}
