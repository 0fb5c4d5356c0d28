package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Emitted is one frame recorded by EmitterMock.
type Emitted struct {
	Event   string
	Payload any
}

// EmitterMock records realtime emits. Err, when set, is returned from Emit.
type EmitterMock struct {
	mu     sync.Mutex
	Err    error
	frames []Emitted
}

func (m *EmitterMock) Emit(event string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.frames = append(m.frames, Emitted{Event: event, Payload: payload})
	return nil
}

func (m *EmitterMock) Frames() []Emitted {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Emitted(nil), m.frames...)
}
