package changefeed

import (
	"context"
	"errors"
	"sync"
)

// Memory buffers events in a channel for a consumer in the same process.
// It is not offered by New: nothing drains it in a running binary.
type Memory struct {
	events chan Event
	mu     sync.RWMutex
	closed bool
}

// NewMemory creates a memory publisher holding up to bufferSize events.
func NewMemory(bufferSize int) *Memory {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Memory{events: make(chan Event, bufferSize)}
}

func (m *Memory) Publish(ctx context.Context, event Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}

	select {
	case m.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("memory changefeed is full")
	}
}

// Events is the receive side. It is closed by Close.
func (m *Memory) Events() <-chan Event {
	return m.events
}

// Drain returns the buffered events without blocking.
func (m *Memory) Drain() []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-m.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	return nil
}
