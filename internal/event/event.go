// Package event provides async dispatch of token lifecycle notifications
// (expiry, renewal, login, logout) to pluggable sinks. It replaces the
// signal fan-out a framework would provide: the engine emits, external
// collaborators subscribe through a [Sink].
package event

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types emitted by the engine.
const (
	TypeTokenExpired = "token.expired"
	TypeTokenRenewed = "token.renewed"
	TypeLogin        = "user.login"
	TypeLogout       = "user.logout"
)

// Event is a single lifecycle notification.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Username  string    `json:"username,omitempty"`
	Client    string    `json:"client,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	// Source names the code path that emitted the event, e.g.
	// "auth_token" for lazy expiry cleanup during authentication.
	Source    string    `json:"source,omitempty"`
	NewExpiry time.Time `json:"new_expiry,omitzero"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
