package event

import (
	"bytes"
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Type: TypeTokenExpired})
	}
	d.Close()

	if got := sink.count.Load(); got != 5 {
		t.Fatalf("delivered %d events, want 5", got)
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}
	// Nil dispatchers accept emits and close without panicking.
	d.Emit(context.Background(), Event{Type: TypeLogin})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	gate := make(chan struct{})
	blocking := sinkFunc(func(context.Context, Event) { <-gate })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, blocking)
	defer func() {
		close(gate)
		d.Close()
	}()

	// One event occupies the worker, one fills the buffer; the rest drop.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{Type: TypeLogout})
	}

	deadline := time.After(2 * time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected dropped events with a blocked sink")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

func TestChannelSinkAndJSONWriterSink(t *testing.T) {
	ch := NewChannelSink(1)
	ch.Emit(context.Background(), Event{Type: TypeTokenRenewed, Username: "alice"})
	select {
	case ev := <-ch.Events():
		if ev.Type != TypeTokenRenewed || ev.Username != "alice" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("channel sink did not buffer the event")
	}

	var buf bytes.Buffer
	js := NewJSONWriterSink(&buf)
	js.Emit(context.Background(), Event{Type: TypeTokenExpired, Username: "bob", Source: "auth_token"})

	var decoded Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("decode emitted line: %v", err)
	}
	if decoded.Type != TypeTokenExpired || decoded.Source != "auth_token" {
		t.Fatalf("unexpected decoded event %+v", decoded)
	}
}
