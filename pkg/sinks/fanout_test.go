package sinks

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Send(context.Context, notify.Event) error {
	s.calls++
	return s.err
}
func (s *stubSink) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Sink{
		&stubSink{id: "ok", typ: "http"},
		&stubSink{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	count, err := fanout.Publish(context.Background(), notify.Event{Kind: notify.KindSuccess})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if fanout.Size() != 2 {
		t.Fatalf("nil sinks should be skipped, size=%d", fanout.Size())
	}
}

func TestKindFilterDropsOtherKinds(t *testing.T) {
	inner := &stubSink{id: "errors-only", typ: TypeLog}
	fanout := NewFanout([]Sink{withKinds(inner, []string{"error"})})

	fanout.Publish(context.Background(), notify.Event{Kind: notify.KindLoading})
	fanout.Publish(context.Background(), notify.Event{Kind: notify.KindError})

	if inner.calls != 1 {
		t.Fatalf("expected only the error event, got %d calls", inner.calls)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !inner.closed {
		t.Fatalf("wrapped sink was not closed")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	sinks, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com"}},
		{ID: "audit", Type: TypeLog, Kinds: []string{"error"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(sinks))
	}
	if _, ok := sinks[1].(*kindFilter); !ok {
		t.Fatalf("kinds should wrap the sink in a filter")
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	if _, err := DefaultRegistry().SinkFor(context.Background(), SinkConfig{ID: "x", Type: "kafka"}, nil); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
