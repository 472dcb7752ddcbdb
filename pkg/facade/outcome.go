package facade

import (
	"context"
	"sync"

	"github.com/samvad-hq/samvad-http-facade/pkg/envelope"
)

// OutcomeKind tells which variant an Outcome holds.
type OutcomeKind int

const (
	// KindDelivered means the endpoint answered with an envelope, whatever its code.
	KindDelivered OutcomeKind = iota + 1
	// KindFallback means the transport failed and the caller's fallback was substituted.
	KindFallback
)

func (k OutcomeKind) String() string {
	switch k {
	case KindDelivered:
		return "delivered"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name.
func (k OutcomeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome is the single value a Call produces. It never carries a failure
// the caller has to handle: Err is diagnostic only.
type Outcome[T any] struct {
	Kind     OutcomeKind          `json:"kind"`
	Envelope envelope.Envelope[T] `json:"envelope"`
	Fallback T                    `json:"fallback"`
	Err      error                `json:"-"`
}

// Delivered reports whether the endpoint answered.
func (o Outcome[T]) Delivered() bool { return o.Kind == KindDelivered }

// Value returns the envelope payload, or the fallback after a transport failure.
func (o Outcome[T]) Value() T {
	if o.Kind == KindDelivered {
		return o.Envelope.Payload
	}
	return o.Fallback
}

// Call is a lazy request. Nothing is sent until the first Await; the request
// runs at most once and later Awaits replay its outcome.
type Call[T any] struct {
	once sync.Once
	exec func(ctx context.Context) Outcome[T]
	out  Outcome[T]
}

func newCall[T any](exec func(ctx context.Context) Outcome[T]) *Call[T] {
	return &Call[T]{exec: exec}
}

// Await dispatches the request if needed and returns its outcome. Cancelling
// ctx before the response aborts the request and yields the fallback.
func (c *Call[T]) Await(ctx context.Context) Outcome[T] {
	c.once.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		c.out = c.exec(ctx)
	})
	return c.out
}

// Go dispatches the request in the background. The channel yields exactly
// one outcome and is then closed.
func (c *Call[T]) Go(ctx context.Context) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		defer close(ch)
		ch <- c.Await(ctx)
	}()
	return ch
}
