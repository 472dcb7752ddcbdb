package sinks

import (
	"context"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// Sink forwards notification events to a downstream target (SQS, HTTP, etc).
type Sink interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt notify.Event) error
}
