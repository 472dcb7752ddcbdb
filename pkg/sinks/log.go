package sinks

import (
	"context"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// logSink writes events to the structured log.
type logSink struct {
	id  string
	log Logger
}

func newLogSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	return &logSink{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (l *logSink) ID() string   { return l.id }
func (l *logSink) Type() string { return TypeLog }

func (l *logSink) Send(_ context.Context, evt notify.Event) error {
	switch evt.Kind {
	case notify.KindError:
		l.log.ErrorObj("notification", "notification", evt)
	case notify.KindWarning:
		l.log.WarnObj("notification", "notification", evt)
	default:
		l.log.InfoObj("notification", "notification", evt)
	}
	return nil
}
