package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// Fanout dispatches events to all configured sinks.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a dispatcher that fans out events across sinks.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp}
}

// Publish forwards the event to every registered sink.
// It returns the number of sinks that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt notify.Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.sinks {
		if err := s.Send(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// kindFilter drops events whose kind is not listed.
type kindFilter struct {
	Sink
	kinds map[notify.Kind]bool
}

func withKinds(s Sink, kinds []string) Sink {
	if len(kinds) == 0 {
		return s
	}
	allowed := make(map[notify.Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[notify.Kind(k)] = true
	}
	return &kindFilter{Sink: s, kinds: allowed}
}

func (k *kindFilter) Send(ctx context.Context, evt notify.Event) error {
	if !k.kinds[evt.Kind] {
		return nil
	}
	return k.Sink.Send(ctx, evt)
}

// Close releases sinks that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if kf, ok := s.(*kindFilter); ok {
			s = kf.Sink
		}
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s sink[%s]: %w", s.Type(), s.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
