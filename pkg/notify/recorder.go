package notify

import (
	"strconv"
	"sync"
	"time"
)

// Recorder is an in-memory Notifier that keeps every event. Handles are
// sequential so output is deterministic.
type Recorder struct {
	mu     sync.Mutex
	seq    int
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Loading(text string, opts LoadingOptions) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	h := Handle("pending-" + strconv.Itoa(r.seq))
	r.events = append(r.events, Event{Kind: KindLoading, Handle: h, Text: text, Persist: opts.Persist, At: time.Now().UTC()})
	return h
}

func (r *Recorder) Success(text string) { r.add(Event{Kind: KindSuccess, Text: text}) }
func (r *Recorder) Warning(text string) { r.add(Event{Kind: KindWarning, Text: text}) }
func (r *Recorder) Error(text string)   { r.add(Event{Kind: KindError, Text: text}) }
func (r *Recorder) Remove(h Handle)     { r.add(Event{Kind: KindRemove, Handle: h}) }

func (r *Recorder) add(evt Event) {
	evt.At = time.Now().UTC()
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, evt := range r.Events() {
		if evt.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the texts recorded for kind, in order.
func (r *Recorder) Texts(kind Kind) []string {
	var out []string
	for _, evt := range r.Events() {
		if evt.Kind == kind {
			out = append(out, evt.Text)
		}
	}
	return out
}

// Removals returns how many times h was removed.
func (r *Recorder) Removals(h Handle) int {
	n := 0
	for _, evt := range r.Events() {
		if evt.Kind == KindRemove && evt.Handle == h {
			n++
		}
	}
	return n
}

// Handles returns the handles of every loading notification.
func (r *Recorder) Handles() []Handle {
	var out []Handle
	for _, evt := range r.Events() {
		if evt.Kind == KindLoading {
			out = append(out, evt.Handle)
		}
	}
	return out
}
