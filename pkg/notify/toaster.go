package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultDeliveryTimeout = 5 * time.Second

// Sink receives every notification event. It reports how many downstream
// targets accepted the event.
type Sink interface {
	Publish(ctx context.Context, evt Event) (int, error)
}

// Ledger persists pending handles so that leaked loading notifications
// remain visible across restarts.
type Ledger interface {
	Track(id string) error
	Release(id string) (bool, error)
}

// ToasterConfig wires a Toaster.
type ToasterConfig struct {
	Source          string
	Sink            Sink
	Ledger          Ledger
	Log             Logger
	DeliveryTimeout time.Duration
	// QueueSize > 0 hands events to a background worker so slow sinks never
	// hold up the request that raised them. Events are delivered in order;
	// when the queue is full the event is dropped and logged.
	QueueSize int
}

// Toaster is the production Notifier. It mints handles, tracks which of them
// are still pending and forwards events to a sink.
type Toaster struct {
	source  string
	sink    Sink
	ledger  Ledger
	log     Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	pending map[Handle]Event

	queueMu   sync.RWMutex
	queue     chan Event
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewToaster builds a Toaster. A nil sink or ledger is allowed.
func NewToaster(cfg ToasterConfig) *Toaster {
	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	t := &Toaster{
		source:  cfg.Source,
		sink:    cfg.Sink,
		ledger:  cfg.Ledger,
		log:     ensureLogger(cfg.Log),
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
		pending: make(map[Handle]Event),
	}
	if cfg.QueueSize > 0 && cfg.Sink != nil {
		t.queue = make(chan Event, cfg.QueueSize)
		t.done = make(chan struct{})
		go t.run()
	}
	return t
}

func (t *Toaster) run() {
	defer close(t.done)
	for evt := range t.queue {
		t.publish(evt)
	}
}

// Close flushes queued events and stops the delivery worker. Events raised
// after Close are delivered inline.
func (t *Toaster) Close() {
	t.closeOnce.Do(func() {
		if t.queue == nil {
			return
		}
		t.queueMu.Lock()
		t.closed = true
		close(t.queue)
		t.queueMu.Unlock()
		<-t.done
	})
}

// Loading shows an in-progress notification and returns its handle.
func (t *Toaster) Loading(text string, opts LoadingOptions) Handle {
	h := Handle(t.newID())
	evt := t.event(KindLoading, h, text)
	evt.Persist = opts.Persist

	t.mu.Lock()
	t.pending[h] = evt
	t.mu.Unlock()

	if t.ledger != nil {
		if err := t.ledger.Track(string(h)); err != nil {
			t.log.WarnObj("ledger track failed", "ledger_error", map[string]any{
				"handle": h,
				"error":  err.Error(),
			})
		}
	}
	t.deliver(evt)
	return h
}

func (t *Toaster) Success(text string) { t.deliver(t.event(KindSuccess, "", text)) }
func (t *Toaster) Warning(text string) { t.deliver(t.event(KindWarning, "", text)) }
func (t *Toaster) Error(text string)   { t.deliver(t.event(KindError, "", text)) }

// Remove dismisses a pending notification. Unknown or already removed
// handles are ignored.
func (t *Toaster) Remove(h Handle) {
	if h == "" {
		return
	}

	t.mu.Lock()
	_, ok := t.pending[h]
	delete(t.pending, h)
	t.mu.Unlock()

	if !ok {
		t.log.WarnObj("notification already removed", "notify_handle", h)
		return
	}

	if t.ledger != nil {
		if _, err := t.ledger.Release(string(h)); err != nil {
			t.log.WarnObj("ledger release failed", "ledger_error", map[string]any{
				"handle": h,
				"error":  err.Error(),
			})
		}
	}
	t.deliver(t.event(KindRemove, h, ""))
}

// Pending returns the handles that have not been removed yet.
func (t *Toaster) Pending() []Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Handle, 0, len(t.pending))
	for h := range t.pending {
		out = append(out, h)
	}
	return out
}

func (t *Toaster) event(kind Kind, h Handle, text string) Event {
	return Event{
		Kind:   kind,
		Handle: h,
		Text:   text,
		Source: t.source,
		At:     t.now().UTC(),
	}
}

func (t *Toaster) deliver(evt Event) {
	t.log.DebugObj("notification", "notify_event", evt)
	if t.sink == nil {
		return
	}
	if t.queue == nil {
		t.publish(evt)
		return
	}

	t.queueMu.RLock()
	defer t.queueMu.RUnlock()
	if t.closed {
		t.publish(evt)
		return
	}
	select {
	case t.queue <- evt:
	default:
		t.log.WarnObj("notification queue full; event dropped", "notify_event", evt)
	}
}

func (t *Toaster) publish(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if _, err := t.sink.Publish(ctx, evt); err != nil {
		t.log.ErrorObj("notification delivery failed", "notify_error", map[string]any{
			"kind":   evt.Kind,
			"handle": evt.Handle,
			"error":  err.Error(),
		})
	}
}
