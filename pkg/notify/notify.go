// Package notify provides the transient user notifications that accompany
// requests: loading indicators tied to a handle, and success/warning/error toasts.
package notify

import "time"

// Handle identifies one pending loading notification.
type Handle string

// Kind enumerates notification types.
type Kind string

const (
	KindLoading Kind = "loading"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindRemove  Kind = "remove"
)

// LoadingOptions controls a loading notification. Persist keeps it visible
// until it is removed explicitly.
type LoadingOptions struct {
	Persist bool
}

// Notifier is consumed by the request facade and error handler.
type Notifier interface {
	Loading(text string, opts LoadingOptions) Handle
	Success(text string)
	Warning(text string)
	Error(text string)
	Remove(h Handle)
}

// Event is one notification as seen by sinks.
type Event struct {
	Kind    Kind      `json:"kind"`
	Handle  Handle    `json:"handle,omitempty"`
	Text    string    `json:"text,omitempty"`
	Persist bool      `json:"persist,omitempty"`
	Source  string    `json:"source,omitempty"`
	At      time.Time `json:"at"`
}

// Logger defines the logging surface notify relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
