// Package errhandler converts transport failures into caller fallbacks while
// telling the user and the logs what went wrong.
package errhandler

import (
	"fmt"

	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// DefaultOperation labels failures when the caller gives none.
const DefaultOperation = "operation"

// HandleError builds the recovery function for one request. The returned
// function reports err and yields fallback.
type HandleError func(pending notify.Handle, operation string, fallback any) func(err error) any

// Logger defines the logging surface the handler relies on.
type Logger interface {
	ErrorObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) ErrorObj(string, string, interface{}) {}
func (noopLogger) DebugObj(string, string, interface{}) {}

// Service is the shared error-handling collaborator.
type Service struct {
	notifier notify.Notifier
	log      Logger
}

// New returns a Service that reports through notifier and log.
func New(notifier notify.Notifier, log Logger) *Service {
	if log == nil {
		log = noopLogger{}
	}
	return &Service{notifier: notifier, log: log}
}

// CreateHandler returns a HandleError whose log lines carry serviceName.
func (s *Service) CreateHandler(serviceName string) HandleError {
	return func(pending notify.Handle, operation string, fallback any) func(err error) any {
		if operation == "" {
			operation = DefaultOperation
		}
		return func(err error) any {
			s.report(serviceName, pending, operation, err)
			return fallback
		}
	}
}

func (s *Service) report(serviceName string, pending notify.Handle, operation string, err error) {
	if s.notifier != nil && pending != "" {
		s.notifier.Remove(pending)
	}

	failure := Describe(err)
	fields := map[string]any{
		"service":   serviceName,
		"operation": operation,
		"failure":   failure,
	}

	if failure.Class == ClassCancelled {
		s.log.DebugObj("request cancelled", "request_failure", fields)
		return
	}

	if s.notifier != nil {
		s.notifier.Error(fmt.Sprintf("%s failed: %s", operation, failure.Reason()))
	}
	s.log.ErrorObj("request failed", "request_failure", fields)
}
