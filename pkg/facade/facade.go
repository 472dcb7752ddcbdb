// Package facade wraps the four verbs used against the backend behind one
// uniform contract: every call yields an envelope or the caller's fallback,
// and mutating calls are accompanied by user notifications.
package facade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/samvad-http-facade/pkg/envelope"
	"github.com/samvad-hq/samvad-http-facade/pkg/errhandler"
	"github.com/samvad-hq/samvad-http-facade/pkg/httpclient"
	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
)

// BaseURLSource supplies the base address. It is consulted once per call.
type BaseURLSource interface {
	BaseURL() string
}

// StaticBaseURL is a BaseURLSource with a fixed value.
type StaticBaseURL string

func (s StaticBaseURL) BaseURL() string { return string(s) }

// Labels are the texts of loading notifications.
type Labels struct {
	Adding   string
	Updating string
	Deleting string
	Loading  string
}

// DefaultLabels returns the stock loading texts.
func DefaultLabels() Labels {
	return Labels{
		Adding:   "Adding...",
		Updating: "Updating...",
		Deleting: "Deleting...",
		Loading:  "Loading...",
	}
}

// Options tune facade policy.
type Options struct {
	// NotifyReads gives Get the same loading and result notifications as
	// the mutating verbs.
	NotifyReads bool
	// LegacyDeleteAsPut sends Delete as a PUT with params nested under a
	// "params" body key instead of a DELETE with a query string.
	LegacyDeleteAsPut bool
	Labels            Labels
}

// Logger defines the logging surface the facade relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Config wires a Facade.
type Config struct {
	BaseURL     BaseURLSource
	Client      httpclient.Client
	Notifier    notify.Notifier
	HandleError errhandler.HandleError
	Log         Logger
	Options     Options
}

// Facade issues requests against BaseURL.
type Facade struct {
	baseURL     BaseURLSource
	client      httpclient.Client
	notifier    notify.Notifier
	handleError errhandler.HandleError
	log         Logger
	opts        Options
}

// New validates cfg and returns a Facade.
func New(cfg Config) (*Facade, error) {
	if cfg.Client == nil {
		return nil, errors.New("facade: http client is required")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("facade: notifier is required")
	}
	if cfg.HandleError == nil {
		return nil, errors.New("facade: error handler is required")
	}
	if cfg.BaseURL == nil {
		cfg.BaseURL = StaticBaseURL("")
	}
	if cfg.Log == nil {
		cfg.Log = noopLogger{}
	}
	cfg.Options.Labels = withDefaults(cfg.Options.Labels)

	return &Facade{
		baseURL:     cfg.BaseURL,
		client:      cfg.Client,
		notifier:    cfg.Notifier,
		handleError: cfg.HandleError,
		log:         cfg.Log,
		opts:        cfg.Options,
	}, nil
}

func withDefaults(l Labels) Labels {
	def := DefaultLabels()
	if l.Adding == "" {
		l.Adding = def.Adding
	}
	if l.Updating == "" {
		l.Updating = def.Updating
	}
	if l.Deleting == "" {
		l.Deleting = def.Deleting
	}
	if l.Loading == "" {
		l.Loading = def.Loading
	}
	return l
}

// Options returns the facade policy.
func (f *Facade) Options() Options { return f.opts }

// TransportError records which request failed.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error         { return e.Err }
func (e *TransportError) RequestMethod() string { return e.Method }
func (e *TransportError) RequestURL() string    { return e.URL }

// request is one prepared call.
type request struct {
	method  string
	path    string
	label   string
	loading string
	toasts  bool
	build   func(req *httpclient.Request) error
}

// Get reads path with params as query pairs. Reads are silent unless
// NotifyReads is set; failures still go through the error handler.
func Get[T any](f *Facade, path string, params Params, label string, fallback T) *Call[T] {
	r := request{
		method: http.MethodGet,
		path:   path,
		label:  label,
		build: func(req *httpclient.Request) error {
			q, err := toValues(params)
			req.Query = q
			return err
		},
	}
	if f.opts.NotifyReads {
		r.loading = f.opts.Labels.Loading
		r.toasts = true
	}
	return run(f, r, fallback)
}

// Post creates a resource. mode selects the body encoding.
func Post[T any](f *Facade, path string, params any, mode EncodingMode, label string, fallback T) *Call[T] {
	return run(f, request{
		method:  http.MethodPost,
		path:    path,
		label:   label,
		loading: f.opts.Labels.Adding,
		toasts:  true,
		build: func(req *httpclient.Request) error {
			switch mode {
			case EncodingDefault:
				form, err := toValues(params)
				req.Form = form
				return err
			case EncodingJSON:
				req.JSONBody = params
				return nil
			case EncodingMultipart:
				form, err := toMultipart(params)
				req.Multipart = form
				return err
			default:
				return fmt.Errorf("unknown encoding mode %s", mode)
			}
		},
	}, fallback)
}

// Put updates a resource. params are always sent as a JSON body.
func Put[T any](f *Facade, path string, params any, label string, fallback T) *Call[T] {
	return run(f, request{
		method:  http.MethodPut,
		path:    path,
		label:   label,
		loading: f.opts.Labels.Updating,
		toasts:  true,
		build: func(req *httpclient.Request) error {
			req.JSONBody = params
			return nil
		},
	}, fallback)
}

// Delete removes a resource with params in the query string. With
// LegacyDeleteAsPut the request is a PUT carrying {"params": {...}}.
func Delete[T any](f *Facade, path string, params Params, label string, fallback T) *Call[T] {
	r := request{
		method:  http.MethodDelete,
		path:    path,
		label:   label,
		loading: f.opts.Labels.Deleting,
		toasts:  true,
		build: func(req *httpclient.Request) error {
			q, err := toValues(params)
			req.Query = q
			return err
		},
	}
	if f.opts.LegacyDeleteAsPut {
		r.method = http.MethodPut
		r.build = func(req *httpclient.Request) error {
			q, err := toValues(params)
			if err != nil {
				return err
			}
			req.JSONBody = map[string]any{"params": flatten(q)}
			return nil
		}
	}
	return run(f, r, fallback)
}

func run[T any](f *Facade, r request, fallback T) *Call[T] {
	return newCall(func(ctx context.Context) Outcome[T] {
		return execute(ctx, f, r, fallback)
	})
}

func execute[T any](ctx context.Context, f *Facade, r request, fallback T) Outcome[T] {
	url := f.baseURL.BaseURL() + r.path
	start := time.Now()

	var pending notify.Handle
	if r.loading != "" {
		pending = f.notifier.Loading(r.loading, notify.LoadingOptions{Persist: true})
	}
	recoverWith := f.handleError(pending, r.label, fallback)

	fail := func(err error) Outcome[T] {
		err = &TransportError{Method: r.method, URL: url, Err: err}
		value, ok := recoverWith(err).(T)
		if !ok {
			value = fallback
		}
		return Outcome[T]{Kind: KindFallback, Fallback: value, Err: err}
	}

	req := httpclient.Request{Method: r.method, URL: url}
	if err := r.build(&req); err != nil {
		return fail(fmt.Errorf("encode params: %w", err))
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return fail(err)
	}

	env, err := envelope.Decode[T](resp.Body())
	if err != nil {
		return fail(err)
	}

	if pending != "" {
		f.notifier.Remove(pending)
	}
	if r.toasts {
		if env.OK() {
			f.notifier.Success(env.Message)
		} else {
			f.notifier.Warning(env.Message)
		}
	}

	meta := map[string]any{
		"method":     r.method,
		"url":        url,
		"code":       int(env.Status),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if env.OK() {
		f.log.DebugObj("request completed", "request_meta", meta)
	} else {
		f.log.WarnObj("request returned non-ok code", "request_meta", meta)
	}

	return Outcome[T]{Kind: KindDelivered, Envelope: env}
}
