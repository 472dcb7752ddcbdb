package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-http-facade/internal/config"
	"github.com/samvad-hq/samvad-http-facade/internal/logger"
	"github.com/samvad-hq/samvad-http-facade/internal/storage"
	"github.com/samvad-hq/samvad-http-facade/pkg/errhandler"
	"github.com/samvad-hq/samvad-http-facade/pkg/facade"
	"github.com/samvad-hq/samvad-http-facade/pkg/httpclient"
	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
	"github.com/samvad-hq/samvad-http-facade/pkg/sinks"
)

const notificationQueueSize = 64

// Runtime wires configuration, notification sinks, the pending ledger and the
// request facade. It executes one command at a time on behalf of the CLI.
type Runtime struct {
	cfg      *config.Config
	facade   *facade.Facade
	notifier notify.Notifier
	toaster  *notify.Toaster
	fanout   *sinks.Fanout
	ledger   storage.Ledger
	log      logger.Logger
}

// Option customises a Runtime before it is assembled.
type Option func(*runtimeOptions)

type runtimeOptions struct {
	notifier notify.Notifier
	client   httpclient.Client
}

// WithNotifier replaces the sink-backed toaster, e.g. with a notify.Recorder.
func WithNotifier(n notify.Notifier) Option {
	return func(o *runtimeOptions) { o.notifier = n }
}

// WithClient replaces the resty transport.
func WithClient(c httpclient.Client) Option {
	return func(o *runtimeOptions) { o.client = c }
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{cfg: cfg, log: log}

	notifier := o.notifier
	if notifier == nil {
		fanout, err := buildFanout(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		rt.fanout = fanout

		ledger, err := storage.NewLedger(cfg.LedgerType, cfg.LedgerPath, storage.Options{
			EntryTTL:        cfg.LedgerTTL,
			CleanupInterval: cfg.LedgerCleanupInterval,
		})
		if err != nil {
			rt.closeFanout()
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		rt.ledger = ledger
		log.InfoObj("ledger initialized", "ledger_config", map[string]any{
			"type":                     cfg.LedgerType,
			"path":                     cfg.LedgerPath,
			"entry_ttl_seconds":        int(cfg.LedgerTTL.Seconds()),
			"cleanup_interval_seconds": int(cfg.LedgerCleanupInterval.Seconds()),
		})

		rt.toaster = notify.NewToaster(notify.ToasterConfig{
			Source:    cfg.AppName,
			Sink:      fanout,
			Ledger:    ledger,
			Log:       log,
			QueueSize: notificationQueueSize,
		})
		notifier = rt.toaster
	}
	rt.notifier = notifier

	client := o.client
	if client == nil {
		client = httpclient.NewRestyClient(cfg.RequestTimeout)
	}

	handler := errhandler.New(notifier, log).CreateHandler(cfg.ErrorContext)
	f, err := facade.New(facade.Config{
		BaseURL:     config.NewBaseURLSource(cfg),
		Client:      client,
		Notifier:    notifier,
		HandleError: handler,
		Log:         log,
		Options: facade.Options{
			NotifyReads:       cfg.NotifyReads,
			LegacyDeleteAsPut: cfg.LegacyDelete,
		},
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build facade: %w", err)
	}
	rt.facade = f

	fopts := f.Options()
	log.InfoObj("facade ready", "facade_options", map[string]any{
		"notify_reads":      fopts.NotifyReads,
		"legacy_delete":     fopts.LegacyDeleteAsPut,
		"error_context":     cfg.ErrorContext,
		"request_timeout_s": int(cfg.RequestTimeout.Seconds()),
		"labels":            fopts.Labels,
	})

	return rt, nil
}

// buildFanout loads the sinks registry. Without a sinks file every event goes to the log.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	var enabled []sinks.SinkConfig
	if strings.TrimSpace(cfg.SinksFile) != "" {
		reg, err := sinks.LoadRegistry(cfg.SinksFile)
		if err != nil {
			return nil, fmt.Errorf("load sinks registry: %w", err)
		}
		enabled = reg.Enabled()
	}
	if len(enabled) == 0 {
		enabled = []sinks.SinkConfig{{ID: "log", Type: sinks.TypeLog}}
	}

	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sc := range enabled {
		summaries = append(summaries, map[string]string{"id": sc.ID, "type": sc.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Facade exposes the configured facade.
func (r *Runtime) Facade() *facade.Facade { return r.facade }

// Command describes a single request issued through the facade.
type Command struct {
	Verb   string
	Path   string
	Params facade.Params
	// Body, when set, replaces Params as the JSON body of json posts and puts.
	Body     json.RawMessage
	Mode     facade.EncodingMode
	Label    string
	Fallback json.RawMessage
}

// Execute runs cmd and waits for its outcome.
func (r *Runtime) Execute(ctx context.Context, cmd Command) (facade.Outcome[json.RawMessage], error) {
	if r == nil || r.facade == nil {
		return facade.Outcome[json.RawMessage]{}, fmt.Errorf("runtime is not initialized")
	}

	fallback := cmd.Fallback
	if len(fallback) == 0 {
		fallback = json.RawMessage("null")
	} else if !json.Valid(fallback) {
		return facade.Outcome[json.RawMessage]{}, fmt.Errorf("fallback is not valid JSON")
	}

	var body any = cmd.Params
	if len(cmd.Body) > 0 {
		body = cmd.Body
	}

	var call *facade.Call[json.RawMessage]
	switch strings.ToLower(strings.TrimSpace(cmd.Verb)) {
	case "get":
		call = facade.Get(r.facade, cmd.Path, cmd.Params, cmd.Label, fallback)
	case "post":
		if cmd.Mode != facade.EncodingJSON {
			body = cmd.Params
		}
		call = facade.Post(r.facade, cmd.Path, body, cmd.Mode, cmd.Label, fallback)
	case "put":
		call = facade.Put(r.facade, cmd.Path, body, cmd.Label, fallback)
	case "delete":
		call = facade.Delete(r.facade, cmd.Path, cmd.Params, cmd.Label, fallback)
	default:
		return facade.Outcome[json.RawMessage]{}, fmt.Errorf("unsupported verb %q", cmd.Verb)
	}

	out := call.Await(ctx)
	r.log.InfoObj("command finished", "command_meta", map[string]any{
		"verb":    cmd.Verb,
		"path":    cmd.Path,
		"outcome": out.Kind.String(),
	})
	return out, nil
}

// Outstanding lists loading notifications recorded in the ledger that were
// never dismissed, including those left behind by earlier processes.
func (r *Runtime) Outstanding() ([]string, error) {
	if r == nil || r.ledger == nil {
		return nil, nil
	}
	return r.ledger.Outstanding()
}

// Close reports leaked notifications and releases sinks and the ledger.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.toaster != nil {
		if pending := r.toaster.Pending(); len(pending) > 0 {
			r.log.WarnObj("notifications still pending at shutdown", "pending_handles", pending)
		}
		r.toaster.Close()
	}
	if r.ledger != nil {
		if ids, err := r.ledger.Outstanding(); err != nil {
			r.log.ErrorObj("ledger scan failed", "error", err)
		} else if len(ids) > 0 {
			r.log.WarnObj("ledger has outstanding handles", "ledger_outstanding", ids)
		}
		if err := r.ledger.Close(); err != nil {
			r.log.ErrorObj("ledger close failed", "error", err)
		}
		r.ledger = nil
	}
	r.closeFanout()
	return nil
}

func (r *Runtime) closeFanout() {
	if r.fanout == nil {
		return
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("sink close failed", "error", err)
	}
	r.fanout = nil
}
