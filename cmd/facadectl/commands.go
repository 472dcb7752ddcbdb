package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-http-facade/internal/app"
	"github.com/samvad-hq/samvad-http-facade/internal/config"
	"github.com/samvad-hq/samvad-http-facade/internal/logger"
	"github.com/samvad-hq/samvad-http-facade/pkg/facade"
	"github.com/samvad-hq/samvad-http-facade/pkg/httpclient"
	"github.com/samvad-hq/samvad-http-facade/pkg/notify"
	"github.com/spf13/cobra"
)

// deps are the process-level collaborators; tests swap them out.
type deps struct {
	loadConfig func() (*config.Config, error)
	initLogger func(*config.Config) (logger.Logger, error)
}

type requestFlags struct {
	params   []string
	mode     string
	label    string
	fallback string
	body     string
	dry      bool
	baseURL  string
}

// result is what facadectl prints for every request.
type result struct {
	Outcome       facade.Outcome[json.RawMessage] `json:"outcome"`
	Error         string                          `json:"error,omitempty"`
	Notifications []notify.Event                  `json:"notifications,omitempty"`
}

func newRootCmd(d deps) *cobra.Command {
	var baseURL string

	root := &cobra.Command{
		Use:           "facadectl",
		Short:         "Issue requests through the HTTP facade",
		Long:          "facadectl sends GET/POST/PUT/DELETE requests through the facade and prints the envelope or fallback as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "override BASE_URL for this invocation")

	for _, verb := range []string{"get", "post", "put", "delete"} {
		root.AddCommand(newVerbCmd(d, verb, &baseURL))
	}
	root.AddCommand(newPendingCmd(d))
	return root
}

func newVerbCmd(d deps, verb string, baseURL *string) *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   verb + " PATH",
		Short: fmt.Sprintf("Send a %s request", strings.ToUpper(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.baseURL = *baseURL
			return runRequest(cmd.Context(), d, verb, args[0], flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVarP(&flags.params, "param", "p", nil, "request parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.label, "label", "", "operation label used in failure notifications")
	cmd.Flags().StringVar(&flags.fallback, "fallback", "null", "JSON value returned when the request fails")
	cmd.Flags().BoolVar(&flags.dry, "dry", false, "record notifications in memory and print them instead of sending them to sinks")
	if verb == "post" {
		cmd.Flags().StringVar(&flags.mode, "mode", "default", "body encoding: default, json or multipart (values starting with @ are files)")
	}
	if verb == "post" || verb == "put" {
		cmd.Flags().StringVar(&flags.body, "data", "", "raw JSON body; overrides --param for json posts and puts")
	}
	return cmd
}

func newPendingCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List loading notifications that were never dismissed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, _, err := openRuntime(cmd.Context(), d, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			ids, err := rt.Outstanding()
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}
			if ids == nil {
				ids = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), ids)
		},
	}
}

func runRequest(ctx context.Context, d deps, verb, path string, flags *requestFlags, out io.Writer) error {
	if flags.baseURL != "" {
		if err := os.Setenv("BASE_URL", flags.baseURL); err != nil {
			return fmt.Errorf("set base url: %w", err)
		}
	}

	mode, err := facade.ParseEncodingMode(flags.mode)
	if err != nil {
		return err
	}
	params, err := parseParams(flags.params, mode == facade.EncodingMultipart)
	if err != nil {
		return err
	}

	rt, rec, err := openRuntime(ctx, d, flags.dry)
	if err != nil {
		return err
	}
	defer rt.Close()

	cmd := app.Command{
		Verb:     verb,
		Path:     path,
		Params:   params,
		Mode:     mode,
		Label:    flags.label,
		Fallback: json.RawMessage(flags.fallback),
	}
	if flags.body != "" {
		cmd.Body = json.RawMessage(flags.body)
		if !json.Valid(cmd.Body) {
			return fmt.Errorf("--data is not valid JSON")
		}
	}

	outcome, err := rt.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	res := result{Outcome: outcome}
	if outcome.Err != nil {
		res.Error = outcome.Err.Error()
	}
	if rec != nil {
		res.Notifications = rec.Events()
	}
	return writeJSON(out, res)
}

func openRuntime(ctx context.Context, d deps, dry bool) (*app.Runtime, *notify.Recorder, error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := d.initLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	var opts []app.Option
	var rec *notify.Recorder
	if dry {
		rec = notify.NewRecorder()
		opts = append(opts, app.WithNotifier(rec))
	}

	rt, err := app.NewRuntime(ctx, cfg, log, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("init runtime: %w", err)
	}
	return rt, rec, nil
}

// parseParams turns key=value pairs into facade params. Repeated keys become
// lists. With files set, a value of the form @path is read as a file part.
func parseParams(pairs []string, files bool) (facade.Params, error) {
	params := facade.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (want key=value)", pair)
		}

		if files && strings.HasPrefix(value, "@") {
			name := strings.TrimPrefix(value, "@")
			content, err := os.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("read file for %q: %w", key, err)
			}
			params[key] = httpclient.MultipartFile{
				Field:       key,
				FileName:    filepath.Base(name),
				ContentType: "application/octet-stream",
				Content:     content,
			}
			continue
		}

		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []string{existing, value}
		case []string:
			params[key] = append(existing, value)
		default:
			return nil, fmt.Errorf("param %q mixes files and values", key)
		}
	}
	return params, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
