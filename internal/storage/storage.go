// Package storage persists pending notification handles so leaks survive restarts.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Ledger tracks loading notifications that have not been dismissed yet.
type Ledger interface {
	Close() error
	Track(id string) error
	Release(id string) (bool, error)
	Outstanding() ([]string, error)
}

// Options controls retention characteristics for concrete ledger implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewLedger creates the configured ledger backend.
func NewLedger(typ, path string, opts Options) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopLedger{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt ledger requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported ledger type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopLedger struct{}

func (noopLedger) Close() error                   { return nil }
func (noopLedger) Track(string) error             { return nil }
func (noopLedger) Release(string) (bool, error)   { return false, nil }
func (noopLedger) Outstanding() ([]string, error) { return nil, nil }
