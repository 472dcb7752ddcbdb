package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T, opts Options) *boltLedger {
	t.Helper()
	raw, err := openBolt(filepath.Join(t.TempDir(), "ledger.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	ledger := raw.(*boltLedger)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestBoltLedgerReleasesOnce(t *testing.T) {
	ledger := openTestLedger(t, Options{})

	if err := ledger.Track("h1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := ledger.Track("h2"); err != nil {
		t.Fatalf("Track: %v", err)
	}

	out, err := ledger.Outstanding()
	if err != nil || len(out) != 2 || out[0] != "h1" {
		t.Fatalf("unexpected outstanding %v err=%v", out, err)
	}

	released, err := ledger.Release("h1")
	if err != nil || !released {
		t.Fatalf("first release: released=%v err=%v", released, err)
	}
	released, err = ledger.Release("h1")
	if err != nil || released {
		t.Fatalf("second release should report false: released=%v err=%v", released, err)
	}

	out, _ = ledger.Outstanding()
	if len(out) != 1 || out[0] != "h2" {
		t.Fatalf("unexpected outstanding after release %v", out)
	}
}

func TestBoltLedgerExpiresEntries(t *testing.T) {
	ledger := openTestLedger(t, Options{EntryTTL: time.Minute, CleanupInterval: time.Minute})
	base := time.Now()
	ledger.now = func() time.Time { return base }

	if err := ledger.Track("stale"); err != nil {
		t.Fatalf("Track: %v", err)
	}

	ledger.now = func() time.Time { return base.Add(2 * time.Minute) }
	out, err := ledger.Outstanding()
	if err != nil || len(out) != 0 {
		t.Fatalf("expired handle still outstanding: %v err=%v", out, err)
	}

	// Fast-forward cleanup cadence; the next Track sweeps expired keys.
	ledger.lastCleanup.Store(base.Add(-time.Hour).Unix())
	if err := ledger.Track("fresh"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	released, err := ledger.Release("stale")
	if err != nil || released {
		t.Fatalf("expired handle should be gone, released=%v err=%v", released, err)
	}
}

func TestNewLedgerSupportsNoop(t *testing.T) {
	ledger, err := NewLedger("none", "", Options{})
	if err != nil {
		t.Fatalf("NewLedger none: %v", err)
	}
	if err := ledger.Track("x"); err != nil {
		t.Fatalf("noop ledger Track: %v", err)
	}
	if _, err := NewLedger("bbolt", "", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewLedger("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
