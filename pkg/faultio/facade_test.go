package faultio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// TestInjectedPreadFault covers S5: with fault probability forced to 1 for
// a single pread, the façade returns an "Injected fault" error and
// pread_faults increments by exactly 1.
func TestInjectedPreadFault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simulator.db")

	facade := NewFacade(1, NewMetrics(), zerolog.Nop())
	file, err := facade.OpenFile(path, os.O_RDWR)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	facade.InjectFault(true)

	buf := make([]byte, 16)
	_, err = file.Pread(0, buf)
	if err == nil {
		t.Fatal("expected injected fault error, got nil")
	}

	stats := facade.Stats()
	if len(stats) != 1 || stats[0].PreadFaults != 1 {
		t.Fatalf("stats = %+v, want exactly 1 pread fault", stats)
	}
}

func TestSyncNeverFaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simulator.db")

	facade := NewFacade(1, NewMetrics(), zerolog.Nop())
	file, err := facade.OpenFile(path, os.O_RDWR)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	facade.InjectFault(true)

	if err := file.Sync(); err != nil {
		t.Fatalf("Sync should never fail from injection, got %v", err)
	}
}

func TestFrozenClock(t *testing.T) {
	facade := NewFacade(1, NewMetrics(), zerolog.Nop())
	if got := facade.GetCurrentTime(); got != "2024-01-01 00:00:00" {
		t.Fatalf("GetCurrentTime() = %q, want frozen clock", got)
	}
}
