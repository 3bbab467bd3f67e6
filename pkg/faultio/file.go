package faultio

import (
	"os"

	"github.com/rs/zerolog"
)

// File is a fault-injectable wrapper around a single host file handle
// (spec.md §4.5). It implements engine.File.
type File struct {
	path  string
	raw   *os.File
	fault bool

	metrics *Metrics
	log     zerolog.Logger

	preadCalls, preadFaults   int
	pwriteCalls, pwriteFaults int
	syncCalls                int
	lockFaults                int
}

// LockFile acquires (or fails to acquire, under injection) a lock on the
// file. The simulator does not model real cross-process locking — only
// the fault-injection surface spec.md §4.5 requires of it.
func (f *File) LockFile(exclusive bool) error {
	if f.fault {
		f.lockFaults++
		f.metrics.lockFault.Inc()
		f.log.Debug().Bool("exclusive", exclusive).Msg("lock fault injected")
		return errInjectedFault
	}
	return nil
}

// UnlockFile releases the file's lock, subject to the same injection as
// LockFile.
func (f *File) UnlockFile() error {
	if f.fault {
		f.lockFaults++
		f.metrics.lockFault.Inc()
		f.log.Debug().Msg("unlock fault injected")
		return errInjectedFault
	}
	return nil
}

// Pread reads at pos into buf, or fails with an injected fault.
func (f *File) Pread(pos int64, buf []byte) (int, error) {
	f.preadCalls++
	f.metrics.preadTotal.Inc()
	if f.fault {
		f.preadFaults++
		f.metrics.preadFault.Inc()
		f.log.Debug().Int64("pos", pos).Msg("pread fault injected")
		return 0, errInjectedFault
	}
	return f.raw.ReadAt(buf, pos)
}

// Pwrite writes buf at pos, or fails with an injected fault.
func (f *File) Pwrite(pos int64, buf []byte) (int, error) {
	f.pwriteCalls++
	f.metrics.pwriteTotal.Inc()
	if f.fault {
		f.pwriteFaults++
		f.metrics.pwriteFault.Inc()
		f.log.Debug().Int64("pos", pos).Msg("pwrite fault injected")
		return 0, errInjectedFault
	}
	return f.raw.WriteAt(buf, pos)
}

// Sync flushes to durable storage. Per spec.md §4.5, sync never fails
// from injection — only counts.
func (f *File) Sync() error {
	f.syncCalls++
	f.metrics.syncTotal.Inc()
	return f.raw.Sync()
}

// Size returns the file's current size.
func (f *File) Size() (int64, error) {
	info, err := f.raw.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the file. UnlockFile failure here is fatal (spec.md
// §4.5/§9): it indicates the engine dropped the handle while still
// holding a lock it should have released.
func (f *File) Close() error {
	if err := f.UnlockFile(); err != nil {
		f.log.Fatal().Err(err).Msg("unlock on close failed: engine lock misuse")
	}
	return f.raw.Close()
}
