// Package faultio implements the simulator's deterministic fault-injecting
// I/O façade (spec.md §4.5): it wraps host file I/O, counts every
// operation, injects read/write/lock/run_once faults at a caller-controlled
// probability, and freezes the clock and RNG the engine observes so a run
// stays reproducible across invocations.
//
// The fault-dispatch shape (check a flag, bump a counter, either fail or
// delegate) is grounded on the teacher's pkg/injection/injector.go
// InjectFault switch; the Prometheus counters are the teacher's
// prometheus/client_golang dependency repointed from scraping a remote
// target to exposing the façade's own operation/fault tallies.
package faultio

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sqlsim/simulator/pkg/engine"
)

// frozenClock is spec.md §4.5's fixed current-time, preventing
// clock-based nondeterminism.
const frozenClock = "2024-01-01 00:00:00"

// errInjectedFault is the sentinel error text spec.md §7 requires for
// synthetic faults.
var errInjectedFault = fmt.Errorf("Injected fault")

// Metrics groups the Prometheus counters the façade exposes (spec.md §4
// domain-stack wiring). A fresh Metrics uses its own registry so multiple
// simulator runs in the same test binary don't collide on registration.
type Metrics struct {
	registry    *prometheus.Registry
	preadTotal  prometheus.Counter
	preadFault  prometheus.Counter
	pwriteTotal prometheus.Counter
	pwriteFault prometheus.Counter
	syncTotal   prometheus.Counter
	lockFault   prometheus.Counter
	runOnceFault prometheus.Counter
}

// NewMetrics constructs and registers the façade's counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		preadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_pread_total", Help: "total pread calls attempted",
		}),
		preadFault: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_pread_faults_total", Help: "injected pread faults",
		}),
		pwriteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_pwrite_total", Help: "total pwrite calls attempted",
		}),
		pwriteFault: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_pwrite_faults_total", Help: "injected pwrite faults",
		}),
		syncTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_sync_total", Help: "total sync calls",
		}),
		lockFault: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_lock_faults_total", Help: "injected lock/unlock faults",
		}),
		runOnceFault: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbsim_io_run_once_faults_total", Help: "injected run_once faults",
		}),
	}
	m.registry.MustRegister(m.preadTotal, m.preadFault, m.pwriteTotal, m.pwriteFault,
		m.syncTotal, m.lockFault, m.runOnceFault)
	return m
}

// Registry exposes the underlying registry for exposition dumps.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Facade is the fault-injecting I/O host (spec.md §4.5). It implements
// engine.IOHost.
type Facade struct {
	fault bool
	files []*File

	rng     *rand.Rand
	metrics *Metrics
	log     zerolog.Logger

	runOnceFaults int
}

// NewFacade constructs a façade seeded from ioSeed — a value the caller
// derives deterministically from the master seed (spec.md §3's
// "documented chain"), kept independent of the driver RNG so engine-visible
// randomness and driver-visible randomness never interleave.
func NewFacade(ioSeed int64, metrics *Metrics, log zerolog.Logger) *Facade {
	return &Facade{
		rng:     rand.New(rand.NewSource(ioSeed)),
		metrics: metrics,
		log:     log,
	}
}

// InjectFault atomically toggles the fault flag on the façade and every
// currently open file (spec.md §4.5).
func (f *Facade) InjectFault(on bool) {
	f.fault = on
	for _, file := range f.files {
		file.fault = on
	}
}

// OpenFile opens path on the host filesystem and registers the resulting
// handle so InjectFault reaches it.
func (f *Facade) OpenFile(path string, flags int) (engine.File, error) {
	osFile, err := os.OpenFile(path, flags|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("faultio: open %s: %w", path, err)
	}

	file := &File{
		path:    path,
		raw:     osFile,
		fault:   f.fault,
		metrics: f.metrics,
		log:     f.log.With().Str("file", path).Logger(),
	}
	f.files = append(f.files, file)
	return file, nil
}

// RunOnce delegates to the engine's progress hook, subject to injection.
func (f *Facade) RunOnce() error {
	if f.fault {
		f.runOnceFaults++
		f.metrics.runOnceFault.Inc()
		f.log.Debug().Msg("run_once fault injected")
		return errInjectedFault
	}
	return nil
}

// GenerateRandomNumber supplies the engine's only source of randomness,
// drawn from the façade's dedicated RNG (spec.md §4.5).
func (f *Facade) GenerateRandomNumber() int64 {
	return f.rng.Int63()
}

// GetCurrentTime returns the frozen clock value.
func (f *Facade) GetCurrentTime() string {
	return frozenClock
}

// RunOnceFaults returns the total run_once faults injected so far.
func (f *Facade) RunOnceFaults() int {
	return f.runOnceFaults
}

// FileStats snapshots one open file's operation counters, for the
// shutdown report of spec.md §6.
type FileStats struct {
	Path         string
	PreadCalls   int
	PreadFaults  int
	PwriteCalls  int
	PwriteFaults int
	SyncCalls    int
	SyncFaults   int
	LockFaults   int
}

// Stats returns a snapshot of every open file's counters.
func (f *Facade) Stats() []FileStats {
	stats := make([]FileStats, len(f.files))
	for i, file := range f.files {
		stats[i] = FileStats{
			Path:         file.path,
			PreadCalls:   file.preadCalls,
			PreadFaults:  file.preadFaults,
			PwriteCalls:  file.pwriteCalls,
			PwriteFaults: file.pwriteFaults,
			SyncCalls:    file.syncCalls,
			LockFaults:   file.lockFaults,
		}
	}
	return stats
}
