// Package engine defines the abstract contract the simulator core drives
// (spec.md §6): a Database/Connection/RowStream triple over an I/O host,
// kept deliberately free of any concrete SQL engine so internal/fakeengine
// and pkg/sqliteengine can each satisfy it independently.
package engine

import "context"

// StepKind tags a RowStream.Next result.
type StepKind int

const (
	// StepRow means Row is populated with the next decoded row.
	StepRow StepKind = iota
	// StepNeedsIO means the engine needs run_once called on the I/O
	// façade before it can make further progress (spec.md §4.7/§5).
	StepNeedsIO
	// StepDone means the stream is exhausted.
	StepDone
)

// CellKind tags a Cell's tagged-union variant, mirroring value.Kind
// without importing pkg/value — the engine contract speaks its own value
// vocabulary per spec.md §6, and pkg/runner translates between the two.
type CellKind int

const (
	CellNull CellKind = iota
	CellInteger
	CellFloat
	CellText
	CellBlob
)

// Cell is one engine-returned value, prior to translation into the
// simulator's value.Value.
type Cell struct {
	Kind    CellKind
	Integer int64
	Float   float64
	Text    string
	Blob    []byte
}

// Row is one engine-returned row, prior to translation.
type Row struct {
	Values []Cell
}

// RowStream iterates an in-flight query's results (spec.md §4.7).
type RowStream interface {
	// Next advances the stream one step. On StepRow, row is populated.
	// On StepNeedsIO or StepDone, row is the zero Row.
	Next(ctx context.Context) (StepKind, Row, error)
}

// Connection is one logical database connection (spec.md §3's
// SimConnection).
type Connection interface {
	Query(ctx context.Context, sql string) (RowStream, error)
	Close() error
}

// Database is the top-level engine handle (spec.md §6's open_database).
type Database interface {
	Connect(ctx context.Context) (Connection, error)
	Close() error
}

// IOHost is the engine-consumed I/O interface (spec.md §6), implemented
// by pkg/faultio.Facade.
type IOHost interface {
	OpenFile(path string, flags int) (File, error)
	// RunOnce gives the engine a chance to make progress on outstanding
	// I/O; the only suspension point exposed to the core (spec.md §5).
	RunOnce() error
	GenerateRandomNumber() int64
	GetCurrentTime() string
}

// File is a single opened file handle (spec.md §6).
type File interface {
	LockFile(exclusive bool) error
	UnlockFile() error
	Pread(pos int64, buf []byte) (int, error)
	Pwrite(pos int64, buf []byte) (int, error)
	Sync() error
	Size() (int64, error)
	// Close releases the file. Implementations must call UnlockFile and
	// treat its failure as fatal (spec.md §4.5/§9): a lock left held past
	// Close indicates engine misuse.
	Close() error
}
