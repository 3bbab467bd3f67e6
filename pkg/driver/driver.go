// Package driver implements the Tick Loop (spec.md §4.6): it owns
// SimulatorEnv — the shadow tables, connection slots, I/O façade, engine
// handle, and driver RNG — and advances one tick at a time, executing
// workload steps against the engine and keeping the shadow in lock-step.
package driver

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/predicate"
	"github.com/sqlsim/simulator/pkg/query"
	"github.com/sqlsim/simulator/pkg/runner"
	"github.com/sqlsim/simulator/pkg/shadow"
	"github.com/sqlsim/simulator/pkg/value"
	"github.com/sqlsim/simulator/pkg/workload"
)

// connState is a SimConnection's lifecycle state (spec.md §3).
type connState int

const (
	disconnected connState = iota
	connected
)

type connSlot struct {
	state connState
	conn  engine.Connection
}

// defaultMaxConnections bounds the slot pool; spec.md §3 names
// max_connections as an opt but SPEC_FULL.md's CLI surface leaves it
// unconfigured, so it is fixed here rather than plumbed through flags.
const defaultMaxConnections = 4

// Opts mirrors spec.md §3's SimulatorOpts, with the read/write/delete
// percentages sourced from a workload.Profile instead of hardcoded
// constants. The profile's query weights are not part of Opts.
type Opts struct {
	Ticks          int
	MaxTables      int
	MaxConnections int
	Mix            workload.OperationMix

	// OnTick, if set, is called after every completed tick (err is the
	// tick's outcome, nil on success) — the hook cmd/simulator's --log
	// JSONL writer attaches to, mirroring the teacher's per-round
	// RoundResult log.
	OnTick func(tick int, err error)
}

// Env is SimulatorEnv (spec.md §4.6): it exclusively owns the shadow
// tables, connection slots, the I/O façade, the database handle, and the
// driver RNG.
type Env struct {
	db     engine.Database
	io     engine.IOHost
	rng    *rand.Rand
	runner *runner.Runner
	tables *shadow.Tables
	conns  []connSlot
	opts   Opts
	log    zerolog.Logger

	ddlMismatches int
}

// New constructs a driver environment. rng is the dedicated driver RNG
// (spec.md §3) — distinct from the façade's I/O RNG — seeded from the
// run's master seed.
func New(db engine.Database, io engine.IOHost, rng *rand.Rand, r *runner.Runner, opts Opts, log zerolog.Logger) *Env {
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = defaultMaxConnections
	}
	return &Env{
		db:     db,
		io:     io,
		rng:    rng,
		runner: r,
		tables: shadow.New(),
		conns:  make([]connSlot, opts.MaxConnections),
		opts:   opts,
		log:    log,
	}
}

// Tables exposes the shadow model, e.g. for a shutdown report.
func (e *Env) Tables() *shadow.Tables { return e.tables }

// Run advances opts.Ticks ticks, stopping early on the first engine error
// (spec.md §4.6 rule 5 — fail-fast, the failure itself is the signal).
func (e *Env) Run(ctx context.Context) error {
	for tick := 0; tick < e.opts.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.step(ctx)
		if e.opts.OnTick != nil {
			e.opts.OnTick(tick, err)
		}
		if err != nil {
			e.log.Error().Err(err).Int("tick", tick).Msg("engine error, terminating run")
			return fmt.Errorf("driver: tick %d: %w", tick, err)
		}
	}
	return nil
}

// step runs one tick of spec.md §4.6's algorithm.
func (e *Env) step(ctx context.Context) error {
	slot := e.rng.Intn(len(e.conns))

	switch e.conns[slot].state {
	case disconnected:
		conn, err := e.db.Connect(ctx)
		if err != nil {
			return err
		}
		e.conns[slot] = connSlot{state: connected, conn: conn}
		return nil

	case connected:
		if e.rng.Intn(100) == 0 {
			_ = e.conns[slot].conn.Close() // errors ignored per spec.md §4.6
			e.conns[slot] = connSlot{state: disconnected}
			return nil
		}
		return e.workloadStep(ctx, slot)

	default:
		return nil
	}
}

func (e *Env) workloadStep(ctx context.Context, slot int) error {
	if e.tables.Len() == 0 || e.rng.Intn(100) == 0 {
		return e.maybeAddTable(ctx, slot)
	}
	return e.executeOperation(ctx, slot)
}

// maybeAddTable builds a fresh table, issues its DDL, and verifies the
// round trip through sqlite_schema before admitting it to the shadow
// (spec.md §4.6's maybe_add_table, invariant 4).
func (e *Env) maybeAddTable(ctx context.Context, slot int) error {
	if e.tables.Len() >= e.opts.MaxTables {
		return nil
	}

	def := query.GenerateTable(e.rng)
	create := query.Query{Kind: query.KindCreate, NewTable: &def}
	ddl := create.SQL()

	conn := e.conns[slot].conn
	if _, err := e.runner.Run(ctx, conn, e.io, e.rng, ddl); err != nil {
		return err
	}

	lookup := fmt.Sprintf("SELECT sql FROM sqlite_schema WHERE name = '%s'", def.Name)
	rows, err := e.runner.Run(ctx, conn, e.io, e.rng, lookup)
	if err != nil {
		return err
	}
	if len(rows) != 1 || rows[0][0].Text != ddl {
		e.ddlMismatches++
		e.log.Fatal().Str("table", def.Name).Str("issued", ddl).
			Interface("stored", rows).Msg("DDL round-trip mismatch")
	}

	return e.tables.Create(def.Name, def.Columns)
}

// executeOperation picks a table uniformly and an operation class from
// the workload's read/write/delete mix, resolving spec.md §9 open
// question 5 instead of always targeting tables[0].
func (e *Env) executeOperation(ctx context.Context, slot int) error {
	tables := e.tables.All()
	tbl := tables[e.rng.Intn(len(tables))]
	conn := e.conns[slot].conn

	switch pickOperation(e.rng, e.opts.Mix) {
	case opRead:
		return e.runSelect(ctx, conn, tbl)
	case opWrite:
		return e.runInsert(ctx, conn, tbl)
	default:
		return e.runDelete(ctx, conn, tbl)
	}
}

func (e *Env) runSelect(ctx context.Context, conn engine.Connection, tbl *shadow.Table) error {
	guard := predicate.Arbitrary(e.rng, tbl)
	q := query.Query{Kind: query.KindSelect, TableName: tbl.TableName(), Guard: guard}

	engineRows, err := e.runner.Run(ctx, conn, e.io, e.rng, q.SQL())
	if err != nil {
		return err
	}

	shadowRows, err := e.tables.Select(tbl.Name, guard)
	if err != nil {
		return err
	}
	if !rowsEquivalent(engineRows, shadowRows) {
		e.log.Fatal().Str("table", tbl.Name).Msg("shadow equivalence violated")
	}
	e.log.Debug().Str("table", tbl.Name).Int("rows", len(engineRows)).Msg("select")
	return nil
}

func (e *Env) runInsert(ctx context.Context, conn engine.Connection, tbl *shadow.Table) error {
	q := query.InsertFor(e.rng, tbl)
	if _, err := e.runner.Run(ctx, conn, e.io, e.rng, q.SQL()); err != nil {
		return err
	}
	return e.tables.Insert(tbl.Name, shadow.Row(q.Values))
}

func (e *Env) runDelete(ctx context.Context, conn engine.Connection, tbl *shadow.Table) error {
	guard := predicate.Arbitrary(e.rng, tbl)
	q := query.Query{Kind: query.KindDelete, TableName: tbl.TableName(), Guard: guard}

	if _, err := e.runner.Run(ctx, conn, e.io, e.rng, q.SQL()); err != nil {
		return err
	}
	_, err := e.tables.Delete(tbl.Name, guard)
	return err
}

func rowsEquivalent(engineRows [][]value.Value, shadowRows []shadow.Row) bool {
	if len(engineRows) != len(shadowRows) {
		return false
	}
	for i := range engineRows {
		if !shadow.Row(engineRows[i]).Equal(shadowRows[i]) {
			return false
		}
	}
	return true
}

type operation int

const (
	opRead operation = iota
	opWrite
	opDelete
)

// pickOperation draws a read/write/delete class from mix's percentages.
// A zero-total mix falls back to a uniform three-way split.
func pickOperation(rng *rand.Rand, mix workload.OperationMix) operation {
	total := mix.TotalMix()
	if total <= 0 {
		return operation(rng.Intn(3))
	}
	n := rng.Intn(total)
	switch {
	case n < mix.ReadPercent:
		return opRead
	case n < mix.ReadPercent+mix.WritePercent:
		return opWrite
	default:
		return opDelete
	}
}
