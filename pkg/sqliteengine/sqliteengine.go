// Package sqliteengine adapts a real modernc.org/sqlite database to the
// simulator's engine.Database/Connection/RowStream contract (spec.md §6),
// so a run can target an actual engine instead of internal/fakeengine.
//
// database/sql is synchronous: every statement here runs to completion
// inside Query, so RowStream.Next never returns engine.StepNeedsIO. That
// is a real property of this adapter, not a missing feature — only
// internal/fakeengine's paged in-memory model can produce IO suspension
// points for the façade's fault injection to land on.
package sqliteengine

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sqlsim/simulator/pkg/engine"
)

// Database wraps a *sql.DB opened against the pure-Go sqlite driver.
type Database struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database file at path.
func Open(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqliteengine: open %s: %w", path, err)
	}
	return &Database{db: db}, nil
}

// Connect returns a logical connection bound to the shared *sql.DB pool.
func (d *Database) Connect(ctx context.Context) (engine.Connection, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqliteengine: connect: %w", err)
	}
	return &connection{conn: conn}, nil
}

// Close closes the underlying pool.
func (d *Database) Close() error {
	return d.db.Close()
}

type connection struct {
	conn *sql.Conn
}

func (c *connection) Close() error {
	return c.conn.Close()
}

// Query executes sql directly against sqlite. CREATE/INSERT/DELETE use
// Exec; only SELECT (and the sqlite_schema DDL lookup) produce rows.
func (c *connection) Query(ctx context.Context, query string) (engine.RowStream, error) {
	isQuery := len(query) >= 6 && query[:6] == "SELECT"
	if !isQuery {
		if _, err := c.conn.ExecContext(ctx, query); err != nil {
			return nil, fmt.Errorf("sqliteengine: exec: %w", err)
		}
		return &rowStream{done: true}, nil
	}

	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqliteengine: query: %w", err)
	}
	return &rowStream{rows: rows}, nil
}

type rowStream struct {
	rows *sql.Rows
	done bool
}

func (s *rowStream) Next(ctx context.Context) (engine.StepKind, engine.Row, error) {
	if s.done || s.rows == nil {
		return engine.StepDone, engine.Row{}, nil
	}
	if !s.rows.Next() {
		s.done = true
		if err := s.rows.Err(); err != nil {
			return engine.StepDone, engine.Row{}, fmt.Errorf("sqliteengine: row iteration: %w", err)
		}
		return engine.StepDone, engine.Row{}, s.rows.Close()
	}

	cols, err := s.rows.Columns()
	if err != nil {
		return engine.StepDone, engine.Row{}, fmt.Errorf("sqliteengine: columns: %w", err)
	}
	raw := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return engine.StepDone, engine.Row{}, fmt.Errorf("sqliteengine: scan: %w", err)
	}

	cells := make([]engine.Cell, len(raw))
	for i, v := range raw {
		cells[i] = toCell(v)
	}
	return engine.StepRow, engine.Row{Values: cells}, nil
}

func toCell(v interface{}) engine.Cell {
	switch t := v.(type) {
	case nil:
		return engine.Cell{Kind: engine.CellNull}
	case int64:
		return engine.Cell{Kind: engine.CellInteger, Integer: t}
	case float64:
		return engine.Cell{Kind: engine.CellFloat, Float: t}
	case string:
		return engine.Cell{Kind: engine.CellText, Text: t}
	case []byte:
		return engine.Cell{Kind: engine.CellBlob, Blob: append([]byte(nil), t...)}
	default:
		return engine.Cell{Kind: engine.CellText, Text: fmt.Sprintf("%v", t)}
	}
}
