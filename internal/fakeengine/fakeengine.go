// Package fakeengine is a minimal paged in-memory SQL engine used as the
// simulator's default target (see SPEC_FULL.md §1). Unlike a
// database/sql-backed adapter, it drives every statement through the
// faultio façade's IOHost/File contract, so it is the only engine able to
// genuinely emit StepNeedsIO and be exercised by fault injection — the
// real-world engine this simulator tests is, by design, external
// (spec.md §1/§6).
//
// It understands exactly the closed grammar pkg/query emits (CREATE
// TABLE/SELECT/INSERT/DELETE plus the sqlite_schema DDL lookup
// maybe_add_table issues) rather than general SQL, since a full parser is
// explicitly out of scope (spec.md §1).
package fakeengine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/predicate"
	"github.com/sqlsim/simulator/pkg/value"
)

type table struct {
	name    string
	columns []value.Column
	rows    [][]value.Value
	ddl     string
}

// Database is the in-memory engine handle.
type Database struct {
	io     engine.IOHost
	file   engine.File
	tables map[string]*table
	closed bool
}

// Open creates the simulator's single persisted database file through io
// and returns a Database backed by it (spec.md §6's open_database).
func Open(io engine.IOHost, dir string) (*Database, error) {
	path := filepath.Join(dir, "simulator.db")
	file, err := io.OpenFile(path, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("fakeengine: open database file: %w", err)
	}
	return &Database{io: io, file: file, tables: make(map[string]*table)}, nil
}

// Connect returns a new logical connection over the shared database file.
func (d *Database) Connect(ctx context.Context) (engine.Connection, error) {
	if d.closed {
		return nil, fmt.Errorf("fakeengine: database closed")
	}
	return &connection{db: d}, nil
}

// Close releases the backing file.
func (d *Database) Close() error {
	d.closed = true
	return d.file.Close()
}

type connection struct {
	db     *Database
	closed bool
}

func (c *connection) Close() error {
	c.closed = true
	return nil
}

// Query parses and executes sql, touching the page file once per
// statement so the façade's fault injection has something to bite on.
func (c *connection) Query(ctx context.Context, sql string) (engine.RowStream, error) {
	if c.closed {
		return nil, fmt.Errorf("fakeengine: query on closed connection")
	}
	sql = strings.TrimSpace(sql)

	switch {
	case strings.HasPrefix(sql, "CREATE TABLE "):
		return c.execCreate(sql)
	case strings.HasPrefix(sql, "SELECT sql FROM sqlite_schema WHERE name = "):
		return c.execSchemaLookup(sql)
	case strings.HasPrefix(sql, "SELECT * FROM "):
		return c.execSelect(sql)
	case strings.HasPrefix(sql, "INSERT INTO "):
		return c.execInsert(sql)
	case strings.HasPrefix(sql, "DELETE FROM "):
		return c.execDelete(sql)
	default:
		return nil, fmt.Errorf("fakeengine: unrecognized statement: %s", sql)
	}
}

// touchPage performs one read/write pair through the façade, the
// analogue of a real engine loading and flushing a page for this
// statement. It returns the first error encountered, which the caller
// surfaces from the stream's post-NeedsIO step. A short read of the page
// before it was first written (io.EOF) is not an error.
func (d *Database) touchPage() error {
	buf := make([]byte, 4096)
	if _, err := d.file.Pread(0, buf); err != nil && err != io.EOF {
		return err
	}
	if _, err := d.file.Pwrite(0, buf); err != nil {
		return err
	}
	return nil
}

func (c *connection) execCreate(sql string) (engine.RowStream, error) {
	ddl := sql
	body := strings.TrimPrefix(sql, "CREATE TABLE ")
	parenIdx := strings.Index(body, "(")
	if parenIdx < 0 {
		return nil, fmt.Errorf("fakeengine: malformed CREATE TABLE: %s", sql)
	}
	name := strings.TrimSpace(body[:parenIdx])
	if _, exists := c.db.tables[name]; exists {
		return nil, fmt.Errorf("fakeengine: table %q already exists", name)
	}

	closeIdx := strings.LastIndex(body, ")")
	if closeIdx < 0 || closeIdx < parenIdx {
		return nil, fmt.Errorf("fakeengine: malformed CREATE TABLE: %s", sql)
	}
	colsText := body[parenIdx+1 : closeIdx]

	var columns []value.Column
	for _, part := range strings.Split(colsText, ", ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, fmt.Errorf("fakeengine: malformed column definition %q", part)
		}
		columns = append(columns, value.Column{Name: fields[0], Type: parseColumnType(fields[1])})
	}

	c.db.tables[name] = &table{name: name, columns: columns, ddl: ddl}
	return newStream(c.db, nil), nil
}

func parseColumnType(s string) value.ColumnType {
	switch s {
	case "INTEGER":
		return value.Integer
	case "FLOAT":
		return value.Float
	case "TEXT":
		return value.Text
	case "BLOB":
		return value.Blob
	default:
		return value.Integer
	}
}

func (c *connection) execSchemaLookup(sql string) (engine.RowStream, error) {
	name, err := extractQuoted(sql, "name = ")
	if err != nil {
		return nil, err
	}
	tbl, ok := c.db.tables[name]
	if !ok {
		return newStream(c.db, nil), nil
	}
	rows := [][]value.Value{{value.NewText(tbl.ddl)}}
	return newStream(c.db, rows), nil
}

func extractQuoted(sql, marker string) (string, error) {
	idx := strings.Index(sql, marker)
	if idx < 0 {
		return "", fmt.Errorf("fakeengine: missing %q in %s", marker, sql)
	}
	rest := sql[idx+len(marker):]
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '\'' {
		return "", fmt.Errorf("fakeengine: malformed quoted literal in %s", sql)
	}
	end := strings.IndexByte(rest[1:], '\'')
	if end < 0 {
		return "", fmt.Errorf("fakeengine: unterminated quoted literal in %s", sql)
	}
	return rest[1 : 1+end], nil
}

func (c *connection) execSelect(sql string) (engine.RowStream, error) {
	rest := strings.TrimPrefix(sql, "SELECT * FROM ")
	name, pred, err := splitNameAndWhere(rest)
	if err != nil {
		return nil, err
	}
	tbl, ok := c.db.tables[name]
	if !ok {
		return nil, fmt.Errorf("fakeengine: unknown table %q", name)
	}

	var matched [][]value.Value
	for _, row := range tbl.rows {
		if predicate.Eval(pred, rowValues(tbl, row)) {
			matched = append(matched, row)
		}
	}
	return newStream(c.db, matched), nil
}

func (c *connection) execDelete(sql string) (engine.RowStream, error) {
	rest := strings.TrimPrefix(sql, "DELETE FROM ")
	name, pred, err := splitNameAndWhere(rest)
	if err != nil {
		return nil, err
	}
	tbl, ok := c.db.tables[name]
	if !ok {
		return nil, fmt.Errorf("fakeengine: unknown table %q", name)
	}

	kept := tbl.rows[:0:0]
	for _, row := range tbl.rows {
		if !predicate.Eval(pred, rowValues(tbl, row)) {
			kept = append(kept, row)
		}
	}
	tbl.rows = kept
	return newStream(c.db, nil), nil
}

func (c *connection) execInsert(sql string) (engine.RowStream, error) {
	rest := strings.TrimPrefix(sql, "INSERT INTO ")
	sp := strings.Index(rest, " VALUES (")
	if sp < 0 {
		return nil, fmt.Errorf("fakeengine: malformed INSERT: %s", sql)
	}
	name := strings.TrimSpace(rest[:sp])
	valuesText := rest[sp+len(" VALUES (") : strings.LastIndex(rest, ")")]

	tbl, ok := c.db.tables[name]
	if !ok {
		return nil, fmt.Errorf("fakeengine: unknown table %q", name)
	}

	var row []value.Value
	if strings.TrimSpace(valuesText) != "" {
		for _, lit := range strings.Split(valuesText, ", ") {
			row = append(row, parseValueLiteral(strings.TrimSpace(lit)))
		}
	}
	tbl.rows = append(tbl.rows, row)
	return newStream(c.db, nil), nil
}

func splitNameAndWhere(s string) (string, *predicate.Predicate, error) {
	idx := strings.Index(s, " WHERE ")
	if idx < 0 {
		return "", nil, fmt.Errorf("fakeengine: missing WHERE in %q", s)
	}
	name := strings.TrimSpace(s[:idx])
	whereText := strings.TrimSpace(s[idx+len(" WHERE "):])
	pred, err := parsePredicate(whereText)
	if err != nil {
		return "", nil, err
	}
	return name, pred, nil
}

func rowValues(tbl *table, row []value.Value) predicate.RowValues {
	rv := make(predicate.RowValues, len(tbl.columns))
	for i, col := range tbl.columns {
		rv[col.Name] = row[i]
	}
	return rv
}
