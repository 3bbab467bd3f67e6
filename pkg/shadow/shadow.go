// Package shadow implements the simulator's in-memory mirror of engine
// state (spec.md §3/§4.4): per-table schema and rows kept in lock-step
// with statements submitted to the engine, used for equivalence checks.
package shadow

import (
	"fmt"

	"github.com/sqlsim/simulator/pkg/predicate"
	"github.com/sqlsim/simulator/pkg/value"
)

// Row is an ordered sequence of values, one per column.
type Row []value.Value

// Table is the shadow's authoritative copy of one table's schema and rows.
type Table struct {
	Name       string
	ColumnDefs []value.Column
	Rows       []Row
}

// Columns satisfies predicate.Table.
func (tbl *Table) Columns() []value.Column {
	return tbl.ColumnDefs
}

// TableName satisfies query.Table.
func (tbl *Table) TableName() string {
	return tbl.Name
}

// Equal reports whether two rows are structurally equal, value by value.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Tables is the shadow model: a named collection of Table.
type Tables struct {
	byName map[string]*Table
	order  []string
}

// New creates an empty shadow model.
func New() *Tables {
	return &Tables{byName: make(map[string]*Table)}
}

// Create appends a new empty table; fails if the name is taken (spec.md
// §4.4).
func (t *Tables) Create(name string, columns []value.Column) error {
	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("shadow: table %q already exists", name)
	}
	tbl := &Table{Name: name, ColumnDefs: columns}
	t.byName[name] = tbl
	t.order = append(t.order, name)
	return nil
}

// Get returns the named table, or nil if absent.
func (t *Tables) Get(name string) *Table {
	return t.byName[name]
}

// All returns every table in creation order.
func (t *Tables) All() []*Table {
	tables := make([]*Table, 0, len(t.order))
	for _, name := range t.order {
		tables = append(tables, t.byName[name])
	}
	return tables
}

// Len returns the number of tables.
func (t *Tables) Len() int {
	return len(t.order)
}

// Insert appends row to the named table (spec.md §4.4). Values must match
// column types in length; kind checking is the generator's responsibility
// upstream (the shadow trusts its caller, mirroring the query builder's
// one-value-per-column contract).
func (t *Tables) Insert(name string, row Row) error {
	tbl := t.byName[name]
	if tbl == nil {
		return fmt.Errorf("shadow: insert into unknown table %q", name)
	}
	if len(row) != len(tbl.ColumnDefs) {
		return fmt.Errorf("shadow: row has %d values, table %q has %d columns", len(row), name, len(tbl.ColumnDefs))
	}
	tbl.Rows = append(tbl.Rows, row)
	return nil
}

// Delete removes every row matching pred (simulator-side evaluator),
// preserving the relative order of surviving rows.
func (t *Tables) Delete(name string, pred *predicate.Predicate) (int, error) {
	tbl := t.byName[name]
	if tbl == nil {
		return 0, fmt.Errorf("shadow: delete from unknown table %q", name)
	}

	kept := tbl.Rows[:0:0]
	removed := 0
	for _, row := range tbl.Rows {
		if predicate.Eval(pred, columnValues(tbl, row)) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	tbl.Rows = kept
	return removed, nil
}

// Select returns every row of name matching pred, in insertion order.
func (t *Tables) Select(name string, pred *predicate.Predicate) ([]Row, error) {
	tbl := t.byName[name]
	if tbl == nil {
		return nil, fmt.Errorf("shadow: select from unknown table %q", name)
	}

	matched := make([]Row, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if predicate.Eval(pred, columnValues(tbl, row)) {
			matched = append(matched, append(Row(nil), row...))
		}
	}
	return matched, nil
}

// columnValues adapts a shadow row into the column-name-indexed lookup
// predicate.Eval expects.
func columnValues(tbl *Table, row Row) predicate.RowValues {
	rv := make(predicate.RowValues, len(tbl.ColumnDefs))
	for i, col := range tbl.ColumnDefs {
		rv[col.Name] = row[i]
	}
	return rv
}

// ColumnValues of a table across all current rows, by column index. Used
// by the predicate builder to pick a column's existing value population
// (spec.md §4.2's `vals = T.shadow_rows[·][c_index]`).
func (tbl *Table) ColumnValues(colIndex int) []value.Value {
	vals := make([]value.Value, len(tbl.Rows))
	for i, row := range tbl.Rows {
		vals[i] = row[colIndex]
	}
	return vals
}
