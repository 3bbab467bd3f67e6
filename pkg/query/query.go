// Package query implements the simulator's Query tagged union and the
// weighted arbitrary_query generator of spec.md §4.3, including SQL
// serialization for each statement kind.
package query

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sqlsim/simulator/pkg/predicate"
	"github.com/sqlsim/simulator/pkg/randomname"
	"github.com/sqlsim/simulator/pkg/value"
)

// Kind tags a Query's tagged-union variant.
type Kind int

const (
	KindCreate Kind = iota
	KindSelect
	KindInsert
	KindDelete
)

// TableDef is a freshly generated table's name and columns, as produced by
// GenerateTable and consumed by a Create query.
type TableDef struct {
	Name    string
	Columns []value.Column
}

// Query is the tagged union Create{table} | Select{table,guard} |
// Insert{table,values} | Delete{table,guard}, per spec.md §3.
type Query struct {
	Kind Kind

	TableName string
	NewTable  *TableDef   // Create only
	Guard     *predicate.Predicate // Select/Delete only
	Values    []value.Value        // Insert only
}

const (
	minColumns = 1
	maxColumns = 127
)

// GenerateTable builds a freshly arbitrary table definition: a readable
// name and 1..127 uniquely named columns of arbitrary type (spec.md §3's
// Table invariants).
func GenerateTable(rng *rand.Rand) TableDef {
	name := randomname.Generate(rng)
	n := minColumns + rng.Intn(maxColumns-minColumns+1)

	taken := make(map[string]bool, n)
	cols := make([]value.Column, n)
	for i := 0; i < n; i++ {
		colName := randomname.GenerateUnique(rng, taken)
		taken[colName] = true
		cols[i] = value.Column{
			Name: colName,
			Type: value.ArbitraryColumnType(rng),
		}
	}
	return TableDef{Name: name, Columns: cols}
}

// Table is the minimal shape arbitrary_query needs from the target table.
type Table interface {
	predicate.Table
	TableName() string
}

// bucket weights from spec.md §4.3: Create 1, Select 100, Insert 100,
// Delete 100 — 301 buckets total.
const (
	weightCreate = 1
	weightSelect = 100
	weightInsert = 100
	weightDelete = 100
	totalWeight  = weightCreate + weightSelect + weightInsert + weightDelete
)

// Arbitrary builds a Query targeting t, weighted per spec.md §4.3.
func Arbitrary(rng *rand.Rand, t Table) Query {
	n := rng.Intn(totalWeight)
	switch {
	case n < weightCreate:
		def := GenerateTable(rng)
		return Query{Kind: KindCreate, NewTable: &def}
	case n < weightCreate+weightSelect:
		return Query{Kind: KindSelect, TableName: t.TableName(), Guard: predicate.Arbitrary(rng, t)}
	case n < weightCreate+weightSelect+weightInsert:
		return Query{Kind: KindInsert, TableName: t.TableName(), Values: arbitraryRow(rng, t)}
	default:
		return Query{Kind: KindDelete, TableName: t.TableName(), Guard: predicate.Arbitrary(rng, t)}
	}
}

// SelectFor, InsertFor, and DeleteFor build one specific query kind
// against t, bypassing Arbitrary's 301-bucket pick, so a caller can honor a
// workload profile's read/write/delete operation mix (spec.md §9 open
// question 5) instead of always drawing from the full bucket set.
// pkg/driver calls InsertFor; it assembles its Select and Delete queries
// inline, in the same shape SelectFor and DeleteFor return.
func SelectFor(rng *rand.Rand, t Table) Query {
	return Query{Kind: KindSelect, TableName: t.TableName(), Guard: predicate.Arbitrary(rng, t)}
}

func InsertFor(rng *rand.Rand, t Table) Query {
	return Query{Kind: KindInsert, TableName: t.TableName(), Values: arbitraryRow(rng, t)}
}

func DeleteFor(rng *rand.Rand, t Table) Query {
	return Query{Kind: KindDelete, TableName: t.TableName(), Guard: predicate.Arbitrary(rng, t)}
}

func arbitraryRow(rng *rand.Rand, t Table) []value.Value {
	cols := t.Columns()
	vals := make([]value.Value, len(cols))
	for i, c := range cols {
		vals[i] = value.ArbitraryValue(rng, c.Type)
	}
	return vals
}

// SQL renders q as the SQL text of spec.md §4.3.
func (q Query) SQL() string {
	switch q.Kind {
	case KindCreate:
		return createSQL(*q.NewTable)
	case KindSelect:
		return fmt.Sprintf("SELECT * FROM %s WHERE %s", q.TableName, q.Guard.SQL())
	case KindInsert:
		parts := make([]string, len(q.Values))
		for i, v := range q.Values {
			parts[i] = v.SQL()
		}
		return fmt.Sprintf("INSERT INTO %s VALUES (%s)", q.TableName, strings.Join(parts, ", "))
	case KindDelete:
		return fmt.Sprintf("DELETE FROM %s WHERE %s", q.TableName, q.Guard.SQL())
	default:
		return ""
	}
}

func createSQL(def TableDef) string {
	parts := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		parts[i] = fmt.Sprintf("%s %s", c.Name, c.Type.String())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s);", def.Name, strings.Join(parts, ", "))
}
