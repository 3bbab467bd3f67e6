package query

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/sqlsim/simulator/pkg/shadow"
	"github.com/sqlsim/simulator/pkg/value"
)

func TestGenerateTableColumnsUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		def := GenerateTable(rng)
		if len(def.Columns) < minColumns || len(def.Columns) > maxColumns {
			t.Fatalf("column count %d out of [%d, %d]", len(def.Columns), minColumns, maxColumns)
		}
		seen := make(map[string]bool)
		for _, c := range def.Columns {
			if seen[c.Name] {
				t.Fatalf("duplicate column name %q in generated table", c.Name)
			}
			seen[c.Name] = true
		}
	}
}

func TestInsertSQLFormat(t *testing.T) {
	q := Query{
		Kind:      KindInsert,
		TableName: "t",
		Values:    []value.Value{value.NewInteger(7)},
	}
	got := q.SQL()
	want := "INSERT INTO t VALUES (7)"
	if got != want {
		t.Fatalf("SQL() = %q, want %q", got, want)
	}
}

func TestCreateSQLFormat(t *testing.T) {
	def := TableDef{Name: "t", Columns: []value.Column{{Name: "x", Type: value.Integer}}}
	q := Query{Kind: KindCreate, NewTable: &def}
	got := q.SQL()
	if !strings.HasPrefix(got, "CREATE TABLE t (x INTEGER);") {
		t.Fatalf("SQL() = %q, want CREATE TABLE prefix", got)
	}
}

func TestArbitraryRespectsTableType(t *testing.T) {
	tables := shadow.New()
	cols := []value.Column{{Name: "x", Type: value.Integer}}
	tables.Create("t", cols)
	tbl := tables.Get("t")

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		q := Arbitrary(rng, tbl)
		if q.Kind == KindInsert && len(q.Values) != 1 {
			t.Fatalf("insert produced %d values, want 1", len(q.Values))
		}
		if q.Kind == KindInsert && q.Values[0].Kind != value.KindInteger {
			t.Fatalf("insert produced %+v for an INTEGER column, want an Integer value", q.Values[0])
		}
	}
}
