package predicate

import (
	"math/rand"
	"testing"

	"github.com/sqlsim/simulator/pkg/value"
)

// stubTable is a minimal Table implementation for exercising the builders
// without depending on pkg/shadow (which itself imports pkg/predicate).
type stubTable struct {
	cols []value.Column
	vals [][]value.Value // per-column value population
}

func (s *stubTable) Columns() []value.Column { return s.cols }
func (s *stubTable) ColumnValues(colIndex int) []value.Value { return s.vals[colIndex] }

func newStubTable() *stubTable {
	return &stubTable{
		cols: []value.Column{{Name: "x", Type: value.Integer}},
		vals: [][]value.Value{
			{value.NewInteger(1), value.NewInteger(2), value.NewInteger(3)},
		},
	}
}

// TestSimplePredicateSoundnessFalse covers invariant 2's want=false half: a
// simple predicate built with want=false must evaluate to false on every
// row currently in the table.
func TestSimplePredicateSoundnessFalse(t *testing.T) {
	tbl := newStubTable()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		pred := SimplePredicate(rng, tbl, false)
		for _, n := range []int64{1, 2, 3} {
			row := RowValues{"x": value.NewInteger(n)}
			if Eval(pred, row) {
				t.Fatalf("predicate %s built with want=false held on row x=%d", pred.SQL(), n)
			}
		}
	}
}

// TestCompoundPredicateSoundnessFalse covers invariant 2's want=false half
// for the recursive And/Or builder (TestPredicateSoundnessTrue in
// pkg/shadow already covers the want=true half).
func TestCompoundPredicateSoundnessFalse(t *testing.T) {
	tbl := newStubTable()
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 50; i++ {
		pred := CompoundPredicate(rng, tbl, false)
		for _, n := range []int64{1, 2, 3} {
			row := RowValues{"x": value.NewInteger(n)}
			if Eval(pred, row) {
				t.Fatalf("predicate %s built with want=false held on row x=%d", pred.SQL(), n)
			}
		}
	}
}

// TestArbitrarySoundness exercises Arbitrary's own want draw against both
// outcomes, rather than assuming CompoundPredicate's soundness transfers.
func TestArbitrarySoundness(t *testing.T) {
	tbl := newStubTable()
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		pred := Arbitrary(rng, tbl)
		want := Eval(pred, RowValues{"x": value.NewInteger(1)})
		for _, n := range []int64{1, 2, 3} {
			row := RowValues{"x": value.NewInteger(n)}
			if Eval(pred, row) != want {
				t.Fatalf("predicate %s disagreed across rows: x=1 -> %v, x=%d -> %v", pred.SQL(), want, n, !want)
			}
		}
	}
}

func TestSQLRendersCompareLeaf(t *testing.T) {
	pred := &Predicate{Kind: KindCompare, Column: "x", Op: OpGt, Value: value.NewInteger(5)}
	if got, want := pred.SQL(), "x > 5"; got != want {
		t.Fatalf("SQL() = %q, want %q", got, want)
	}
}

func TestSQLRendersAndOrGroups(t *testing.T) {
	left := &Predicate{Kind: KindCompare, Column: "x", Op: OpEq, Value: value.NewInteger(1)}
	right := &Predicate{Kind: KindCompare, Column: "x", Op: OpLt, Value: value.NewInteger(10)}

	and := &Predicate{Kind: KindAnd, Children: []*Predicate{left, right}}
	if got, want := and.SQL(), "(x = 1 AND x < 10)"; got != want {
		t.Fatalf("And.SQL() = %q, want %q", got, want)
	}

	or := &Predicate{Kind: KindOr, Children: []*Predicate{left, right}}
	if got, want := or.SQL(), "(x = 1 OR x < 10)"; got != want {
		t.Fatalf("Or.SQL() = %q, want %q", got, want)
	}
}
