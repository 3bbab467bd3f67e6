// Package predicate implements the simulator's recursive Predicate tree
// and the semantics-aware Simple/Compound builders of spec.md §4.2: given
// a target table and a required truth value, build a predicate that is
// true (or false) on every row currently in the table's shadow copy by
// construction.
package predicate

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sqlsim/simulator/pkg/value"
)

// Op is the comparison operator of a Simple predicate leaf.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpLt
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	default:
		return "?"
	}
}

// Kind tags a Predicate's tagged-union variant.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindCompare
)

// Predicate is the recursive tagged union And(children) | Or(children) |
// Eq/Gt/Lt(col,val), per spec.md §3.
type Predicate struct {
	Kind     Kind
	Children []*Predicate // And/Or, 1..3 elements

	Column string // Compare
	Op     Op
	Value  value.Value
}

// RowValues maps a column name to a shadow row's value for that column,
// the lookup Eval needs without depending on the shadow package (avoiding
// an import cycle: shadow depends on predicate, not the reverse).
type RowValues map[string]value.Value

// Eval evaluates p against a row's column values with boolean short-circuit,
// per spec.md §4.4.
func Eval(p *Predicate, row RowValues) bool {
	switch p.Kind {
	case KindAnd:
		for _, child := range p.Children {
			if !Eval(child, row) {
				return false
			}
		}
		return true
	case KindOr:
		for _, child := range p.Children {
			if Eval(child, row) {
				return true
			}
		}
		return false
	case KindCompare:
		lhs, ok := row[p.Column]
		if !ok {
			return false
		}
		switch p.Op {
		case OpEq:
			return lhs.Equal(p.Value)
		case OpGt:
			return p.Value.Less(lhs)
		case OpLt:
			return lhs.Less(p.Value)
		}
	}
	return false
}

// SQL renders p as the WHERE-clause fragment of spec.md §4.3.
func (p *Predicate) SQL() string {
	switch p.Kind {
	case KindAnd:
		return joinChildren(p.Children, "AND")
	case KindOr:
		return joinChildren(p.Children, "OR")
	case KindCompare:
		return fmt.Sprintf("%s %s %s", p.Column, p.Op, p.Value.SQL())
	default:
		return ""
	}
}

func joinChildren(children []*Predicate, op string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.SQL()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

// Table is the minimal shape the builder needs from a shadow table: its
// columns and the current value population per column. Defined here
// (rather than imported from pkg/shadow) to keep predicate free of a
// dependency on shadow, which itself depends on predicate.
type Table interface {
	Columns() []value.Column
	ColumnValues(colIndex int) []value.Value
}

// SimplePredicate builds a single comparison over one column of t such
// that it evaluates to want on every row currently in t (spec.md §4.2).
func SimplePredicate(rng *rand.Rand, t Table, want bool) *Predicate {
	cols := t.Columns()
	colIndex := rng.Intn(len(cols))
	col := cols[colIndex]
	vals := t.ColumnValues(colIndex)

	op := []Op{OpEq, OpGt, OpLt}[rng.Intn(3)]

	var rhs value.Value
	switch op {
	case OpEq:
		if want {
			rhs = value.PickFrom(rng, vals)
		} else {
			rhs = value.StrictlyUnequal(rng, col.Type, vals)
		}
	case OpGt:
		pivot := value.PickFrom(rng, vals)
		rhs = boundedStrict(rng, pivot, col.Type, want, true)
	case OpLt:
		pivot := value.PickFrom(rng, vals)
		rhs = boundedStrict(rng, pivot, col.Type, want, false)
	}

	return &Predicate{Kind: KindCompare, Column: col.Name, Op: op, Value: rhs}
}

// boundedStrict resolves the Gt/Lt branch's strictly_less/strictly_greater
// call, falling back to an arbitrary value of the column's type when no
// strict bound exists (the pivot is at the kind's domain boundary, or is
// Null because the table has no rows) — the explicit, non-panicking
// resolution of spec.md §9 Open Question 1.
func boundedStrict(rng *rand.Rand, pivot value.Value, t value.ColumnType, want, isGt bool) value.Value {
	// isGt=true means this is a Gt predicate: want=true needs RHS < pivot
	// (strictly_less), want=false needs RHS > pivot (strictly_greater).
	needLess := (isGt && want) || (!isGt && !want)

	var v value.Value
	var err error
	if needLess {
		v, err = value.StrictlyLess(rng, pivot)
	} else {
		v, err = value.StrictlyGreater(rng, pivot)
	}
	if err != nil {
		// Domain boundary (e.g. pivot == MinInt64/MaxInt64): no strict
		// bound exists. Fall back to an arbitrary same-kind value; this
		// predicate may not hold exactly as intended for that single
		// pivot row, an accepted edge case documented in DESIGN.md.
		return value.ArbitraryValue(rng, t)
	}
	return v
}

// CompoundPredicate builds a bounded And/Or tree over t such that it
// evaluates to want on every row currently in t, per spec.md §4.2.
func CompoundPredicate(rng *rand.Rand, t Table, want bool) *Predicate {
	isAnd := rng.Float64() < 0.7
	n := 1 + rng.Intn(3)

	childWants := make([]bool, n)
	switch {
	case isAnd && want:
		for i := range childWants {
			childWants[i] = true
		}
	case isAnd && !want:
		allTrue := true
		for i := range childWants {
			childWants[i] = rng.Float64() < 0.5
			if !childWants[i] {
				allTrue = false
			}
		}
		if allTrue {
			childWants[rng.Intn(n)] = false
		}
	case !isAnd && want:
		anyTrue := false
		for i := range childWants {
			childWants[i] = rng.Float64() < 0.5
			if childWants[i] {
				anyTrue = true
			}
		}
		if !anyTrue {
			childWants[rng.Intn(n)] = true
		}
	default: // Or / want=false
		for i := range childWants {
			childWants[i] = false
		}
	}

	children := make([]*Predicate, n)
	for i, w := range childWants {
		children[i] = SimplePredicate(rng, t, w)
	}

	kind := KindOr
	if isAnd {
		kind = KindAnd
	}
	return &Predicate{Kind: kind, Children: children}
}

// Arbitrary draws want uniformly and delegates to CompoundPredicate
// (spec.md §4.2's arbitrary_predicate entry point).
func Arbitrary(rng *rand.Rand, t Table) *Predicate {
	want := rng.Float64() < 0.5
	return CompoundPredicate(rng, t, want)
}
