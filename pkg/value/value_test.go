package value

import (
	"math/rand"
	"testing"
)

// TestStrictlyLessGreaterInteger covers S4 and invariant 6 for Integer.
func TestStrictlyLessGreaterInteger(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := NewInteger(100)

	for i := 0; i < 10000; i++ {
		lt, err := StrictlyLess(rng, v)
		if err != nil {
			t.Fatalf("StrictlyLess: %v", err)
		}
		if lt.Kind != KindInteger || lt.Integer >= 100 {
			t.Fatalf("StrictlyLess(100) produced %+v, want < 100", lt)
		}

		gt, err := StrictlyGreater(rng, v)
		if err != nil {
			t.Fatalf("StrictlyGreater: %v", err)
		}
		if gt.Kind != KindInteger || gt.Integer <= 100 {
			t.Fatalf("StrictlyGreater(100) produced %+v, want > 100", gt)
		}
	}
}

func TestStrictlyGreaterFloat(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	v := NewFloat(0.0)

	gt, err := StrictlyGreater(rng, v)
	if err != nil {
		t.Fatalf("StrictlyGreater: %v", err)
	}
	if gt.Kind != KindFloat || gt.Float <= 0.0 {
		t.Fatalf("StrictlyGreater(0.0) produced %+v, want > 0.0", gt)
	}
}

func TestStrictlyLessIntegerMinBoundary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	_, err := StrictlyLess(rng, NewInteger(-9223372036854775808))
	if err == nil {
		t.Fatal("expected error at i64 MinInt64 boundary, got nil")
	}
}

func TestTextStrictlyLessGreater(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	v := NewText("hello")

	for i := 0; i < 1000; i++ {
		lt, err := StrictlyLess(rng, v)
		if err != nil {
			t.Fatalf("StrictlyLess text: %v", err)
		}
		if lt.Kind != KindText || !lt.Less(v) {
			t.Fatalf("StrictlyLess(%q) produced %q, want strictly less", v.Text, lt.Text)
		}

		gt, err := StrictlyGreater(rng, v)
		if err != nil {
			t.Fatalf("StrictlyGreater text: %v", err)
		}
		if gt.Kind != KindText || !v.Less(gt) {
			t.Fatalf("StrictlyGreater(%q) produced %q, want strictly greater", v.Text, gt.Text)
		}
	}
}

func TestValueSQLEscapesQuotes(t *testing.T) {
	v := NewText("it's")
	got := v.SQL()
	want := "'it''s'"
	if got != want {
		t.Fatalf("SQL() = %q, want %q", got, want)
	}
}

func TestPickFromEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	v := PickFrom(rng, nil)
	if v.Kind != KindNull {
		t.Fatalf("PickFrom(nil) = %+v, want Null", v)
	}
}

func TestStrictlyUnequalAvoidsExisting(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	vals := []Value{NewInteger(1), NewInteger(2), NewInteger(3)}
	for i := 0; i < 100; i++ {
		v := StrictlyUnequal(rng, Integer, vals)
		for _, existing := range vals {
			if v.Equal(existing) {
				t.Fatalf("StrictlyUnequal produced a value equal to an existing one: %+v", v)
			}
		}
	}
}
