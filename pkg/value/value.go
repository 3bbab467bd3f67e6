// Package value implements the simulator's typed SQL value universe:
// ColumnType, Column, Value, and the arbitrary/strictly_less/
// strictly_greater/pick_from generators of spec.md §3/§4.1. Grounded on
// the sampling idiom of the teacher's pkg/fuzz/sampler.go (a Sampler
// struct wrapping a single *rand.Rand, with triangular/logUniform style
// helpers), generalized from chaos-fault parameters to SQL values.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"math/rand"

	"github.com/sqlsim/simulator/pkg/randomname"
)

// ColumnType is one of the four SQL types the simulator understands.
type ColumnType int

const (
	Integer ColumnType = iota
	Float
	Text
	Blob
)

// String renders the DDL keyword for a column type.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

var allColumnTypes = []ColumnType{Integer, Float, Text, Blob}

// ArbitraryColumnType picks a column type uniformly at random.
func ArbitraryColumnType(rng *rand.Rand) ColumnType {
	return allColumnTypes[rng.Intn(len(allColumnTypes))]
}

// Column is a single table column, per spec.md §3.
type Column struct {
	Name    string
	Type    ColumnType
	Primary bool
	Unique  bool
}

// Kind tags a Value's tagged-union variant.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// Value is the simulator's tagged-union SQL value (spec.md §3).
type Value struct {
	Kind    Kind
	Integer int64
	Float   float64
	Text    string
	Blob    []byte
}

func Null() Value                 { return Value{Kind: KindNull} }
func NewInteger(i int64) Value    { return Value{Kind: KindInteger, Integer: i} }
func NewFloat(f float64) Value    { return Value{Kind: KindFloat, Float: f} }
func NewText(s string) Value      { return Value{Kind: KindText, Text: s} }
func NewBlob(b []byte) Value      { return Value{Kind: KindBlob, Blob: append([]byte(nil), b...)} }

// Equal is structural equality; Float equality is bit-exact (the generator
// never produces NaN, per spec.md §3).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindInteger:
		return v.Integer == o.Integer
	case KindFloat:
		return math.Float64bits(v.Float) == math.Float64bits(o.Float)
	case KindText:
		return v.Text == o.Text
	case KindBlob:
		return string(v.Blob) == string(o.Blob)
	}
	return false
}

// Less reports whether v sorts strictly before o within the same kind.
// Cross-kind comparisons panic: the generator never compares across kinds
// by construction (spec.md §4.4), so a mismatch here is an invariant
// violation worth surfacing loudly rather than masking.
func (v Value) Less(o Value) bool {
	if v.Kind != o.Kind {
		panic(fmt.Sprintf("value: cross-kind comparison %v vs %v", v.Kind, o.Kind))
	}
	switch v.Kind {
	case KindNull:
		return false
	case KindInteger:
		return v.Integer < o.Integer
	case KindFloat:
		return v.Float < o.Float
	case KindText:
		return v.Text < o.Text
	case KindBlob:
		return string(v.Blob) < string(o.Blob)
	}
	return false
}

// SQL renders v as literal SQL text per spec.md §3.
//
// Open Question 4 decision: unlike the original, which never escapes
// quotes and documents emitting one as a bug, this implementation escapes
// a single quote by doubling it (the standard SQL convention) so that
// arbitrary_value's text/blob generation can never produce invalid SQL.
func (v Value) SQL() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.Integer, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindText:
		escaped := strings.ReplaceAll(v.Text, "'", "''")
		return "'" + escaped + "'"
	case KindBlob:
		return "X'" + strings.ToUpper(fmt.Sprintf("%x", v.Blob)) + "'"
	default:
		return "NULL"
	}
}

const (
	floatMin = -1e10
	floatMax = 1e10

	// bigBlobProbability is the 1/1000 chance of a huge ASCII payload
	// (spec.md §4.1), sized log-uniformly in [minBigBlob, maxBigBlob).
	bigBlobProbability = 0.001
	minBigBlob         = 1 << 10               // 1 KiB
	maxBigBlob         = 2 << 30               // 2 GiB
)

// ArbitraryValue draws a value uniformly from t's domain (spec.md §4.1).
func ArbitraryValue(rng *rand.Rand, t ColumnType) Value {
	switch t {
	case Integer:
		return NewInteger(int64(rng.Uint64()))
	case Float:
		return NewFloat(floatMin + rng.Float64()*(floatMax-floatMin))
	case Text:
		return NewText(arbitraryText(rng))
	case Blob:
		return NewBlob([]byte(arbitraryText(rng)))
	default:
		return Null()
	}
}

func arbitraryText(rng *rand.Rand) string {
	if rng.Float64() < bigBlobProbability {
		return bigASCIIBlock(rng)
	}
	return randomname.Generate(rng)
}

// bigASCIIBlock produces printable ASCII of a log-uniform size in
// [minBigBlob, maxBigBlob), exercising overflow-page code paths per
// spec.md §4.1. Log-uniform sizing is grounded on the teacher's
// pkg/fuzz/sampler.go logUniform helper.
func bigASCIIBlock(rng *rand.Rand) string {
	logMin := math.Log(float64(minBigBlob))
	logMax := math.Log(float64(maxBigBlob))
	size := int(math.Exp(logMin + rng.Float64()*(logMax-logMin)))
	if size < minBigBlob {
		size = minBigBlob
	}

	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, size)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

// PickFrom samples uniformly from values; Null on empty input.
func PickFrom(rng *rand.Rand, values []Value) Value {
	if len(values) == 0 {
		return Null()
	}
	return values[rng.Intn(len(values))]
}

// maxSampleAttempts bounds the Open-Question-2 disjoint-sampling retry
// loop in StrictlyUnequal below.
const maxSampleAttempts = 1000

// StrictlyUnequal draws an arbitrary value of type t that is not equal to
// any value in vals, retrying up to maxSampleAttempts times.
//
// Open Question 2 decision: the original samples Eq/want=false's RHS
// uniformly from the full domain with no disjointness guarantee. This
// implementation strengthens that by resampling until the draw is
// disjoint from the existing column values, falling back to the last
// draw (with its weaker guarantee) if the domain is exhausted within the
// attempt budget — documented in DESIGN.md.
func StrictlyUnequal(rng *rand.Rand, t ColumnType, vals []Value) Value {
	var v Value
	for i := 0; i < maxSampleAttempts; i++ {
		v = ArbitraryValue(rng, t)
		if !containsEqual(vals, v) {
			return v
		}
	}
	return v
}

func containsEqual(vals []Value, v Value) bool {
	for _, existing := range vals {
		if existing.Equal(v) {
			return true
		}
	}
	return false
}

// StrictlyLess returns a value strictly less than v, of the same kind.
//
// Open Question 1 decision: rather than leaving behavior undefined at the
// integer domain boundary (i64 MinInt64) as the original does, this
// implementation returns an explicit error there. The predicate builder
// treats it as "no valid strictly-less value exists" and substitutes an
// arbitrary value of the column's type, which does not guarantee the
// requested truth value for that predicate.
func StrictlyLess(rng *rand.Rand, v Value) (Value, error) {
	switch v.Kind {
	case KindInteger:
		if v.Integer == math.MinInt64 {
			return Value{}, fmt.Errorf("value: no integer strictly less than MinInt64")
		}
		lo, hi := int64(math.MinInt64), v.Integer-1
		return NewInteger(uniformInt64(rng, lo, hi)), nil
	case KindFloat:
		return NewFloat(floatMin + rng.Float64()*((v.Float-1.0)-floatMin)), nil
	case KindText:
		return textStrictlyLess(rng, v.Text), nil
	case KindBlob:
		return blobStrictlyLess(rng, v.Blob), nil
	default:
		return Value{}, fmt.Errorf("value: strictly_less undefined for kind %v", v.Kind)
	}
}

// StrictlyGreater is StrictlyLess's mirror image.
func StrictlyGreater(rng *rand.Rand, v Value) (Value, error) {
	switch v.Kind {
	case KindInteger:
		if v.Integer == math.MaxInt64 {
			return Value{}, fmt.Errorf("value: no integer strictly greater than MaxInt64")
		}
		lo, hi := v.Integer+1, int64(math.MaxInt64)
		return NewInteger(uniformInt64(rng, lo, hi)), nil
	case KindFloat:
		return NewFloat((v.Float+1.0) + rng.Float64()*(floatMax-(v.Float+1.0))), nil
	case KindText:
		return textStrictlyGreater(rng, v.Text), nil
	case KindBlob:
		return blobStrictlyGreater(rng, v.Blob), nil
	default:
		return Value{}, fmt.Errorf("value: strictly_greater undefined for kind %v", v.Kind)
	}
}

// uniformInt64 returns a uniform value in [lo, hi], handling the full
// int64 range without overflow in the span computation.
func uniformInt64(rng *rand.Rand, lo, hi int64) int64 {
	if lo > hi {
		return lo
	}
	span := uint64(hi) - uint64(lo) + 1 // wraps correctly when span == 2^64 conceptually; lo<=hi keeps it in range
	if span == 0 {
		return int64(rng.Uint64())
	}
	return lo + int64(rng.Uint64()%span)
}

// textStrictlyLess mutates t's bytes so the result sorts strictly before
// t, per spec.md §4.1: with 1% probability drop the last byte, otherwise
// decrement a chosen byte and randomize the suffix after it. The result
// is not re-rolled for encoding validity: suffix bytes are drawn from the
// full 0..255 range, so the mutated text may not be valid UTF-8. It is
// only guaranteed to be ordered strictly before t, and is SQL-safe via
// Value.SQL's quote escaping.
func textStrictlyLess(rng *rand.Rand, t string) Value {
	b := []byte(t)
	if len(b) == 0 || rng.Float64() < 0.01 {
		if len(b) > 0 {
			return NewText(string(b[:len(b)-1]))
		}
		return NewText("")
	}

	idx := rng.Intn(len(b))
	for b[idx] == 0 && idx > 0 {
		idx--
	}
	if b[idx] == 0 {
		return NewText(string(b[:len(b)-1]))
	}
	b[idx]--
	randomizeSuffix(rng, b, idx+1)
	return NewText(string(b))
}

func textStrictlyGreater(rng *rand.Rand, t string) Value {
	b := []byte(t)
	if rng.Float64() < 0.01 {
		b = append(b, byte(rng.Intn(256)))
		return NewText(string(b))
	}
	if len(b) == 0 {
		return NewText(string([]byte{1}))
	}

	idx := rng.Intn(len(b))
	for b[idx] == 255 && idx > 0 {
		idx--
	}
	if b[idx] == 255 {
		b = append(b, byte(rng.Intn(256)))
		return NewText(string(b))
	}
	b[idx]++
	randomizeSuffix(rng, b, idx+1)
	return NewText(string(b))
}

func randomizeSuffix(rng *rand.Rand, b []byte, from int) {
	for i := from; i < len(b); i++ {
		b[i] = byte(rng.Intn(256))
	}
}

// blobStrictlyLess/Greater use plain lexicographic byte order (Open
// Question 3 decision: the original leaves Blob unspecified; byte-order
// comparison is the natural, already-documented-as-likely choice, and it
// reuses the exact text mutation algorithm since Go strings and []byte
// share representation here).
func blobStrictlyLess(rng *rand.Rand, b []byte) Value {
	v := textStrictlyLess(rng, string(b))
	return NewBlob([]byte(v.Text))
}

func blobStrictlyGreater(rng *rand.Rand, b []byte) Value {
	v := textStrictlyGreater(rng, string(b))
	return NewBlob([]byte(v.Text))
}
