package driver

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sqlsim/simulator/internal/fakeengine"
	"github.com/sqlsim/simulator/pkg/faultio"
	"github.com/sqlsim/simulator/pkg/runner"
	"github.com/sqlsim/simulator/pkg/workload"
)

func newTestEnv(t *testing.T, seed int64, opts Opts) *Env {
	t.Helper()
	dir := t.TempDir()
	facade := faultio.NewFacade(seed, faultio.NewMetrics(), zerolog.Nop())
	db, err := fakeengine.Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := runner.New(0) // zero fault probability for deterministic driver tests
	rng := rand.New(rand.NewSource(seed))
	return New(db, facade, rng, r, opts, zerolog.Nop())
}

func TestEmptyRunCreatesNoTables(t *testing.T) {
	env := newTestEnv(t, 1, Opts{Ticks: 0, MaxTables: 0, Mix: workload.Default().Spec.OperationMix})
	if err := env.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.Tables().Len() != 0 {
		t.Fatalf("tables = %d, want 0", env.Tables().Len())
	}
}

func TestRunCreatesTableWithinBudget(t *testing.T) {
	// MaxConnections=1 forces every tick to hit the same slot; ticks large
	// enough to cover connect + at least one maybe_add_table draw.
	opts := Opts{Ticks: 500, MaxTables: 1, MaxConnections: 1, Mix: workload.Default().Spec.OperationMix}
	env := newTestEnv(t, 42, opts)
	if err := env.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.Tables().Len() != 1 {
		t.Fatalf("tables = %d, want exactly 1 (MaxTables bound)", env.Tables().Len())
	}
}

func TestRunExercisesInsertsAndSelects(t *testing.T) {
	opts := Opts{
		Ticks:          2000,
		MaxTables:      3,
		MaxConnections: 2,
		Mix:            workload.OperationMix{ReadPercent: 40, WritePercent: 50, DeletePercent: 10},
	}
	env := newTestEnv(t, 99, opts)
	if err := env.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.Tables().Len() == 0 {
		t.Fatal("expected at least one table to have been created over 2000 ticks")
	}

	total := 0
	for _, tbl := range env.Tables().All() {
		total += len(tbl.Rows)
	}
	if total == 0 {
		t.Fatal("expected at least one row inserted over 2000 ticks")
	}
}
