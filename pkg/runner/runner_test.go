package runner

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sqlsim/simulator/internal/fakeengine"
	"github.com/sqlsim/simulator/pkg/faultio"
)

func TestRunDecodesRowsAgainstFakeEngine(t *testing.T) {
	dir := t.TempDir()
	facade := faultio.NewFacade(7, faultio.NewMetrics(), zerolog.Nop())
	db, err := fakeengine.Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	r := New(0) // zero fault probability: deterministic success path
	rng := rand.New(rand.NewSource(1))

	if _, err := r.Run(ctx, conn, facade, rng, "CREATE TABLE t (x INTEGER);"); err != nil {
		t.Fatalf("CREATE: %v", err)
	}
	if _, err := r.Run(ctx, conn, facade, rng, "INSERT INTO t VALUES (7)"); err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	rows, err := r.Run(ctx, conn, facade, rng, "SELECT * FROM t WHERE x = 7")
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	if len(rows) != 1 || rows[0][0].Integer != 7 {
		t.Fatalf("rows = %+v, want [[7]]", rows)
	}
}

func TestRunSwallowsRunOnceFault(t *testing.T) {
	dir := t.TempDir()
	facade := faultio.NewFacade(8, faultio.NewMetrics(), zerolog.Nop())
	db, err := fakeengine.Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	r := New(1) // certain fault probability
	rng := rand.New(rand.NewSource(2))

	// A run_once fault terminates the statement's row stream, not the
	// run itself: the caller sees a short (here empty) row set and no
	// error, and is expected to catch the discrepancy via the shadow
	// equivalence check rather than via a propagated error.
	rows, err := r.Run(ctx, conn, facade, rng, "CREATE TABLE t (x INTEGER);")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %+v, want none: run_once fault should have cut the stream short", rows)
	}
}
