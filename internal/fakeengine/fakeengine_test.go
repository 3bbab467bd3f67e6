package fakeengine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/faultio"
)

func drain(t *testing.T, ctx context.Context, stream engine.RowStream) []engine.Row {
	t.Helper()
	var rows []engine.Row
	for {
		kind, row, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("stream.Next: %v", err)
		}
		switch kind {
		case engine.StepNeedsIO:
			continue
		case engine.StepRow:
			rows = append(rows, row)
		case engine.StepDone:
			return rows
		}
	}
}

func TestCreateInsertSelectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	facade := faultio.NewFacade(1, faultio.NewMetrics(), zerolog.Nop())
	db, err := Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := conn.Query(ctx, "CREATE TABLE widgets (id INTEGER, name TEXT);"); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	if _, err := conn.Query(ctx, "INSERT INTO widgets VALUES (1, 'sprocket')"); err != nil {
		t.Fatalf("INSERT: %v", err)
	}
	if _, err := conn.Query(ctx, "INSERT INTO widgets VALUES (2, 'cog')"); err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	stream, err := conn.Query(ctx, "SELECT * FROM widgets WHERE id = 1")
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	rows := drain(t, ctx, stream)
	if len(rows) != 1 || rows[0].Values[1].Text != "sprocket" {
		t.Fatalf("rows = %+v, want one matching sprocket", rows)
	}

	delStream, err := conn.Query(ctx, "DELETE FROM widgets WHERE id = 1")
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	drain(t, ctx, delStream)

	allStream, err := conn.Query(ctx, "SELECT * FROM widgets WHERE (id = 1 OR id = 2)")
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	remaining := drain(t, ctx, allStream)
	if len(remaining) != 1 || remaining[0].Values[1].Text != "cog" {
		t.Fatalf("remaining = %+v, want only cog", remaining)
	}
}

func TestSchemaLookupReturnsStoredDDL(t *testing.T) {
	dir := t.TempDir()
	facade := faultio.NewFacade(2, faultio.NewMetrics(), zerolog.Nop())
	db, err := Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	ddl := "CREATE TABLE widgets (id INTEGER);"
	if _, err := conn.Query(ctx, ddl); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}

	stream, err := conn.Query(ctx, "SELECT sql FROM sqlite_schema WHERE name = 'widgets'")
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}
	rows := drain(t, ctx, stream)
	if len(rows) != 1 || rows[0].Values[0].Text != ddl {
		t.Fatalf("schema lookup rows = %+v, want stored ddl %q", rows, ddl)
	}
}

func TestQueryPropagatesInjectedFault(t *testing.T) {
	dir := t.TempDir()
	facade := faultio.NewFacade(3, faultio.NewMetrics(), zerolog.Nop())
	db, err := Open(facade, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := conn.Query(ctx, "CREATE TABLE widgets (id INTEGER);"); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}

	facade.InjectFault(true)
	stream, err := conn.Query(ctx, "SELECT * FROM widgets WHERE id = 1")
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}

	kind, _, err := stream.Next(ctx)
	if kind != engine.StepNeedsIO || err != nil {
		t.Fatalf("first step = %v, %v, want NeedsIO/nil", kind, err)
	}
	if _, _, err := stream.Next(ctx); err == nil {
		t.Fatal("expected injected fault to surface after NeedsIO")
	}
}
