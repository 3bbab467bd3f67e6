package sqliteengine

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsim/simulator/pkg/engine"
)

func newMockConnection(t *testing.T) (*connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	return &connection{conn: conn}, mock
}

func TestQueryRoutesSelectThroughRows(t *testing.T) {
	conn, mock := newMockConnection(t)
	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "sprocket").
		AddRow(int64(2), nil)
	mock.ExpectQuery("SELECT \\* FROM widgets").WillReturnRows(rows)

	stream, err := conn.Query(context.Background(), "SELECT * FROM widgets WHERE id > 0")
	require.NoError(t, err)

	kind, row, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StepRow, kind)
	assert.Equal(t, engine.CellInteger, row.Values[0].Kind)
	assert.Equal(t, "sprocket", row.Values[1].Text)

	kind, row, err = stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StepRow, kind)
	assert.Equal(t, engine.CellNull, row.Values[1].Kind)

	kind, _, err = stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StepDone, kind)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRoutesNonSelectThroughExec(t *testing.T) {
	conn, mock := newMockConnection(t)
	mock.ExpectExec("INSERT INTO widgets").WillReturnResult(sqlmock.NewResult(1, 1))

	stream, err := conn.Query(context.Background(), "INSERT INTO widgets VALUES (1, 'sprocket')")
	require.NoError(t, err)

	kind, _, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StepDone, kind, "non-select statements never yield rows or NeedsIO")

	require.NoError(t, mock.ExpectationsWereMet())
}
