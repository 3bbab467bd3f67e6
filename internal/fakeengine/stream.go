package fakeengine

import (
	"context"

	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/value"
)

// rowStream is the minimal paging model: every statement announces one
// StepNeedsIO (during which the database's page file is actually read and
// written through the façade) before yielding its rows, so every query
// gives fault injection exactly one place to bite (spec.md §4.7).
type rowStream struct {
	db       *Database
	rows     [][]value.Value
	idx      int
	issuedIO bool
	ioErr    error
}

func newStream(db *Database, rows [][]value.Value) *rowStream {
	return &rowStream{db: db, rows: rows}
}

func (s *rowStream) Next(ctx context.Context) (engine.StepKind, engine.Row, error) {
	if !s.issuedIO {
		s.issuedIO = true
		s.ioErr = s.db.touchPage()
		return engine.StepNeedsIO, engine.Row{}, nil
	}
	if s.ioErr != nil {
		return engine.StepDone, engine.Row{}, s.ioErr
	}
	if s.idx >= len(s.rows) {
		return engine.StepDone, engine.Row{}, nil
	}
	row := s.rows[s.idx]
	s.idx++
	return engine.StepRow, toEngineRow(row), nil
}

func toEngineRow(row []value.Value) engine.Row {
	cells := make([]engine.Cell, len(row))
	for i, v := range row {
		cells[i] = toEngineCell(v)
	}
	return engine.Row{Values: cells}
}

func toEngineCell(v value.Value) engine.Cell {
	switch v.Kind {
	case value.KindNull:
		return engine.Cell{Kind: engine.CellNull}
	case value.KindInteger:
		return engine.Cell{Kind: engine.CellInteger, Integer: v.Integer}
	case value.KindFloat:
		return engine.Cell{Kind: engine.CellFloat, Float: v.Float}
	case value.KindText:
		return engine.Cell{Kind: engine.CellText, Text: v.Text}
	case value.KindBlob:
		return engine.Cell{Kind: engine.CellBlob, Blob: v.Blob}
	default:
		return engine.Cell{Kind: engine.CellNull}
	}
}
