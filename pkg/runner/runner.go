// Package runner implements the Query Runner / Row Decoder (spec.md
// §4.7): it drives one statement's RowStream to completion, translating
// engine.Cell values into the simulator's value.Value, and doubles the
// fault-injection probability around every I/O suspension point.
package runner

import (
	"context"
	"math/rand"

	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/value"
)

// FaultInjector is the subset of pkg/faultio.Facade the runner needs to
// toggle injection around an I/O wait. Run type-asserts the IOHost it is
// given; an IOHost that does not implement it gets no draws. Under
// pkg/sqliteengine the façade is still passed and still receives the
// draws, but that adapter never reads or writes through the façade and
// never yields StepNeedsIO, so the fault flag has nothing to bite on.
type FaultInjector interface {
	InjectFault(on bool)
}

// Runner executes statements and decodes their rows.
type Runner struct {
	faultProbability float64
}

// New constructs a Runner with the given per-draw fault probability
// (spec.md §4.7's 1/10000, configurable via workload.Spec.FaultProbability).
func New(faultProbability float64) *Runner {
	return &Runner{faultProbability: faultProbability}
}

// Run submits sql on conn and decodes every row it yields. io is the
// façade the engine consumes for run_once; rng is the driver RNG that
// decides the two fault-injection draws per spec.md §4.7 (kept distinct
// from the façade's own dedicated RNG, which only ever feeds the engine).
func (r *Runner) Run(ctx context.Context, conn engine.Connection, io engine.IOHost, rng *rand.Rand, sql string) ([][]value.Value, error) {
	stream, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}

	injector, canInject := io.(FaultInjector)

	var decoded [][]value.Value
	for {
		if canInject {
			r.maybeToggleFault(rng, injector)
		}

		kind, row, err := stream.Next(ctx)
		if err != nil {
			return decoded, err
		}

		switch kind {
		case engine.StepRow:
			decoded = append(decoded, decodeRow(row))
		case engine.StepNeedsIO:
			if canInject {
				r.maybeToggleFault(rng, injector)
			}
			if err := io.RunOnce(); err != nil {
				// A run_once fault terminates this statement's row stream
				// rather than the run itself (spec.md §4.7, §7): the
				// caller compares the short row set against the shadow,
				// which is where the fault surfaces.
				return decoded, nil
			}
		case engine.StepDone:
			return decoded, nil
		}
	}
}

func (r *Runner) maybeToggleFault(rng *rand.Rand, injector FaultInjector) {
	injector.InjectFault(rng.Float64() < r.faultProbability)
}

// decodeRow flattens one engine row into its constituent simulator
// values, in column order.
func decodeRow(row engine.Row) []value.Value {
	values := make([]value.Value, len(row.Values))
	for i, cell := range row.Values {
		values[i] = decodeCell(cell)
	}
	return values
}

func decodeCell(c engine.Cell) value.Value {
	switch c.Kind {
	case engine.CellNull:
		return value.Null()
	case engine.CellInteger:
		return value.NewInteger(c.Integer)
	case engine.CellFloat:
		return value.NewFloat(c.Float)
	case engine.CellText:
		return value.NewText(c.Text)
	case engine.CellBlob:
		return value.NewBlob(c.Blob)
	default:
		return value.Null()
	}
}
