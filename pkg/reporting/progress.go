package reporting

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutputFormat represents the progress output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ProgressReporter reports simulation run progress.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportState reports the current run state.
func (pr *ProgressReporter) ReportState(state LiveRunState) {
	if pr.format == FormatJSON {
		data, err := json.Marshal(state)
		if err != nil {
			pr.logger.Error("failed to marshal state", "error", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("[%s] tick %d | %s | elapsed %s\n",
		time.Now().Format("15:04:05"), state.Tick, state.State, state.Elapsed.Round(time.Second))
}

// ReportFault reports an injected fault.
func (pr *ProgressReporter) ReportFault(op string, faultPath string) {
	if pr.format == FormatJSON {
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "fault_injected",
			"op":        op,
			"path":      faultPath,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
		return
	}
	fmt.Printf("[FAULT] %s on %s\n", op, faultPath)
}

// ReportInvariant reports an invariant evaluation.
func (pr *ProgressReporter) ReportInvariant(result CriterionResult) {
	status := "PASS"
	if !result.Passed {
		status = "FAIL"
	}

	if pr.format == FormatJSON {
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "invariant_evaluation",
			"result":    result,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
		return
	}
	fmt.Printf("[INVARIANT] %s %s: %s\n", status, result.Name, result.Message)
}

// ReportRunCompleted reports run completion.
func (pr *ProgressReporter) ReportRunCompleted(report *RunReport) {
	if pr.format == FormatJSON {
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "run_completed",
			"report":    report,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
		return
	}
	pr.printTextSummary(report)
}

func (pr *ProgressReporter) printTextSummary(report *RunReport) {
	status := "PASSED"
	if !report.Success {
		status = "FAILED"
	}
	if report.Status == StatusStopped {
		status = "STOPPED"
	}

	fmt.Printf("\n[RUN SUMMARY] %s\n", status)
	fmt.Printf("  Seed:     %d\n", report.Seed)
	fmt.Printf("  Engine:   %s\n", report.Engine)
	fmt.Printf("  Ticks:    %d\n", report.TicksRun)
	fmt.Printf("  Duration: %s\n", report.Duration)

	if len(report.Invariants) > 0 {
		passed := 0
		for _, c := range report.Invariants {
			if c.Passed {
				passed++
			}
		}
		fmt.Printf("  Invariants: %d/%d passed\n", passed, len(report.Invariants))
	}
	fmt.Printf("  run_once faults: %d\n", report.RunOnceFaults)
	fmt.Println()
}
