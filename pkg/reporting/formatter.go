package reporting

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"
)

// Formatter generates formatted reports from run data.
type Formatter struct {
	logger *Logger
}

// NewFormatter creates a new report formatter.
func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{logger: logger}
}

// GenerateTextReport writes a human-readable summary of a run to outputPath.
func (f *Formatter) GenerateTextReport(report *RunReport, outputPath string) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   SIMULATION RUN REPORT\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	status := "PASSED"
	if !report.Success {
		status = "FAILED"
	}
	if report.Status == StatusStopped {
		status = "STOPPED"
	}

	buf.WriteString("RUN SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Status:     %s\n", status))
	buf.WriteString(fmt.Sprintf("Seed:       %d\n", report.Seed))
	buf.WriteString(fmt.Sprintf("Engine:     %s\n", report.Engine))
	buf.WriteString(fmt.Sprintf("Ticks run:  %d\n", report.TicksRun))
	buf.WriteString(fmt.Sprintf("Tables:     %d\n", report.TablesCreate))
	buf.WriteString(fmt.Sprintf("Start:      %s\n", report.StartTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("End:        %s\n", report.EndTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("Duration:   %s\n", report.Duration))
	if report.Message != "" {
		buf.WriteString(fmt.Sprintf("Message:    %s\n", report.Message))
	}
	buf.WriteString("\n")

	if len(report.IOStats) > 0 {
		buf.WriteString("I/O STATS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for _, s := range report.IOStats {
			buf.WriteString(fmt.Sprintf("%s\n", s.Path))
			buf.WriteString(fmt.Sprintf("  pread:  %d calls, %d faults\n", s.PreadCalls, s.PreadFaults))
			buf.WriteString(fmt.Sprintf("  pwrite: %d calls, %d faults\n", s.PwriteCalls, s.PwriteFaults))
			buf.WriteString(fmt.Sprintf("  sync:   %d calls, %d faults\n", s.SyncCalls, s.SyncFaults))
			buf.WriteString(fmt.Sprintf("  lock faults: %d\n", s.LockFaults))
		}
		buf.WriteString(fmt.Sprintf("\nrun_once faults: %d\n\n", report.RunOnceFaults))
	}

	if len(report.Invariants) > 0 {
		passed := 0
		for _, c := range report.Invariants {
			if c.Passed {
				passed++
			}
		}
		buf.WriteString("INVARIANTS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		buf.WriteString(fmt.Sprintf("Summary: %d/%d passed\n\n", passed, len(report.Invariants)))
		for _, c := range report.Invariants {
			mark := "PASS"
			if !c.Passed {
				mark = "FAIL"
			}
			buf.WriteString(fmt.Sprintf("[%s] %s: %s\n", mark, c.Name, c.Message))
		}
		buf.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		buf.WriteString("ERRORS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for i, err := range report.Errors {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, err))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	buf.WriteString(strings.Repeat("=", 80) + "\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	f.logger.Info("text report generated", "path", outputPath)
	return nil
}
