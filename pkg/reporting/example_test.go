package reporting_test

import (
	"fmt"
	"os"
	"time"

	"github.com/sqlsim/simulator/pkg/reporting"
)

// Example demonstrates the reporting package usage.
func Example() {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelInfo,
		Format: reporting.LogFormatText,
		Output: os.Stdout,
	})

	logger.Info("simulation run starting", "seed", int64(42))

	storage, err := reporting.NewStorage("./test-reports", 10, logger)
	if err != nil {
		fmt.Printf("failed to create storage: %v\n", err)
		return
	}
	defer os.RemoveAll("./test-reports")

	report := &reporting.RunReport{
		RunID:        "run-12345",
		Seed:         42,
		StartTime:    time.Now().Add(-5 * time.Minute),
		EndTime:      time.Now(),
		Duration:     "5m0s",
		Status:       reporting.StatusCompleted,
		Success:      true,
		Engine:       "fake",
		TicksRun:     100,
		TablesCreate: 4,
		Invariants: []reporting.CriterionResult{
			{Name: "shadow_equivalence", Passed: true, Message: "shadow rows match engine rows"},
		},
	}

	path, err := storage.SaveReport(report)
	if err != nil {
		fmt.Printf("failed to save report: %v\n", err)
		return
	}

	fmt.Printf("report saved successfully\n")

	summaries, err := storage.ListReports()
	if err != nil {
		fmt.Printf("failed to list reports: %v\n", err)
		return
	}

	fmt.Printf("found %d report(s)\n", len(summaries))

	loadedReport, err := storage.LoadReport(path)
	if err != nil {
		fmt.Printf("failed to load report: %v\n", err)
		return
	}

	fmt.Printf("loaded report for seed: %d\n", loadedReport.Seed)

	// Output will vary due to timestamps, so we don't include it.
}
