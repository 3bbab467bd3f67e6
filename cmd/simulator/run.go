package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	mrand "math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/sqlsim/simulator/internal/fakeengine"
	"github.com/sqlsim/simulator/pkg/config"
	"github.com/sqlsim/simulator/pkg/driver"
	"github.com/sqlsim/simulator/pkg/engine"
	"github.com/sqlsim/simulator/pkg/faultio"
	"github.com/sqlsim/simulator/pkg/reporting"
	"github.com/sqlsim/simulator/pkg/runner"
	"github.com/sqlsim/simulator/pkg/sqliteengine"
	"github.com/sqlsim/simulator/pkg/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run one simulation",
	Long:  `Drives the configured engine adapter through a reproducible randomized workload and reports the results.`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().Int64("seed", 0, "master seed (falls back to SEED env var, then a random draw)")
	runCmd.Flags().Int("ticks", 0, "override the workload profile's tick count (0 = use profile)")
	runCmd.Flags().Int("max-tables", 0, "override the workload profile's max table count (0 = use profile)")
	runCmd.Flags().String("profile", "", "path to a WorkloadProfile YAML (default built-in profile if omitted)")
	runCmd.Flags().String("engine", "fake", "engine adapter: fake (default) or sqlite")
	runCmd.Flags().Bool("dry-run", false, "print the resolved SimulatorOpts and exit")
	runCmd.Flags().String("log", "", "JSONL run log path, one line per tick")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevel(cfg.Framework.LogLevel),
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stdout,
	})
	zlog := logger.GetZerologLogger()

	seed, err := resolveSeed(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("Seed: %d\n", seed)

	profilePath, _ := cmd.Flags().GetString("profile")
	profile := workload.Default()
	if profilePath != "" {
		profile, err = workload.Load(profilePath)
		if err != nil {
			return fmt.Errorf("failed to load workload profile: %w", err)
		}
	}

	if ticks, _ := cmd.Flags().GetInt("ticks"); ticks > 0 {
		profile.Spec.Ticks.Max = ticks
	}
	if maxTables, _ := cmd.Flags().GetInt("max-tables"); maxTables > 0 {
		profile.Spec.MaxTables.Max = maxTables
	}

	engineKind, _ := cmd.Flags().GetString("engine")
	opts := driver.Opts{
		Ticks:     profile.Spec.Ticks.Max,
		MaxTables: profile.Spec.MaxTables.Max,
		Mix:       profile.Spec.OperationMix,
	}
	fmt.Printf("Initial opts: ticks=%d max_tables=%d engine=%s operation_mix=%+v\n",
		opts.Ticks, opts.MaxTables, engineKind, opts.Mix)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		return nil
	}

	if logPath, _ := cmd.Flags().GetString("log"); logPath != "" {
		logFile, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("failed to create --log file: %w", err)
		}
		defer logFile.Close()
		enc := json.NewEncoder(logFile)
		opts.OnTick = func(tick int, tickErr error) {
			entry := map[string]interface{}{"tick": tick, "success": tickErr == nil}
			if tickErr != nil {
				entry["error"] = tickErr.Error()
			}
			_ = enc.Encode(entry)
		}
	}

	dbDir, err := os.MkdirTemp("", "simulator-db-")
	if err != nil {
		return fmt.Errorf("failed to create temporary database directory: %w", err)
	}
	defer os.RemoveAll(dbDir)
	dbPath := filepath.Join(dbDir, "simulator.db")
	fmt.Printf("Database file: %s\n", dbPath)

	masterRNG := mrand.New(mrand.NewSource(seed))
	ioSeed := masterRNG.Int63()
	driverSeed := masterRNG.Int63()

	metrics := faultio.NewMetrics()
	facade := faultio.NewFacade(ioSeed, metrics, zlog)

	var db engine.Database
	switch engineKind {
	case "sqlite":
		zlog.Info().Msg("fault injection is a no-op under the sqlite engine adapter: database/sql is synchronous and never yields NeedsIO")
		db, err = sqliteengine.Open(dbPath)
	default:
		db, err = fakeengine.Open(facade, dbDir)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s engine: %w", engineKind, err)
	}
	defer db.Close()

	r := runner.New(profile.Spec.FaultProbability.IOWait)
	driverRNG := mrand.New(mrand.NewSource(driverSeed))
	env := driver.New(db, facade, driverRNG, r, opts, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := env.Run(ctx)

	stats := facade.Stats()
	for _, s := range stats {
		fmt.Printf("File %s: pread_faults=%d pwrite_faults=%d reads=%d writes=%d syncs=%d\n",
			s.Path, s.PreadFaults, s.PwriteFaults, s.PreadCalls, s.PwriteCalls, s.SyncCalls)
	}
	fmt.Printf("run_once faults: %d\n", facade.RunOnceFaults())

	dumpMetrics(metrics)

	summary := buildSummary(seed, engineKind, opts, stats, facade.RunOnceFaults(), runErr)
	if line, err := json.Marshal(summary); err == nil {
		fmt.Println(string(line))
	}

	return runErr
}

func resolveSeed(cmd *cobra.Command) (int64, error) {
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		return seed, nil
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid SEED env var %q: %w", v, err)
		}
		return int64(seed), nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return 0, fmt.Errorf("failed to draw a random seed: %w", err)
	}
	return n.Int64(), nil
}

func dumpMetrics(metrics *faultio.Metrics) {
	families, err := metrics.Registry().Gather()
	if err != nil {
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return
		}
	}
}

func buildSummary(seed int64, engineKind string, opts driver.Opts, stats []faultio.FileStats, runOnceFaults int, runErr error) reporting.RunReport {
	ioStats := make([]reporting.FileStats, len(stats))
	for i, s := range stats {
		ioStats[i] = reporting.FileStats{
			Path:         s.Path,
			PreadCalls:   s.PreadCalls,
			PreadFaults:  s.PreadFaults,
			PwriteCalls:  s.PwriteCalls,
			PwriteFaults: s.PwriteFaults,
			SyncCalls:    s.SyncCalls,
			LockFaults:   s.LockFaults,
		}
	}

	status := reporting.StatusCompleted
	message := ""
	if runErr != nil {
		status = reporting.StatusFailed
		message = runErr.Error()
	}

	return reporting.RunReport{
		Seed:          seed,
		EndTime:       time.Now(),
		Status:        status,
		Success:       runErr == nil,
		Message:       message,
		Engine:        engineKind,
		TicksRun:      opts.Ticks,
		IOStats:       ioStats,
		RunOnceFaults: runOnceFaults,
	}
}
