package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "simulator",
	Short:   "Deterministic, fault-injecting randomized SQL engine simulator",
	Long:    `simulator drives an embedded SQL engine through a reproducible pseudo-random workload of schema and data-manipulation statements, injecting I/O faults and continuously checking engine behavior against an in-memory shadow model.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
