/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"os"
	"runtime/debug"

	"github.com/jacobarthurs/mysqlplan/internal/config"
	"github.com/jacobarthurs/mysqlplan/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
	rootCmd.PersistentFlags().String("config", "", "Runtime settings file (YAML); MYSQLPLAN_* variables override it")
}

var rootCmd = &cobra.Command{
	Use:          "mysqlplan",
	SilenceUsage: true,
	Short:        "Analyze and compare MySQL query plans",
	Long: `mysqlplan is a CLI tool for analyzing and comparing MySQL EXPLAIN plans.

It diagnoses table access in EXPLAIN FORMAT=JSON output, enriched with live
column and index metadata when a connection is available.
Supports SQL, and JSON input formats.`,
	Example: `  # Analyze a single query
  mysqlplan analyze query.sql

  # Compare two plans
  mysqlplan compare old.json new.json

  # Setup connection profiles
  mysqlplan init`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		l, err := logging.New(loaded.LogLevel)
		if err != nil {
			return err
		}

		cfg = loaded
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
