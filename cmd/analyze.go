/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/output"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/profile"
	"github.com/jacobarthurs/mysqlplan/internal/schema"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single query plan",
	Long: `Analyze a single MySQL query plan and provide optimization insights.

Input can be a SQL file, or JSON file (EXPLAIN FORMAT=JSON output).
Use "-" to read from stdin. If no file is provided, enters interactive mode.

For SQL input, a MySQL connection is required to run EXPLAIN FORMAT=JSON.
With a connection, column and index metadata is fetched for every table in
the plan; without one, only metadata-independent checks run.`,
	Example: `  # Analyze from file
  mysqlplan analyze query.sql

  # Use saved profile
  mysqlplan analyze query.sql --profile prod

  # Read from stdin
  cat plan.json | mysqlplan analyze -

  # Interactive mode
  mysqlplan analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		format, _ := cmd.Flags().GetString("format")

		if err := validateFormat(format); err != nil {
			return err
		}

		dsn, err := profile.ResolveDSN(db, profileName)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		provider, closeProvider := openProvider(cmd.Context(), dsn)
		defer closeProvider()

		result, err := analyzeInput(cmd.Context(), file, dsn, provider, "")
		if errors.Is(err, plan.ErrNoPlanAvailable) {
			fmt.Fprintln(os.Stdout, output.NoPlanMessage)
			return nil
		}
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return output.RenderAnalysisJSON(os.Stdout, result)
		case "text":
			return output.RenderAnalysisText(os.Stdout, result)
		}

		return nil
	},
}

// analyzeInput resolves one plan and diagnoses it. provider may be nil.
func analyzeInput(ctx context.Context, input, dsn string, provider schema.Provider, label string) (analyzer.Result, error) {
	explainCtx, cancel := explainContext(ctx)
	defer cancel()

	planOutput, err := plan.Resolve(explainCtx, input, explainDSN(dsn), label)
	if err != nil {
		return analyzer.Result{}, err
	}

	return analyzer.Analyze(ctx, planOutput, provider, analyzerOptions())
}

func validateFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
	}
	return nil
}

func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "d", "", "MySQL DSN, or postgres:// URL for metadata only")
	cmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	cmd.MarkFlagsMutuallyExclusive("db", "profile")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addConnectionFlags(analyzeCmd)
}
