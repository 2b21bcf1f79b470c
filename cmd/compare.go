/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jacobarthurs/mysqlplan/internal/comparator"
	"github.com/jacobarthurs/mysqlplan/internal/output"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/profile"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two query plans",
	Long: `Compare two MySQL query plans node by node.

Both plans are analyzed first, then matched by node position. The report shows
cost, row and access changes per node, issues fixed and introduced, and an
overall verdict.

Inputs can be SQL files, or JSON files (EXPLAIN FORMAT=JSON output).
Files don't need to be the same type. Either file (but not both) can be "-" to read from stdin.
If no files are provided, enters interactive mode.

For SQL input, a MySQL connection is required to run EXPLAIN FORMAT=JSON.`,
	Example: `  # Compare two SQL files
  mysqlplan compare old.sql new.sql --db "app:secret@tcp(localhost:3306)/shop"

  # Use saved profile
  mysqlplan compare old.sql new.sql --profile prod

  # Mix input types
  mysqlplan compare prod-plan.json new-query.sql --profile dev

  # Read one plan from stdin
  cat old.json | mysqlplan compare - new.json

  # Interactive mode
  mysqlplan compare`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		format, _ := cmd.Flags().GetString("format")

		if err := validateFormat(format); err != nil {
			return err
		}

		inputs := make([]string, 2)
		copy(inputs, args)
		if inputs[0] == "-" && inputs[1] == "-" {
			return fmt.Errorf("only one input can be read from stdin")
		}

		dsn, err := profile.ResolveDSN(db, profileName)
		if err != nil {
			return err
		}

		provider, closeProvider := openProvider(cmd.Context(), dsn)
		defer closeProvider()

		oldResult, err := analyzeInput(cmd.Context(), inputs[0], dsn, provider, "first ")
		if err != nil {
			return labelNoPlan(err, "first")
		}
		newResult, err := analyzeInput(cmd.Context(), inputs[1], dsn, provider, "second ")
		if err != nil {
			return labelNoPlan(err, "second")
		}

		c := comparator.Comparator{Threshold: comparator.SignificanceThresholdPct}
		result := c.Compare(oldResult, newResult)

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		case "text":
			return output.RenderComparisonText(os.Stdout, result)
		}

		return nil
	},
}

func labelNoPlan(err error, which string) error {
	if errors.Is(err, plan.ErrNoPlanAvailable) {
		return fmt.Errorf("%s plan: %w", which, err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addConnectionFlags(compareCmd)
}
