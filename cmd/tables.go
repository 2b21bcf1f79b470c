/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"os"

	"github.com/jacobarthurs/mysqlplan/internal/output"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/profile"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [file]",
	Short: "List the tables a query plan reads",
	Long: `List the distinct base tables referenced by a MySQL query plan, in plan order.

Derived tables and materialized subquery results are skipped. No metadata is
fetched; a connection is only needed to EXPLAIN SQL input.`,
	Example: `  mysqlplan tables plan.json
  mysqlplan tables query.sql --profile prod --format json`,
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

		ctx, cancel := explainContext(cmd.Context())
		defer cancel()

		planOutput, err := plan.Resolve(ctx, file, explainDSN(dsn), "")
		if err != nil {
			return err
		}

		tables := plan.ExtractTables(planOutput)
		if tables == nil {
			tables = []string{}
		}

		if format == "json" {
			return output.RenderJSON(os.Stdout, tables)
		}
		return output.RenderTablesText(os.Stdout, tables)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	addConnectionFlags(tablesCmd)
}
