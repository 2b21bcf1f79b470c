/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"

	"github.com/jacobarthurs/mysqlplan/internal/profile"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create profiles file with example template",
	Long: `Create the mysqlplan profiles file (profiles.yaml in the user config
directory) with an example template.

The file stores named database connection profiles so you don't need
to pass a DSN on every invocation. If the file already exists,
it will not be overwritten unless --force is given.`,
	Example: `  # Create default config
  mysqlplan init

  # Overwrite existing config
  mysqlplan init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := profile.WriteTemplate(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
