package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suncoastbuild/sitegen/internal/site"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Prints every route the build would generate",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, graph, err := site.Plan(appConfig, logger)
		if err != nil {
			return err
		}
		for _, r := range graph.Routes() {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
