package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suncoastbuild/sitegen/internal/site"
	"github.com/suncoastbuild/sitegen/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks an already-built output directory",
	Long: `The validate command recomputes the route table from the site tables and
guides, then checks every root-relative link and JSON-LD block in the output
directory without rebuilding it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, graph, err := site.Plan(appConfig, logger)
		if err != nil {
			return err
		}
		rep, err := validate.Dir(appConfig.OutputDir, graph)
		if err != nil {
			return err
		}
		if err := rep.Err(); err != nil {
			return err
		}
		logger.Info("output is valid",
			zap.Int("files", rep.Files),
			zap.Int("links", rep.Links),
			zap.Int("jsonld", rep.JSONLD))
		fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d internal links, %d JSON-LD blocks: ok\n", rep.Files, rep.Links, rep.JSONLD)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
