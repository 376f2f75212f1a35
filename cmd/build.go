package cmd

import (
	"github.com/spf13/cobra"

	"github.com/suncoastbuild/sitegen/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from the site tables, guides and layouts",
	Long: `The build command loads the tables file, converts Markdown guides from
the content directory, renders every page through the layouts (the embedded
defaults when no layouts directory exists), copies static assets, writes
sitemap.xml and robots.txt, and validates every internal link and JSON-LD
block in the output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := site.Build(cmd.Context(), appConfig, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
