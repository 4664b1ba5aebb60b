package cmd

import (
	"fmt"

	"github.com/fbz-tec/pggeojson/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pggeojson %s\nBuild time: %s\nGit commit: %s\n",
			version.AppVersion, version.BuildTime, version.GitCommit)
	},
}
