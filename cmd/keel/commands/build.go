package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <target>",
		Short: "Build the named target from a build file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildFile, _ := cmd.Flags().GetString("file")
			dbPath, _ := cmd.Flags().GetString("db")
			tracePath, _ := cmd.Flags().GetString("trace")
			return c.app.Run(cmd.Context(), buildFile, args[0], dbPath, tracePath)
		},
	}
	cmd.Flags().StringP("file", "f", "keel.yaml", "Path to the build file")
	cmd.Flags().String("db", "", "Path to the result database (omit to disable caching)")
	cmd.Flags().String("trace", "", "Path to append a build trace to")
	return cmd
}
