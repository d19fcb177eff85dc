package cmd

import (
	"github.com/spf13/cobra"
)

// upCmd is the full pipeline: workspace, clones, baseline tools, toolchain
// installs, and (with --auto-run) project launch.
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create the workspace, clone everything, and install toolchains",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		defer s.Log.Close()
		return s.Up(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}
