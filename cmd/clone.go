package cmd

import (
	"github.com/spf13/cobra"
)

// cloneCmd stops after the clone stage: workspace plus repositories, no
// toolchain provisioning and no run step.
var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Create the workspace and clone the configured repositories only",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession()
		defer s.Log.Close()
		if err := s.Prepare(cmd.Context()); err != nil {
			return err
		}
		if err := s.CloneAll(cmd.Context()); err != nil {
			return err
		}
		s.Log.Done("clone stage complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
