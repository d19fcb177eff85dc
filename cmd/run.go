package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devstrap/devstrap/internal/runsel"
	"github.com/devstrap/devstrap/internal/ui"
)

// runCmd applies the run selector to an existing directory: detect the run
// mechanism (or ask) and launch it.
var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Detect and launch a project's run command",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		log := ui.NewLogger(os.Stdout)
		sel := &runsel.Selector{
			Run:    realRunner(log),
			Log:    log,
			Prompt: ui.NewPrompter(os.Stdin, os.Stdout),
			Cfg:    cfg,
		}
		sel.Launch(cmd.Context(), dir, sel.Choose(dir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
