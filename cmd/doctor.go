package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devstrap/devstrap/internal/ensure"
	"github.com/devstrap/devstrap/internal/ui"
)

// doctorCmd runs only the baseline dependency checks. Without --yes it
// reports instead of installing.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that git, docker, and make are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := ui.NewLogger(os.Stdout)
		e := &ensure.Ensurer{
			Run:    realRunner(log),
			Log:    log,
			Prompt: ui.NewPrompter(os.Stdin, os.Stdout),
			Cfg:    cfg,
		}
		available := e.Baseline(cmd.Context())
		ok := true
		for _, tool := range []string{"git", "docker", "make"} {
			if available[tool] {
				log.Done("%s: ok", tool)
			} else {
				log.Warn("%s: missing", tool)
				ok = false
			}
		}
		if ok {
			log.Done("all baseline tools present")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
