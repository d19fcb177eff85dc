package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devstrap/devstrap/internal/bootstrap"
	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

// cfgFile stores an optional explicit path to a config file. Loading one
// forces non-interactive, assume-yes mode so automation never blocks.
var cfgFile string

// cfg is the resolved configuration, built in PersistentPreRunE and read
// by every subcommand.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "devstrap",
	Short: "Bootstrap a developer workspace: clone repos, install toolchains, start projects",
	// PersistentPreRunE executes before any subcommand; we use it to merge
	// config file, environment, and flags into one resolved Config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Env overrides like DEVSTRAP_WORKSPACE or DEVSTRAP_NON_INTERACTIVE.
		viper.SetEnvPrefix(config.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		// like every other flag, the config path has an env equivalent;
		// it cannot go through viper because it is read before any
		// config file is loaded
		if cfgFile == "" {
			cfgFile = os.Getenv(config.EnvPrefix + "_CONFIG_FILE")
		}

		fromFile := false
		if cfgFile != "" {
			// An unreadable or unparseable file is fatal before anything
			// else runs; environment variables already set still win over
			// file values because the file merges at config precedence.
			if err := config.LoadFile(viper.GetViper(), cfgFile); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
			fromFile = true
		}

		cfg = config.Resolve(viper.GetViper(), fromFile)
		return nil
	},
	// Errors are printed by Execute with exit-code mapping; keep cobra quiet.
	SilenceErrors: true,
}

// Execute is called from main and starts the CLI, mapping the sentinel
// all-clones-failed error to its own exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, bootstrap.ErrAllClonesFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// newSession wires a Session for the current resolved config with the real
// runner and terminal streams.
func newSession() *bootstrap.Session {
	log := ui.NewLogger(os.Stdout)
	return bootstrap.New(cfg, execx.Exec{}, log, os.Stdin, os.Stdout)
}

// realRunner returns the production runner, wrapped for --dry-run. Used by
// commands that operate on an existing directory without a full session.
func realRunner(log *ui.Logger) execx.Runner {
	var r execx.Runner = execx.Exec{}
	if cfg.DryRun {
		r = execx.DryRun{Real: r, Echo: func(line string) { log.Info("%s", line) }}
	}
	return r
}

func init() {
	// Persistent flags apply to all subcommands.
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config-file", "c", "", "config file (KEY=VALUE, .json, or .yaml)")
	pf.String("workspace", "", "workspace directory name")
	pf.String("repos", "", "comma-separated repository URLs")
	pf.String("folders", "", "comma-separated folder names, paired with --repos")
	pf.Bool("non-interactive", false, "never prompt; missing inputs fall back or skip")
	pf.BoolP("yes", "y", false, "assume yes for every consent question")
	pf.Bool("dry-run", false, "log external commands instead of executing them")
	pf.Bool("no-log", false, "disable the workspace log file")
	pf.Bool("auto-run", false, "launch each project's detected run option")
	pf.Bool("skip-toolchains", false, "skip ecosystem toolchain installation")
	pf.String("node", "", "default Node version when no repo pin exists")
	pf.String("java", "", "default Java version when no repo pin exists")

	// Bind every flag to viper so config/env/flags merge cleanly.
	for _, key := range []string{
		"workspace", "repos", "folders", "non-interactive", "yes", "dry-run",
		"no-log", "auto-run", "skip-toolchains", "node", "java",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}
}
