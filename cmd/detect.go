package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/devstrap/devstrap/internal/runsel"
	"github.com/devstrap/devstrap/internal/toolchain"
	"github.com/devstrap/devstrap/internal/ui"
)

var detectJSON bool

// detectCmd reports the ecosystem classification and run option for a
// directory without changing anything.
var detectCmd = &cobra.Command{
	Use:   "detect [dir]",
	Short: "Report detected ecosystems and the run option for a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		eco := toolchain.Detect(dir)
		option := runsel.Detect(dir)

		if detectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Dir       string   `json:"dir"`
				Node      bool     `json:"node"`
				Python    bool     `json:"python"`
				Java      bool     `json:"java"`
				Flutter   bool     `json:"flutter"`
				Manifests []string `json:"manifests"`
				RunOption string   `json:"run_option"`
			}{dir, eco.Node, eco.Python, eco.Java, eco.Flutter, eco.Manifests, option.String()})
		}

		log := ui.NewLogger(os.Stdout)
		log.Info("dir: %s", dir)
		log.Info("node=%v python=%v java=%v flutter=%v", eco.Node, eco.Python, eco.Java, eco.Flutter)
		for _, m := range eco.Manifests {
			log.Info("  manifest: %s", m)
		}
		log.Info("run option: %s", option)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "emit the report as JSON")
}
