package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigFileFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(path, []byte(`{"workspace":"from-env-file"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEVSTRAP_CONFIG_FILE", path)
	t.Cleanup(func() { cfgFile = "" })

	// detect on an empty dir is side-effect free; we only care that the
	// pre-run picked up the file from the environment
	rootCmd.SetArgs([]string{"detect", t.TempDir()})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if cfg.Workspace != "from-env-file" {
		t.Fatalf("config file named by DEVSTRAP_CONFIG_FILE was not loaded, workspace=%q", cfg.Workspace)
	}
	if !cfg.NonInteractive || !cfg.Yes {
		t.Fatal("loading a config file must force non-interactive, assume-yes mode")
	}
}
