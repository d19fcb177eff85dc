package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of create events a clone produces into
// one provisioning pass per new directory.
const watchDebounce = 500 * time.Millisecond

// watchCmd watches an existing workspace root and provisions repositories
// that appear after the initial bootstrap (for example a manual git clone
// into the workspace): ecosystem detection, toolchain ensure, run-option
// report.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and provision repositories as they appear",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Workspace == "" {
			return fmt.Errorf("--workspace is required for watch mode")
		}
		root, err := filepath.Abs(cfg.Workspace)
		if err != nil {
			return err
		}
		if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
			return fmt.Errorf("workspace %s does not exist; run `devstrap up` first", root)
		}

		s := newSession()
		defer s.Log.Close()
		s.Workspace = root
		s.Log.Info("watching %s for new repositories", root)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(root); err != nil {
			return err
		}

		// debounce created directories, then provision each once
		var mu sync.Mutex
		pending := map[string]struct{}{}
		var timer *time.Timer
		flush := func() {
			mu.Lock()
			dirs := make([]string, 0, len(pending))
			for d := range pending {
				dirs = append(dirs, d)
			}
			pending = map[string]struct{}{}
			mu.Unlock()
			for _, dir := range dirs {
				s.ProvisionDir(cmd.Context(), dir)
			}
		}

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				info, statErr := os.Stat(ev.Name)
				if statErr != nil || !info.IsDir() {
					continue
				}
				if strings.HasPrefix(filepath.Base(ev.Name), ".") {
					continue
				}
				mu.Lock()
				pending[filepath.Clean(ev.Name)] = struct{}{}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, flush)
				mu.Unlock()
			case watchErr := <-watcher.Errors:
				s.Log.Warn("watch error: %v", watchErr)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
