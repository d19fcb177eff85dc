package runsel

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

// Selector chooses and launches the run option for a repository. Launch
// failures are reported as warnings; they never change the process exit
// status.
type Selector struct {
	Run    execx.Runner
	Log    *ui.Logger
	Prompt *ui.Prompter
	Cfg    *config.Config
}

// menu is the interactive option list, always offered in full so the user
// can override detection; the detected option is the pre-selected default.
var menu = []struct {
	label  string
	option Option
}{
	{"make up", OptionMake},
	{"docker compose up -d", OptionCompose},
	{"yarn start", OptionYarn},
	{"pnpm start", OptionPnpm},
	{"npm start", OptionNpm},
	{"do nothing", OptionNone},
}

// Choose returns the option to launch for dir. Non-interactive (or
// auto-run) takes the detected option directly; interactive mode shows a
// numbered menu with the detection as the recommended default and gives up
// with a warning after three invalid selections.
func (s *Selector) Choose(dir string) Option {
	detected := Detect(dir)
	if s.Cfg.NonInteractive || s.Cfg.AutoRun {
		return detected
	}

	def := len(menu) - 1
	labels := make([]string, len(menu))
	for i, entry := range menu {
		labels[i] = entry.label
		if entry.option == detected {
			def = i
			labels[i] += " (detected)"
		}
	}
	pick, err := s.Prompt.Select("how should this project be started?", labels, def, 3)
	if err != nil {
		s.Log.Warn("no valid selection, not starting anything")
		return OptionNone
	}
	return menu[pick].option
}

// Launch executes option inside dir. For package managers it first makes
// sure the corepack shim is active (consent-gated), installs dependencies
// with a lock-respecting command when a lock file exists, then invokes the
// start script.
func (s *Selector) Launch(ctx context.Context, dir string, option Option) {
	switch option {
	case OptionNone:
		s.Log.Info("no run option for %s", dir)
		return
	case OptionMake:
		s.exec(ctx, dir, "make", "up")
	case OptionCompose:
		s.exec(ctx, dir, "docker", "compose", "up", "-d")
	case OptionYarn:
		s.packageManagerRun(ctx, dir, "yarn",
			pick(fileExists(filepath.Join(dir, "yarn.lock")), []string{"install", "--frozen-lockfile"}, []string{"install"}))
	case OptionPnpm:
		s.packageManagerRun(ctx, dir, "pnpm",
			pick(fileExists(filepath.Join(dir, "pnpm-lock.yaml")), []string{"install", "--frozen-lockfile"}, []string{"install"}))
	case OptionNpm:
		s.packageManagerRun(ctx, dir, "npm",
			pick(fileExists(filepath.Join(dir, "package-lock.json")), []string{"ci"}, []string{"install"}))
	}
}

func (s *Selector) packageManagerRun(ctx context.Context, dir, pm string, installArgs []string) {
	if _, err := s.Run.LookPath(pm); err != nil {
		if !s.consent(pm + " is not active, enable it via corepack?") {
			s.Log.Warn("%s unavailable, cannot start %s", pm, dir)
			return
		}
		if code, out, shellErr := s.Run.Shell(ctx, "", "corepack enable"); shellErr != nil || code != 0 {
			s.Log.Warn("corepack enable failed (exit %d): %s", code, strings.TrimSpace(out))
			return
		}
	}
	if !s.exec(ctx, dir, pm, installArgs...) {
		return
	}
	if pm == "npm" {
		s.exec(ctx, dir, pm, "run", "start")
		return
	}
	s.exec(ctx, dir, pm, "start")
}

// exec runs one invocation and reports failures as warnings.
func (s *Selector) exec(ctx context.Context, dir, name string, args ...string) bool {
	s.Log.Info("running %s in %s", execx.Argv(name, args...), dir)
	code, out, err := s.Run.Run(ctx, dir, name, args...)
	if err != nil || code != 0 {
		s.Log.Warn("%s failed (exit %d): %s", execx.Argv(name, args...), code, strings.TrimSpace(out))
		return false
	}
	return true
}

func (s *Selector) consent(question string) bool {
	if s.Cfg.Yes {
		return true
	}
	if s.Cfg.NonInteractive {
		return false
	}
	return s.Prompt.Confirm(question, true)
}

func pick(cond bool, a, b []string) []string {
	if cond {
		return a
	}
	return b
}
