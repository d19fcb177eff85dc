// Package ensure checks that the baseline tools (git, a container runtime,
// make) are present and installs missing ones through the OS package
// manager, gated by user consent. Nothing in here is fatal: a declined or
// failed install degrades later capabilities and is logged as a warning.
package ensure

import (
	"context"
	"runtime"
	"time"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

// pmOrder is the fixed package-manager preference per OS family. The first
// one found on the search path wins.
var pmOrder = map[string][]string{
	"linux":   {"apt-get", "dnf", "yum", "pacman", "zypper", "apk"},
	"darwin":  {"brew"},
	"windows": {"winget", "choco", "scoop"},
}

// InstallArgs renders the install invocation for a given package manager.
// Exposed so other packages installing through the detected manager (e.g.
// the JDK fallback) use the same per-manager syntax.
func InstallArgs(pm, pkg string) []string {
	switch pm {
	case "apt-get", "dnf", "yum", "zypper":
		return []string{pm, "install", "-y", pkg}
	case "pacman":
		return []string{pm, "-S", "--noconfirm", pkg}
	case "apk":
		return []string{pm, "add", pkg}
	case "brew", "scoop":
		return []string{pm, "install", pkg}
	case "winget":
		return []string{pm, "install", "--silent", pkg}
	case "choco":
		return []string{pm, "install", "-y", pkg}
	default:
		return []string{pm, "install", pkg}
	}
}

// Docker readiness probe bounds. A daemon that is installed but not yet
// reachable gets a handful of polls before we give up with a warning.
const (
	dockerProbeAttempts = 5
	dockerProbeDelay    = 3 * time.Second
)

// Ensurer drives consent-gated installs through an execx.Runner.
type Ensurer struct {
	Run    execx.Runner
	Log    *ui.Logger
	Prompt *ui.Prompter
	Cfg    *config.Config

	// GOOS overrides runtime.GOOS in tests; empty means the real OS.
	GOOS string
	// sleep overrides the probe delay in tests.
	sleep func(time.Duration)
}

func (e *Ensurer) os() string {
	if e.GOOS != "" {
		return e.GOOS
	}
	return runtime.GOOS
}

// PackageManager returns the first preferred package manager present.
func (e *Ensurer) PackageManager() (string, bool) {
	for _, pm := range pmOrder[e.os()] {
		if _, err := e.Run.LookPath(pm); err == nil {
			return pm, true
		}
	}
	return "", false
}

// Baseline checks git, docker, and make in order, installing what is
// missing (with consent) and probing docker for readiness. It never fails;
// the return value reports which tools ended up available.
func (e *Ensurer) Baseline(ctx context.Context) map[string]bool {
	available := map[string]bool{}
	for _, tool := range []string{"git", "docker", "make"} {
		available[tool] = e.Tool(ctx, tool)
	}
	if available["docker"] && !e.DockerReady(ctx) {
		e.Log.Warn("docker is installed but the daemon is not reachable; compose runs will fail")
	}
	return available
}

// Tool ensures a single executable is present, asking consent before any
// install unless assume-yes is active. Installer failures are warnings.
func (e *Ensurer) Tool(ctx context.Context, name string) bool {
	if _, err := e.Run.LookPath(name); err == nil {
		e.Log.Info("%s found", name)
		return true
	}
	if !e.consent("install missing tool " + name + "?") {
		e.Log.Warn("%s missing and install declined; dependent steps will be skipped", name)
		return false
	}
	pm, ok := e.PackageManager()
	if !ok {
		e.Log.Warn("no supported package manager found on this system, cannot install %s", name)
		return false
	}
	argv := InstallArgs(pm, name)
	e.Log.Info("installing %s via %s", name, pm)
	code, out, err := e.Run.Run(ctx, "", argv[0], argv[1:]...)
	if err != nil || code != 0 {
		e.Log.Warn("install of %s failed (exit %d): %s", name, code, out)
		return false
	}
	_, lookErr := e.Run.LookPath(name)
	return lookErr == nil
}

// DockerReady polls `docker info` a fixed number of times with a fixed
// delay. Unreachable after all attempts is a warning condition, not fatal.
func (e *Ensurer) DockerReady(ctx context.Context) bool {
	wait := e.sleep
	if wait == nil {
		wait = time.Sleep
	}
	for i := 0; i < dockerProbeAttempts; i++ {
		if i > 0 {
			wait(dockerProbeDelay)
		}
		code, _, err := e.Run.Run(ctx, "", "docker", "info")
		if err == nil && code == 0 {
			return true
		}
	}
	return false
}

func (e *Ensurer) consent(question string) bool {
	if e.Cfg.Yes {
		return true
	}
	if e.Cfg.NonInteractive {
		// non-interactive without assume-yes never installs
		return false
	}
	return e.Prompt.Confirm(question, true)
}
