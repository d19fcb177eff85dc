package execx

import (
	"context"
	"os/exec"
	"strings"
)

// Runner is the single seam between this tool and every external executable
// it drives (git, docker, make, package managers, version managers).
// Keeping it to three methods means tests can swap in a scripted fake and
// assert on the exact argv sequences without touching the real system.
type Runner interface {
	// Run executes name with args in dir (empty dir means the current
	// working directory) and returns the exit code plus combined output.
	// err is non-nil only when the command could not be started at all;
	// a non-zero exit is reported through code, not err.
	Run(ctx context.Context, dir string, name string, args ...string) (code int, output string, err error)

	// Shell executes a script through the login shell. Needed for tools
	// like nvm and sdkman that install themselves as shell functions and
	// are not reachable as plain executables.
	Shell(ctx context.Context, dir string, script string) (code int, output string, err error)

	// LookPath reports where name resolves on the search path.
	LookPath(name string) (string, error)
}

// Exec is the real Runner backed by os/exec.
type Exec struct{}

func (Exec) Run(ctx context.Context, dir string, name string, args ...string) (int, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return exitCode(err), string(out), startErr(err)
}

func (Exec) Shell(ctx context.Context, dir string, script string) (int, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-lc", script)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return exitCode(err), string(out), startErr(err)
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// exitCode maps the error from CombinedOutput back to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	// could not start at all; treat like a shell "command not found"
	return 127
}

// startErr keeps only start failures; exit-status errors are conveyed via code.
func startErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return nil
	}
	return err
}

// Argv renders an invocation the way it is logged and the way the fake
// runner matches it: space-joined, dir excluded.
func Argv(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
