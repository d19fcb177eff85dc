package execx

import "context"

// DryRun wraps a Runner so that every state-changing invocation is echoed
// instead of executed. LookPath still consults the real system, so a dry run
// reports honestly about what is and is not installed.
type DryRun struct {
	Real Runner
	Echo func(line string)
}

func (d DryRun) Run(_ context.Context, _ string, name string, args ...string) (int, string, error) {
	d.Echo("dry-run: " + Argv(name, args...))
	return 0, "", nil
}

func (d DryRun) Shell(_ context.Context, _ string, script string) (int, string, error) {
	d.Echo("dry-run: bash -lc " + script)
	return 0, "", nil
}

func (d DryRun) LookPath(name string) (string, error) {
	return d.Real.LookPath(name)
}
