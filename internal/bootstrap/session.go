// Package bootstrap holds the session record that threads configuration,
// the command runner, the logger, and accumulated per-repo outcomes through
// the sequential pipeline. No package-level state: everything a stage needs
// travels in the Session.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/ensure"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/runsel"
	"github.com/devstrap/devstrap/internal/toolchain"
	"github.com/devstrap/devstrap/internal/ui"
	"github.com/devstrap/devstrap/internal/workspace"
)

// ErrAllClonesFailed is returned when at least one clone was requested and
// every one of them failed. The CLI maps it to a distinct exit code.
var ErrAllClonesFailed = errors.New("every requested clone failed")

// LogFileName is the per-workspace log file mirrored from terminal output.
const LogFileName = "devstrap.log"

// Session is the explicit state of one invocation.
type Session struct {
	Cfg    *config.Config
	Run    execx.Runner
	Log    *ui.Logger
	Prompt *ui.Prompter

	Workspace string
	Repos     []workspace.Repo
}

// New wires a session from resolved configuration. in/out are the prompt
// streams (stdin/stdout in production, scripted buffers in tests).
func New(cfg *config.Config, run execx.Runner, log *ui.Logger, in io.Reader, out io.Writer) *Session {
	if cfg.DryRun {
		run = execx.DryRun{Real: run, Echo: func(line string) { log.Info("%s", line) }}
	}
	return &Session{
		Cfg:    cfg,
		Run:    run,
		Log:    log,
		Prompt: ui.NewPrompter(in, out),
	}
}

func (s *Session) manager() *workspace.Manager {
	return &workspace.Manager{Run: s.Run, Log: s.Log, Prompt: s.Prompt, Cfg: s.Cfg}
}

func (s *Session) ensurer() *ensure.Ensurer {
	return &ensure.Ensurer{Run: s.Run, Log: s.Log, Prompt: s.Prompt, Cfg: s.Cfg}
}

func (s *Session) installer() *toolchain.Installer {
	return &toolchain.Installer{Run: s.Run, Log: s.Log, Prompt: s.Prompt, Cfg: s.Cfg, Ensurer: s.ensurer()}
}

func (s *Session) selector() *runsel.Selector {
	return &runsel.Selector{Run: s.Run, Log: s.Log, Prompt: s.Prompt, Cfg: s.Cfg}
}

// Up runs the whole pipeline: workspace, clones, baseline tools, toolchains,
// optional run step. Only the fatal class (workspace setup) aborts; per-repo
// failures degrade to warnings, except the all-clones-failed case.
func (s *Session) Up(ctx context.Context) error {
	if err := s.Prepare(ctx); err != nil {
		return err
	}

	if err := s.CloneAll(ctx); err != nil {
		s.Log.Err("%v", err)
		return err
	}

	if s.Cfg.SkipToolchains {
		s.Log.Info("toolchain provisioning skipped on request")
	} else {
		s.ProvisionAll(ctx)
	}

	if s.Cfg.AutoRun {
		s.RunAll(ctx)
	}

	s.Log.Done("workspace %s is ready", s.Workspace)
	return nil
}

// Prepare resolves the workspace name, creates and enters the directory,
// and opens the log mirror. The mirror opens as soon as the directory
// exists, before anything else is printed, so the log file carries the
// whole session. This is the only stage whose failure is fatal.
func (s *Session) Prepare(ctx context.Context) error {
	mgr := s.manager()
	name, err := mgr.ResolveName()
	if err != nil {
		return err
	}
	ws, err := mgr.Ensure(name)
	if err != nil {
		return err
	}
	s.Workspace = ws

	if !s.Cfg.NoLog {
		if err := s.Log.MirrorTo(filepath.Join(ws, LogFileName)); err != nil {
			s.Log.Warn("could not open log file: %v", err)
		}
	}
	s.Log.Info("workspace ready at %s", ws)
	return nil
}

// CloneAll resolves the repo list and clones each entry, continuing past
// individual failures. Zero configured repos is a warning, not an error.
func (s *Session) CloneAll(ctx context.Context) error {
	mgr := s.manager()
	s.Repos = mgr.ResolveRepos()
	if len(s.Repos) == 0 {
		s.Log.Warn("no repositories requested, nothing to clone")
		return nil
	}

	s.ensurer().Baseline(ctx)

	failed := 0
	for i := range s.Repos {
		mgr.Clone(ctx, s.Workspace, &s.Repos[i])
		if s.Repos[i].Outcome == workspace.OutcomeFailed {
			failed++
		}
	}

	s.Log.Info("clone summary:")
	for _, r := range s.Repos {
		s.Log.Info("  %-8s %s -> %s", r.Outcome, r.URL, r.FinalFolder)
	}

	if failed == len(s.Repos) {
		return ErrAllClonesFailed
	}
	return nil
}

// ProvisionAll runs the toolchain installer over every successfully cloned
// repository.
func (s *Session) ProvisionAll(ctx context.Context) {
	installer := s.installer()
	for _, r := range s.Repos {
		if r.FinalFolder == "" || r.Outcome == workspace.OutcomeFailed {
			continue
		}
		installer.Provision(ctx, filepath.Join(s.Workspace, r.FinalFolder))
	}
}

// RunAll applies the run selector to every available repository.
func (s *Session) RunAll(ctx context.Context) {
	sel := s.selector()
	for _, r := range s.Repos {
		if r.FinalFolder == "" || r.Outcome == workspace.OutcomeFailed {
			continue
		}
		dir := filepath.Join(s.Workspace, r.FinalFolder)
		sel.Launch(ctx, dir, sel.Choose(dir))
	}
}

// ProvisionDir detects and provisions a single directory; used by the watch
// command for repositories that appear after the initial bootstrap.
func (s *Session) ProvisionDir(ctx context.Context, dir string) {
	eco := s.installer().Provision(ctx, dir)
	if eco.Any() {
		s.Log.Info("%s: run option: %s", filepath.Base(dir), runsel.Detect(dir))
	}
}
