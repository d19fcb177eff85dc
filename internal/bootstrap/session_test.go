package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

func newTestSession(t *testing.T, cfg *config.Config, fake *execx.Fake) (*Session, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	var out bytes.Buffer
	log := ui.NewLogger(&out)
	log.NoTint = true
	s := New(cfg, fake, log, strings.NewReader(""), &bytes.Buffer{})
	return s, &out
}

func TestUp_ZeroReposNonInteractive(t *testing.T) {
	fake := execx.NewFake()
	cfg := &config.Config{Workspace: "demo", NonInteractive: true, NoLog: true}
	s, out := newTestSession(t, cfg, fake)

	if err := s.Up(context.Background()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !strings.Contains(out.String(), "[WARN] no repositories requested") {
		t.Fatalf("expected the no-repos warning, output:\n%s", out.String())
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("no external commands should run with zero repos, got %v", fake.Calls)
	}
	if !strings.Contains(out.String(), "[DONE]") {
		t.Fatal("expected a success banner")
	}
	if _, err := os.Stat("."); err != nil {
		t.Fatal(err)
	}
	if filepath.Base(s.Workspace) != "demo" {
		t.Fatalf("expected workspace demo, got %s", s.Workspace)
	}
}

func TestUp_AllClonesFailed(t *testing.T) {
	fake := execx.NewFake().Install("git").Install("docker").Install("make")
	fake.On("git clone", execx.Response{Code: 128, Output: "fatal"})
	cfg := &config.Config{
		Workspace:      "demo",
		Repos:          []string{"https://a/x.git", "https://b/y.git"},
		NonInteractive: true,
		NoLog:          true,
		SkipToolchains: true,
	}
	s, _ := newTestSession(t, cfg, fake)

	err := s.Up(context.Background())
	if !errors.Is(err, ErrAllClonesFailed) {
		t.Fatalf("expected ErrAllClonesFailed, got %v", err)
	}
}

func TestUp_PartialCloneFailureSucceeds(t *testing.T) {
	fake := execx.NewFake().Install("git").Install("docker").Install("make")
	fake.On("git clone https://bad/x.git", execx.Response{Code: 128, Output: "fatal"})
	cfg := &config.Config{
		Workspace:      "demo",
		Repos:          []string{"https://bad/x.git", "https://good/y.git"},
		NonInteractive: true,
		NoLog:          true,
		SkipToolchains: true,
	}
	s, out := newTestSession(t, cfg, fake)

	if err := s.Up(context.Background()); err != nil {
		t.Fatalf("one surviving clone should keep the session green, got %v", err)
	}
	if !strings.Contains(out.String(), "failed") || !strings.Contains(out.String(), "cloned") {
		t.Fatalf("clone summary should list both outcomes, output:\n%s", out.String())
	}
}

func TestUp_LogFileMirrored(t *testing.T) {
	fake := execx.NewFake()
	cfg := &config.Config{Workspace: "demo", NonInteractive: true}
	s, _ := newTestSession(t, cfg, fake)

	if err := s.Up(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Log.Close()

	data, err := os.ReadFile(filepath.Join(s.Workspace, LogFileName))
	if err != nil {
		t.Fatalf("expected a log file in the workspace: %v", err)
	}
	if !strings.Contains(string(data), "no repositories requested") {
		t.Fatalf("log file should mirror terminal lines, got:\n%s", data)
	}
	if !strings.Contains(string(data), "workspace ready at") {
		t.Fatalf("the ready line must reach the log file too, got:\n%s", data)
	}
}

func TestUp_DryRunNeverExecutes(t *testing.T) {
	// the fake stands in for the real system; with dry-run active it
	// must never be reached for Run/Shell
	fake := execx.NewFake().Install("git").Install("docker").Install("make")
	cfg := &config.Config{
		Workspace:      "demo",
		Repos:          []string{"https://a/x.git"},
		NonInteractive: true,
		NoLog:          true,
		SkipToolchains: true,
		DryRun:         true,
	}
	s, out := newTestSession(t, cfg, fake)

	if err := s.Up(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("dry-run must not execute commands, got %v", fake.Calls)
	}
	if !strings.Contains(out.String(), "dry-run: git clone") {
		t.Fatalf("expected the clone to be echoed, output:\n%s", out.String())
	}
}
