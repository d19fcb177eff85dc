package ensure

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

func newEnsurer(cfg *config.Config, fake *execx.Fake, goos, input string) *Ensurer {
	l := ui.NewLogger(&bytes.Buffer{})
	l.NoTint = true
	return &Ensurer{
		Run:    fake,
		Log:    l,
		Prompt: ui.NewPrompter(strings.NewReader(input), &bytes.Buffer{}),
		Cfg:    cfg,
		GOOS:   goos,
		sleep:  func(time.Duration) {},
	}
}

func TestPackageManager_PreferenceOrder(t *testing.T) {
	fake := execx.NewFake().Install("yum").Install("dnf")
	e := newEnsurer(&config.Config{}, fake, "linux", "")
	pm, ok := e.PackageManager()
	if !ok || pm != "dnf" {
		t.Fatalf("expected dnf (preferred over yum), got %q ok=%v", pm, ok)
	}
}

func TestPackageManager_NoneFound(t *testing.T) {
	e := newEnsurer(&config.Config{}, execx.NewFake(), "linux", "")
	if _, ok := e.PackageManager(); ok {
		t.Fatal("expected no package manager")
	}
}

func TestTool_PresentSkipsInstall(t *testing.T) {
	fake := execx.NewFake().Install("git")
	e := newEnsurer(&config.Config{NonInteractive: true}, fake, "linux", "")
	if !e.Tool(context.Background(), "git") {
		t.Fatal("git is present, expected true")
	}
	if len(fake.Calls) != 0 {
		t.Fatalf("no commands should run for a present tool, got %v", fake.Calls)
	}
}

func TestTool_NonInteractiveWithoutYesDeclines(t *testing.T) {
	fake := execx.NewFake().Install("apt-get")
	e := newEnsurer(&config.Config{NonInteractive: true}, fake, "linux", "")
	if e.Tool(context.Background(), "make") {
		t.Fatal("non-interactive without assume-yes must not install")
	}
	if fake.CalledWith("apt-get install") {
		t.Fatal("installer must not be invoked without consent")
	}
}

func TestTool_AssumeYesInstalls(t *testing.T) {
	fake := execx.NewFake().Install("apt-get")
	fake.On("apt-get install -y make", execx.Response{Code: 0})
	e := newEnsurer(&config.Config{NonInteractive: true, Yes: true}, fake, "linux", "")
	e.Tool(context.Background(), "make")
	if !fake.CalledWith("apt-get install -y make") {
		t.Fatalf("expected apt-get install, calls: %v", fake.Calls)
	}
}

func TestTool_InstallerFailureIsWarning(t *testing.T) {
	fake := execx.NewFake().Install("apt-get")
	fake.On("apt-get install -y make", execx.Response{Code: 100, Output: "unable to locate package"})
	e := newEnsurer(&config.Config{Yes: true}, fake, "linux", "")
	if e.Tool(context.Background(), "make") {
		t.Fatal("failed install should report unavailable, not panic or abort")
	}
}

func TestDockerReady_BoundedRetries(t *testing.T) {
	fake := execx.NewFake()
	fake.On("docker info", execx.Response{Code: 1})
	e := newEnsurer(&config.Config{}, fake, "linux", "")

	if e.DockerReady(context.Background()) {
		t.Fatal("daemon never becomes ready, expected false")
	}
	if len(fake.Calls) != dockerProbeAttempts {
		t.Fatalf("expected exactly %d probes, got %d", dockerProbeAttempts, len(fake.Calls))
	}
}

func TestDockerReady_SucceedsEarly(t *testing.T) {
	fake := execx.NewFake() // unmatched invocations succeed
	e := newEnsurer(&config.Config{}, fake, "linux", "")
	if !e.DockerReady(context.Background()) {
		t.Fatal("expected ready")
	}
	if len(fake.Calls) != 1 {
		t.Fatalf("expected a single probe, got %d", len(fake.Calls))
	}
}
