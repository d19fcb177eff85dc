package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/ensure"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

// Installer provisions the toolchains a repository needs. Every branch is
// independent: a failure in one ecosystem is logged and the others still
// run. Nothing here aborts the session.
type Installer struct {
	Run     execx.Runner
	Log     *ui.Logger
	Prompt  *ui.Prompter
	Cfg     *config.Config
	Ensurer *ensure.Ensurer
}

// Provision detects the ecosystems of repoDir and runs the matching
// installers. The classification is returned for reporting.
func (in *Installer) Provision(ctx context.Context, repoDir string) Ecosystems {
	eco := Detect(repoDir)
	if !eco.Any() {
		in.Log.Info("%s: no recognized ecosystem manifests", filepath.Base(repoDir))
		return eco
	}
	in.Log.Info("%s: detected %s", filepath.Base(repoDir), describe(eco))

	if eco.Node {
		in.node(ctx, repoDir)
	}
	if eco.Python {
		in.python(ctx, repoDir)
	}
	if eco.Java {
		in.java(ctx, repoDir)
	}
	if eco.Flutter {
		in.flutter(ctx)
	}
	return eco
}

func describe(eco Ecosystems) string {
	var parts []string
	if eco.Flutter {
		parts = append(parts, "flutter")
	}
	if eco.Node {
		parts = append(parts, "node")
	}
	if eco.Python {
		parts = append(parts, "python")
	}
	if eco.Java {
		parts = append(parts, "java")
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// node ensures nvm, resolves the desired Node version (pin file > engines
// constraint > --node > prompt), installs and selects it, then enables the
// corepack shim layer so yarn/pnpm are available later.
func (in *Installer) node(ctx context.Context, repoDir string) {
	if !in.ensureNvm(ctx) {
		in.Log.Warn("nvm unavailable, skipping Node toolchain for %s", filepath.Base(repoDir))
		return
	}

	version := readPinFile(repoDir, ".nvmrc")
	if version == "" {
		version = nodeEngine(repoDir)
	}
	if version == "" {
		version = in.Cfg.Node
	}
	if version == "" && !in.Cfg.NonInteractive {
		v, err := in.Prompt.Ask("Node version for "+filepath.Base(repoDir)+" (blank to skip)", nil, 3)
		if err == nil {
			version = v
		}
	}
	if version == "" {
		in.Log.Warn("no Node version determined for %s, leaving system Node as-is", filepath.Base(repoDir))
	} else {
		in.Log.Info("installing Node %s via nvm", version)
		script := fmt.Sprintf(`. "$NVM_DIR/nvm.sh" && nvm install %s && nvm alias default %s`, version, version)
		if code, out, err := in.Run.Shell(ctx, "", script); err != nil || code != 0 {
			in.Log.Warn("nvm install %s failed (exit %d): %s", version, code, out)
		}
	}

	// corepack ships with modern Node and provides the yarn/pnpm shims
	if code, out, err := in.Run.Shell(ctx, "", `. "$NVM_DIR/nvm.sh" && corepack enable`); err != nil || code != 0 {
		in.Log.Warn("corepack enable failed (exit %d): %s", code, out)
	}
}

func (in *Installer) ensureNvm(ctx context.Context) bool {
	code, _, err := in.Run.Shell(ctx, "", `[ -s "$NVM_DIR/nvm.sh" ] || [ -s "$HOME/.nvm/nvm.sh" ]`)
	if err == nil && code == 0 {
		return true
	}
	if !in.consent("nvm (Node version manager) is missing, install it?") {
		return false
	}
	in.Log.Info("installing nvm")
	code, out, err := in.Run.Shell(ctx, "",
		`curl -fsSL https://raw.githubusercontent.com/nvm-sh/nvm/v0.40.1/install.sh | bash`)
	if err != nil || code != 0 {
		in.Log.Warn("nvm install failed (exit %d): %s", code, out)
		return false
	}
	return true
}

// python ensures an interpreter and pip, then (consent-gated, automatic in
// non-interactive mode) creates a virtualenv and installs requirements.
func (in *Installer) python(ctx context.Context, repoDir string) {
	if _, err := in.Run.LookPath("python3"); err != nil {
		if !in.Ensurer.Tool(ctx, "python3") {
			return
		}
	}
	if _, err := in.Run.LookPath("pip3"); err != nil {
		// pip often rides along with the interpreter package; best effort
		in.Ensurer.Tool(ctx, "pip3")
	}

	reqs := filepath.Join(repoDir, "requirements.txt")
	if _, err := os.Stat(reqs); err != nil {
		return
	}
	if !in.Cfg.NonInteractive && !in.consent("create a virtualenv and install requirements for "+filepath.Base(repoDir)+"?") {
		return
	}
	in.Log.Info("creating .venv and installing requirements in %s", filepath.Base(repoDir))
	if code, out, err := in.Run.Run(ctx, repoDir, "python3", "-m", "venv", ".venv"); err != nil || code != 0 {
		in.Log.Warn("venv creation failed (exit %d): %s", code, out)
		return
	}
	code, out, err := in.Run.Shell(ctx, repoDir, `. .venv/bin/activate && pip install -r requirements.txt`)
	if err != nil || code != 0 {
		in.Log.Warn("pip install failed (exit %d): %s", code, out)
	}
}

// java resolves the JDK version (pin file > --java > prompt, validated),
// preferring sdkman and falling back to an OS-level JDK package.
func (in *Installer) java(ctx context.Context, repoDir string) {
	version := javaPin(repoDir)
	if version == "" {
		version = in.Cfg.Java
	}
	if version == "" && !in.Cfg.NonInteractive {
		v, err := in.Prompt.Ask("Java version for "+filepath.Base(repoDir)+" (8/11/17/21, blank to skip)", func(s string) error {
			if s == "" || validJavaVersion(s) {
				return nil
			}
			return fmt.Errorf("unrecognized Java version %q", s)
		}, 3)
		if err == nil {
			version = v
		}
	}
	if version == "" {
		in.Log.Warn("no Java version determined for %s, skipping JDK install", filepath.Base(repoDir))
		return
	}
	if !validJavaVersion(version) {
		in.Log.Warn("ignoring unrecognized Java version %q", version)
		return
	}

	if in.ensureSdkman(ctx) {
		in.Log.Info("installing Java %s via sdkman", version)
		script := fmt.Sprintf(`. "$HOME/.sdkman/bin/sdkman-init.sh" && sdk install java %s`, version)
		if code, out, err := in.Run.Shell(ctx, "", script); err != nil || code != 0 {
			in.Log.Warn("sdk install java %s failed (exit %d): %s", version, code, out)
		}
		return
	}

	// OS package fallback when sdkman is unavailable or declined
	if pm, ok := in.Ensurer.PackageManager(); ok {
		pkg := "openjdk-" + version + "-jdk"
		if pm == "brew" {
			pkg = "openjdk@" + version
		}
		in.Log.Info("installing %s via %s", pkg, pm)
		argv := ensure.InstallArgs(pm, pkg)
		if code, out, err := in.Run.Run(ctx, "", argv[0], argv[1:]...); err != nil || code != 0 {
			in.Log.Warn("JDK package install failed (exit %d): %s", code, out)
		}
	} else {
		in.Log.Warn("no package manager available for a JDK fallback install")
	}
}

func (in *Installer) ensureSdkman(ctx context.Context) bool {
	code, _, err := in.Run.Shell(ctx, "", `[ -s "$HOME/.sdkman/bin/sdkman-init.sh" ]`)
	if err == nil && code == 0 {
		return true
	}
	if !in.consent("sdkman (JDK version manager) is missing, install it?") {
		return false
	}
	in.Log.Info("installing sdkman")
	code, out, err := in.Run.Shell(ctx, "", `curl -fsSL https://get.sdkman.io | bash`)
	if err != nil || code != 0 {
		in.Log.Warn("sdkman install failed (exit %d): %s", code, out)
		return false
	}
	return true
}

// flutter installs the SDK (a git clone to $HOME/flutter) and the fvm
// version-manager tool, both consent-gated, then verifies reachability.
func (in *Installer) flutter(ctx context.Context) {
	if _, err := in.Run.LookPath("flutter"); err != nil {
		if !in.consent("Flutter SDK is missing, install it to ~/flutter?") {
			in.Log.Warn("Flutter SDK missing and install declined")
			return
		}
		home, _ := os.UserHomeDir()
		dest := filepath.Join(home, "flutter")
		in.Log.Info("cloning Flutter SDK into %s", dest)
		code, out, err := in.Run.Run(ctx, "", "git", "clone", "--depth", "1",
			"https://github.com/flutter/flutter.git", dest)
		if err != nil || code != 0 {
			in.Log.Warn("Flutter SDK clone failed (exit %d): %s", code, out)
			return
		}
		in.Log.Warn("add %s to PATH to use flutter in new shells", filepath.Join(dest, "bin"))
	}

	if _, err := in.Run.LookPath("fvm"); err != nil {
		if !in.consent("install fvm (Flutter version manager)?") {
			return
		}
		if _, err := in.Run.LookPath("dart"); err != nil {
			in.Log.Warn("dart not on PATH, cannot activate fvm")
			return
		}
		if code, out, err := in.Run.Run(ctx, "", "dart", "pub", "global", "activate", "fvm"); err != nil || code != 0 {
			in.Log.Warn("fvm activation failed (exit %d): %s", code, out)
		}
	}
}

func (in *Installer) consent(question string) bool {
	if in.Cfg.Yes {
		return true
	}
	if in.Cfg.NonInteractive {
		return false
	}
	return in.Prompt.Confirm(question, true)
}
