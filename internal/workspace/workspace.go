// Package workspace creates the session workspace directory and clones the
// requested repositories into it, resolving destination conflicts without
// ever deleting existing data silently.
package workspace

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devstrap/devstrap/internal/config"
	"github.com/devstrap/devstrap/internal/execx"
	"github.com/devstrap/devstrap/internal/ui"
)

// Outcome classifies what happened to one requested repository.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCloned
	OutcomeSkipped // destination already holds the same remote
	OutcomeRenamed // cloned under a suffixed folder name
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCloned:
		return "cloned"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRenamed:
		return "renamed"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Repo describes one requested clone and its result. Folder is the
// requested destination (may be empty, derived from the URL); FinalFolder
// is where the repository actually ended up.
type Repo struct {
	URL         string
	Folder      string
	FinalFolder string
	Outcome     Outcome
}

// urlRe accepts https://, http://, and scp-like git@host:path forms.
var urlRe = regexp.MustCompile(`^(https?://\S+/\S+|git@[\w.-]+:\S+)$`)

// ValidateURL is the shape check applied to configured and prompted URLs.
func ValidateURL(s string) error {
	if !urlRe.MatchString(s) {
		return fmt.Errorf("not a recognized repository URL (https://host/path or git@host:path): %q", s)
	}
	return nil
}

// DeriveFolder returns the default destination folder for a URL: the last
// path segment with a trailing .git stripped.
func DeriveFolder(url string) string {
	s := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// NormalizeRemote canonicalizes a remote URL for equality checks: lowered,
// trailing slash and .git suffix dropped.
func NormalizeRemote(url string) string {
	s := strings.ToLower(strings.TrimSpace(url))
	s = strings.TrimRight(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// Manager performs workspace setup and clones through an execx.Runner so the
// underlying git invocations stay swappable in tests.
type Manager struct {
	Run    execx.Runner
	Log    *ui.Logger
	Prompt *ui.Prompter
	Cfg    *config.Config
}

// ResolveName returns the workspace name: configured value, interactive
// prompt, or a timestamped default when non-interactive with nothing set.
func (m *Manager) ResolveName() (string, error) {
	if m.Cfg.Workspace != "" {
		return m.Cfg.Workspace, nil
	}
	if m.Cfg.NonInteractive {
		return "workspace-" + time.Now().Format("20060102-150405"), nil
	}
	return m.Prompt.Ask("workspace name", func(s string) error {
		if s == "" {
			return fmt.Errorf("workspace name must not be empty")
		}
		return nil
	}, 5)
}

// Ensure creates the workspace directory if needed and makes it the process
// working directory for the rest of the run. Creation is idempotent. No
// logging happens here: the caller opens the log mirror inside the new
// directory first so the ready line lands in the file too.
func (m *Manager) Ensure(name string) (string, error) {
	if err := os.MkdirAll(name, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	if err := os.Chdir(name); err != nil {
		return "", fmt.Errorf("enter workspace: %w", err)
	}
	return os.Getwd()
}

// ResolveRepos builds the requested repo list. Configured URLs are paired
// positionally with configured folder names. With nothing configured, the
// interactive path prompts for a count and then each URL (5 attempts per
// field, an exhausted budget skips that entry); the non-interactive path
// returns an empty list, which the caller reports as a warning, not an error.
func (m *Manager) ResolveRepos() []Repo {
	if len(m.Cfg.Repos) > 0 {
		repos := make([]Repo, 0, len(m.Cfg.Repos))
		for i, url := range m.Cfg.Repos {
			r := Repo{URL: url}
			if i < len(m.Cfg.Folders) {
				r.Folder = m.Cfg.Folders[i]
			}
			if err := ValidateURL(url); err != nil {
				m.Log.Warn("skipping configured repo: %v", err)
				continue
			}
			repos = append(repos, r)
		}
		return repos
	}
	if m.Cfg.NonInteractive {
		return nil
	}

	countStr, err := m.Prompt.Ask("how many repositories", func(s string) error {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			return fmt.Errorf("enter a non-negative number")
		}
		return nil
	}, 5)
	if err != nil {
		m.Log.Warn("no usable repository count, continuing with none")
		return nil
	}
	count, _ := strconv.Atoi(countStr)

	var repos []Repo
	for i := 0; i < count; i++ {
		url, err := m.Prompt.Ask(fmt.Sprintf("repo %d URL", i+1), ValidateURL, 5)
		if err != nil {
			m.Log.Warn("repo %d: %v, skipping entry", i+1, err)
			continue
		}
		folder, err := m.Prompt.Ask(fmt.Sprintf("repo %d folder (blank for default)", i+1), nil, 5)
		if err != nil {
			folder = ""
		}
		repos = append(repos, Repo{URL: url, Folder: folder})
	}
	return repos
}

// Clone clones r into ws, resolving destination conflicts:
//   - destination holds the same remote (normalized comparison): skip, the
//     request is already satisfied, git is not invoked
//   - different or unreadable remote, interactive: ask skip/overwrite/rename
//   - different or unreadable remote, non-interactive: always rename with a
//     fresh random numeric suffix (deterministic policy, nothing is lost)
//
// A failed clone marks the repo and returns; it never aborts the session.
func (m *Manager) Clone(ctx context.Context, ws string, r *Repo) {
	target := r.Folder
	if target == "" {
		target = DeriveFolder(r.URL)
	}
	dest := filepath.Join(ws, target)

	if _, err := os.Stat(dest); err == nil {
		code, out, _ := m.Run.Run(ctx, dest, "git", "config", "--get", "remote.origin.url")
		existing := strings.TrimSpace(out)
		if code == 0 && NormalizeRemote(existing) == NormalizeRemote(r.URL) {
			m.Log.Info("%s already present (same remote), skipping", target)
			r.FinalFolder, r.Outcome = target, OutcomeSkipped
			return
		}

		choice := 2 // rename
		if !m.Cfg.NonInteractive {
			picked, err := m.Prompt.Select(
				fmt.Sprintf("%s exists with a different origin", target),
				[]string{"skip this repository", "overwrite (delete, then clone)", "clone under a new name"},
				2, 3)
			if err == nil {
				choice = picked
			}
		}
		switch choice {
		case 0:
			// FinalFolder stays empty: the existing directory holds an
			// unrelated project and must not be provisioned or run
			m.Log.Warn("skipping %s on request", r.URL)
			r.Outcome = OutcomeSkipped
			return
		case 1:
			if err := os.RemoveAll(dest); err != nil {
				m.Log.Err("could not remove %s: %v", dest, err)
				r.Outcome = OutcomeFailed
				return
			}
		default:
			target = freshName(ws, target)
			dest = filepath.Join(ws, target)
			m.Log.Info("destination conflict, cloning as %s", target)
			r.Outcome = OutcomeRenamed
		}
	}

	m.Log.Info("cloning %s -> %s", r.URL, target)
	code, out, err := m.Run.Run(ctx, ws, "git", "clone", r.URL, target)
	if err != nil || code != 0 {
		m.Log.Err("clone of %s failed (exit %d): %s", r.URL, code, strings.TrimSpace(out))
		r.Outcome = OutcomeFailed
		return
	}
	r.FinalFolder = target
	if r.Outcome != OutcomeRenamed {
		r.Outcome = OutcomeCloned
	}
}

// freshName appends a random numeric suffix until the name is unused.
func freshName(ws, base string) string {
	for {
		candidate := fmt.Sprintf("%s-%04d", base, rand.Intn(10000))
		if _, err := os.Stat(filepath.Join(ws, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}
