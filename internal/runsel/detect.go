// Package runsel detects how a repository is meant to be started and
// launches it: a Makefile "up" target, a compose file, or a package-manager
// start script, in that strict priority order.
package runsel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
)

// Option is the closed set of run mechanisms.
type Option int

const (
	OptionNone Option = iota
	OptionMake
	OptionCompose
	OptionYarn
	OptionPnpm
	OptionNpm
)

func (o Option) String() string {
	switch o {
	case OptionMake:
		return "make up"
	case OptionCompose:
		return "docker compose up -d"
	case OptionYarn:
		return "yarn start"
	case OptionPnpm:
		return "pnpm start"
	case OptionNpm:
		return "npm start"
	default:
		return "none detected"
	}
}

var (
	// reUpTarget matches a Makefile target declaration line "up:" (with
	// optional prerequisites after the colon).
	reUpTarget = regexp.MustCompile(`(?m)^up\s*:`)

	composeNames = []string{
		"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml",
	}
)

// Detect evaluates the run signals in priority order and returns the first
// match: Makefile up target, then a compose file, then a package manifest
// with a start script (the package manager chosen by lock-file precedence:
// yarn beats pnpm beats npm-by-default). Lower-priority signals are never
// consulted once a higher one matches.
func Detect(dir string) Option {
	if data, err := os.ReadFile(filepath.Join(dir, "Makefile")); err == nil {
		if reUpTarget.Match(data) {
			return OptionMake
		}
	}

	for _, name := range composeNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return OptionCompose
		}
	}

	if hasStartScript(dir) {
		switch {
		case fileExists(filepath.Join(dir, "yarn.lock")):
			return OptionYarn
		case fileExists(filepath.Join(dir, "pnpm-lock.yaml")):
			return OptionPnpm
		default:
			return OptionNpm
		}
	}

	return OptionNone
}

func hasStartScript(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false
	}
	return manifest.Scripts["start"] != ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
