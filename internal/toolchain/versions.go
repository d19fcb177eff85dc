package toolchain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Version precedence, applied the same way for every ecosystem that takes a
// version: per-repo pin file > manifest-declared constraint > configured
// default > interactive prompt. The pin file is the most local, deliberate
// signal; a flag is only a session-wide fallback.

// readPinFile returns the first non-comment line of a one-line pin file
// such as .nvmrc or .java-version, trimmed, "" when absent or empty.
func readPinFile(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}

// nodeEngine extracts the engines.node constraint from package.json,
// stripped of range operators so it can feed `nvm install` directly.
func nodeEngine(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var manifest struct {
		Engines struct {
			Node string `json:"node"`
		} `json:"engines"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return strings.TrimLeft(strings.TrimSpace(manifest.Engines.Node), "^~>=< ")
}

// sdkmanJavaPin reads a .sdkmanrc "java=..." entry, falling back to the
// plain .java-version pin file.
func javaPin(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, ".sdkmanrc")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if v, ok := strings.CutPrefix(line, "java="); ok {
				return strings.TrimSpace(v)
			}
		}
	}
	return readPinFile(dir, ".java-version")
}

var (
	knownJavaVersions = map[string]bool{"8": true, "11": true, "17": true, "21": true}
	javaVersionRe     = regexp.MustCompile(`^\d{1,2}(\.\d+)*([.-][A-Za-z0-9]+)?$`)
)

// validJavaVersion accepts the well-known LTS tokens plus anything shaped
// like a version number, optionally with a distribution tag (e.g. 21-tem).
func validJavaVersion(v string) bool {
	return knownJavaVersions[v] || javaVersionRe.MatchString(v)
}
