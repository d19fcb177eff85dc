// Package toolchain classifies cloned repositories by their manifest files
// and ensures the matching language toolchains are installed and selected.
package toolchain

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Ecosystems is the per-repository classification. Several can be true at
// once (e.g. a Flutter app with Node tooling); each triggers its own
// independent provisioning branch.
type Ecosystems struct {
	Node    bool
	Python  bool
	Java    bool
	Flutter bool

	// Manifests lists the files that triggered each positive match, for
	// reporting.
	Manifests []string
}

func (e Ecosystems) Any() bool {
	return e.Node || e.Python || e.Java || e.Flutter
}

var (
	pythonManifests = []string{"requirements.txt", "pyproject.toml", "Pipfile"}
	javaManifests   = []string{"pom.xml", "build.gradle", "build.gradle.kts"}
)

// Detect inspects dir for the known manifest signatures, in a fixed order:
// Flutter, Node, Python, Java. Detection is purely filename/manifest based;
// no source code is read.
func Detect(dir string) Ecosystems {
	var eco Ecosystems

	if hasFlutterPubspec(dir) {
		eco.Flutter = true
		eco.Manifests = append(eco.Manifests, "pubspec.yaml")
	}
	if fileExists(filepath.Join(dir, "package.json")) {
		eco.Node = true
		eco.Manifests = append(eco.Manifests, "package.json")
	}
	for _, m := range pythonManifests {
		if fileExists(filepath.Join(dir, m)) {
			eco.Python = true
			eco.Manifests = append(eco.Manifests, m)
			break
		}
	}
	for _, m := range javaManifests {
		if fileExists(filepath.Join(dir, m)) {
			eco.Java = true
			eco.Manifests = append(eco.Manifests, m)
			break
		}
	}
	return eco
}

// hasFlutterPubspec reports whether dir holds a pubspec.yaml that actually
// depends on the flutter framework. A plain Dart package does not count.
func hasFlutterPubspec(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "pubspec.yaml"))
	if err != nil {
		return false
	}
	var spec struct {
		Dependencies map[string]any `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return false
	}
	_, ok := spec.Dependencies["flutter"]
	return ok
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
