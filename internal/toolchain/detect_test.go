package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect_Empty(t *testing.T) {
	eco := Detect(t.TempDir())
	if eco.Any() {
		t.Fatalf("empty dir should detect nothing, got %+v", eco)
	}
}

func TestDetect_MultipleEcosystems(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "package.json", `{"name":"x"}`)
	write(t, dir, "requirements.txt", "flask\n")
	write(t, dir, "pom.xml", "<project/>")

	eco := Detect(dir)
	if !eco.Node || !eco.Python || !eco.Java || eco.Flutter {
		t.Fatalf("unexpected classification: %+v", eco)
	}
	want := []string{"package.json", "requirements.txt", "pom.xml"}
	if diff := cmp.Diff(want, eco.Manifests); diff != "" {
		t.Fatalf("manifests (-want +got):\n%s", diff)
	}
}

func TestDetect_FlutterRequiresFrameworkDependency(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pubspec.yaml", "name: tool\ndependencies:\n  args: ^2.0.0\n")
	if Detect(dir).Flutter {
		t.Fatal("a plain Dart pubspec must not classify as Flutter")
	}

	write(t, dir, "pubspec.yaml", "name: app\ndependencies:\n  flutter:\n    sdk: flutter\n")
	if !Detect(dir).Flutter {
		t.Fatal("pubspec with a flutter dependency should classify as Flutter")
	}
}

func TestDetect_JavaBuildFileVariants(t *testing.T) {
	for _, name := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
		dir := t.TempDir()
		write(t, dir, name, "")
		if !Detect(dir).Java {
			t.Errorf("%s should classify as Java", name)
		}
	}
}

func TestDetect_PythonManifestVariants(t *testing.T) {
	for _, name := range []string{"requirements.txt", "pyproject.toml", "Pipfile"} {
		dir := t.TempDir()
		write(t, dir, name, "")
		if !Detect(dir).Python {
			t.Errorf("%s should classify as Python", name)
		}
	}
}

func TestReadPinFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".nvmrc", "# pinned for CI\n20.11.1\n")
	if got := readPinFile(dir, ".nvmrc"); got != "20.11.1" {
		t.Fatalf("expected 20.11.1, got %q", got)
	}
	if got := readPinFile(dir, ".missing"); got != "" {
		t.Fatalf("missing pin file should be empty, got %q", got)
	}
}

func TestNodeEngine_StripsRangeOperators(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "package.json", `{"engines":{"node":">=18.17.0"}}`)
	if got := nodeEngine(dir); got != "18.17.0" {
		t.Fatalf("expected 18.17.0, got %q", got)
	}
}

func TestJavaPin_SdkmanrcBeatsJavaVersion(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".java-version", "11\n")
	write(t, dir, ".sdkmanrc", "java=21-tem\n")
	if got := javaPin(dir); got != "21-tem" {
		t.Fatalf("expected 21-tem, got %q", got)
	}
}

func TestValidJavaVersion(t *testing.T) {
	for _, good := range []string{"8", "11", "17", "21", "21.0.2", "21-tem"} {
		if !validJavaVersion(good) {
			t.Errorf("%q should be accepted", good)
		}
	}
	for _, bad := range []string{"", "latest", "v21", "java21"} {
		if validJavaVersion(bad) {
			t.Errorf("%q should be rejected", bad)
		}
	}
}
