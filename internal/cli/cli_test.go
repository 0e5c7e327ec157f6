package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cratec/pkg/errors"
)

const demoManifest = `[package]
name = "demo"
version = "0.1.0"
colour = "blue"

[dependencies]
serde = "1.0"
util = { path = "../util" }

[dev-dependencies]
quickcheck = "0.9"
`

// fixture creates demo/ (lib + bin) next to util/ and returns the path of
// demo/Cargo.toml.
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"demo/Cargo.toml":      demoManifest,
		"demo/src/lib.rs":      "",
		"demo/src/bin/tool.rs": "",
		"util/Cargo.toml":      "[package]\nname = \"util\"\nversion = \"1.0.0\"\n",
		"util/src/lib.rs":      "",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(root, "demo", "Cargo.toml")
}

// run executes the CLI with args and returns stdout and the log output.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestCompile_Summary(t *testing.T) {
	path := fixture(t)
	out, logs, err := run(t, "compile", "--manifest-path", path)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	for _, want := range []string{"demo v0.1.0", "2 targets", "3 dependencies", "unused manifest key: package.colour"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs, "Compiled 1 package(s)") {
		t.Errorf("log missing progress line:\n%s", logs)
	}
}

func TestCompile_JSON(t *testing.T) {
	path := fixture(t)
	out, _, err := run(t, "compile", "--json", "--manifest-path", path)
	if err != nil {
		t.Fatalf("compile --json: %v", err)
	}

	var m struct {
		Package struct {
			Name string `json:"name"`
		} `json:"package"`
		Dependencies []json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if m.Package.Name != "demo" || len(m.Dependencies) != 3 {
		t.Errorf("decoded %+v", m)
	}
}

func TestCompile_RecursiveToFile(t *testing.T) {
	path := fixture(t)
	dest := filepath.Join(t.TempDir(), "all.json")
	if _, _, err := run(t, "compile", "--recursive", "--json", "-o", dest, "--manifest-path", path); err != nil {
		t.Fatalf("compile --recursive: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	var ms []struct {
		Package struct {
			Name string `json:"name"`
		} `json:"package"`
	}
	if err := json.Unmarshal(data, &ms); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(ms) != 2 || ms[0].Package.Name != "util" || ms[1].Package.Name != "demo" {
		t.Errorf("packages = %+v", ms)
	}
}

func TestTargets(t *testing.T) {
	path := fixture(t)

	out, _, err := run(t, "targets", "--manifest-path", path)
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	for _, want := range []string{"KIND", "lib", "tool", "dev,release,test,doc,bench", "src/bin/tool.rs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "targets", "--all", "--manifest-path", path)
	if err != nil {
		t.Fatalf("targets --all: %v", err)
	}
	if !strings.Contains(out, "dev[opt=0,harness,debug]") {
		t.Errorf("--all output missing profile column:\n%s", out)
	}
}

func TestDeps(t *testing.T) {
	path := fixture(t)

	out, _, err := run(t, "deps", "--kind", "dev", "--manifest-path", path)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if !strings.Contains(out, "quickcheck") || strings.Contains(out, "serde") {
		t.Errorf("dev filter output:\n%s", out)
	}

	_, _, err = run(t, "deps", "--kind", "optional", "--manifest-path", path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid --kind error = %v", err)
	}
}

func TestDeps_RegistryFromEnv(t *testing.T) {
	path := fixture(t)
	t.Setenv(EnvRegistry, "https://index.example.com")

	out, _, err := run(t, "deps", "--json", "--manifest-path", path)
	if err != nil {
		t.Fatalf("deps --json: %v", err)
	}
	if !strings.Contains(out, "registry+https://index.example.com") {
		t.Errorf("registry override not applied:\n%s", out)
	}

	out, _, err = run(t, "deps", "--json", "--registry", "https://flag.example.com", "--manifest-path", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "registry+https://flag.example.com") {
		t.Errorf("flag should win over env:\n%s", out)
	}
}

func TestJobsFromEnv_Invalid(t *testing.T) {
	path := fixture(t)
	t.Setenv(EnvJobs, "many")

	_, _, err := run(t, "compile", "--manifest-path", path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLayout(t *testing.T) {
	path := fixture(t)
	out, _, err := run(t, "layout", "--manifest-path", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "src/lib.rs") || !strings.Contains(out, "src/bin/tool.rs") {
		t.Errorf("layout output:\n%s", out)
	}
}

func TestGraph(t *testing.T) {
	path := fixture(t)

	out, _, err := run(t, "graph", "--manifest-path", path)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "digraph G") || !strings.Contains(out, `label="util v1.0.0"`) {
		t.Errorf("dot output:\n%s", out)
	}

	out, _, err = run(t, "graph", "-f", "json", "--manifest-path", path)
	if err != nil {
		t.Fatalf("graph -f json: %v", err)
	}
	var g struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal([]byte(out), &g); err != nil || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("json graph = %+v, err = %v", g, err)
	}

	if _, _, err := run(t, "graph", "-f", "png", "--manifest-path", path); err == nil {
		t.Error("graph -f png should fail")
	}
}

func TestManifestPathValidation(t *testing.T) {
	_, _, err := run(t, "compile", "--manifest-path", filepath.Join(t.TempDir(), "package.json"))
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want INVALID_PATH", err)
	}

	_, _, err = run(t, "compile", "--manifest-path", filepath.Join(t.TempDir(), "Cargo.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCompletion(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "cratec") {
		t.Error("bash completion does not mention the command")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		unit string
		n    int
		want string
	}{
		{"target", 1, "target"},
		{"target", 2, "targets"},
		{"dependency", 3, "dependencies"},
		{"dependency", 1, "dependency"},
	}
	for _, tt := range tests {
		if got := plural(tt.unit, tt.n); got != tt.want {
			t.Errorf("plural(%q, %d) = %q, want %q", tt.unit, tt.n, got, tt.want)
		}
	}
}
