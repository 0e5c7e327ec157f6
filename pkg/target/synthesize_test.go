package target

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cratec/pkg/descriptor"
	"github.com/matzehuels/cratec/pkg/layout"
	"github.com/matzehuels/cratec/pkg/profile"
	"github.com/matzehuels/cratec/pkg/source"
)

func ptr[T any](v T) *T { return &v }

func pkgID(name string) source.PackageID {
	return source.PackageID{
		Name:    name,
		Version: semver.MustParse("0.1.0"),
		Source:  source.ForPath(filepath.FromSlash("/work/" + name)),
	}
}

func manifest(name string) *descriptor.Manifest {
	return &descriptor.Manifest{Package: &descriptor.Package{Name: name}}
}

func byRole(targets []Target, role Role, name string) []Target {
	var out []Target
	for _, t := range targets {
		if t.Role == role && t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func envs(targets []Target) []profile.Env {
	var out []profile.Env
	for _, t := range targets {
		out = append(out, t.Profile.Env)
	}
	return out
}

func assertUnique(t *testing.T, targets []Target) {
	t.Helper()
	seen := make(map[Key]bool, len(targets))
	for _, tg := range targets {
		if seen[tg.Key()] {
			t.Errorf("duplicate target %v", tg)
		}
		seen[tg.Key()] = true
	}
}

func TestSynthesize_LibAndInferredBin(t *testing.T) {
	root := filepath.FromSlash("/work/demo")
	lay := layout.Layout{Root: root, Lib: "src/lib.rs", Bins: []string{"src/bin/tool.rs"}}
	plan := Synthesize(manifest("demo"), pkgID("demo"), lay)

	libs := byRole(plan.Targets, RoleLib, "demo")
	bins := byRole(plan.Targets, RoleBin, "tool")
	if len(libs)+len(bins) != len(plan.Targets) {
		t.Fatalf("unexpected targets: %v", plan.Targets)
	}

	want := []profile.Env{profile.EnvDev, profile.EnvRelease, profile.EnvTest, profile.EnvDoc, profile.EnvBench}
	if diff := cmp.Diff(want, envs(libs)); diff != "" {
		t.Errorf("lib profiles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, envs(bins)); diff != "" {
		t.Errorf("bin profiles (-want +got):\n%s", diff)
	}

	meta := NewMetadata(pkgID("demo"))
	for _, b := range bins {
		if b.Path != filepath.Join(root, "src", "bin", "tool.rs") {
			t.Errorf("bin path = %q", b.Path)
		}
		switch {
		case b.Profile.Env == profile.EnvTest:
			if b.Metadata == nil || *b.Metadata != meta.Mix("bin-tool") {
				t.Errorf("test bin metadata = %v, want mix of bin-tool", b.Metadata)
			}
		case b.Profile.IsTest():
			// bench variant also runs the harness
		default:
			if b.Metadata != nil {
				t.Errorf("%s bin should carry no metadata, got %v", b.Profile.Env, b.Metadata)
			}
		}
	}
	for _, l := range libs {
		if diff := cmp.Diff([]CrateType{CrateLib}, l.CrateTypes); diff != "" {
			t.Errorf("crate types (-want +got):\n%s", diff)
		}
	}
	if len(plan.Warnings) != 0 {
		t.Errorf("warnings = %v", plan.Warnings)
	}
}

func TestSynthesize_DependencyVariants(t *testing.T) {
	lay := layout.Layout{Root: "/work/demo", Lib: "src/lib.rs", Tests: []string{"tests/it.rs"}}
	plan := Synthesize(manifest("demo"), pkgID("demo"), lay)
	assertUnique(t, plan.Targets)

	var runs, linkOnly bool
	for _, l := range byRole(plan.Targets, RoleLib, "demo") {
		if l.Profile.Env != profile.EnvTest {
			continue
		}
		if l.Profile.Test && l.Profile.Harness {
			runs = true
		}
		if !l.Profile.Test && !l.Profile.Harness {
			linkOnly = true
		}
	}
	if !runs || !linkOnly {
		t.Errorf("lib test variants: running=%v link-only=%v, want both", runs, linkOnly)
	}

	test := byRole(plan.Targets, RoleTest, "it")
	if len(test) != 1 {
		t.Fatalf("test targets = %v", test)
	}
	if test[0].Metadata == nil || *test[0].Metadata != NewMetadata(pkgID("demo")).Mix("test-it") {
		t.Errorf("test metadata = %v", test[0].Metadata)
	}
}

func TestSynthesize_NoDependencyVariantsWithoutConsumers(t *testing.T) {
	lay := layout.Layout{Root: "/work/demo", Lib: "src/lib.rs"}
	plan := Synthesize(manifest("demo"), pkgID("demo"), lay)
	if n := len(plan.Targets); n != 5 {
		t.Errorf("got %d targets, want 5: %v", n, plan.Targets)
	}
}

func TestSynthesize_BinOnlyGetsDependencyVariants(t *testing.T) {
	lay := layout.Layout{Root: "/work/demo", Bins: []string{"src/main.rs"}, Examples: []string{"examples/e.rs"}}
	plan := Synthesize(manifest("demo"), pkgID("demo"), lay)
	if n := len(byRole(plan.Targets, RoleBin, "demo")); n != 8 {
		t.Errorf("bin variants = %d, want 8", n)
	}
	ex := byRole(plan.Targets, RoleExample, "e")
	if len(ex) != 1 || ex[0].Profile.Test || ex[0].Profile.Env != profile.EnvTest || ex[0].Metadata != nil {
		t.Errorf("example = %v", ex)
	}
}

func TestSynthesize_UniqueUnderRandomOverrides(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	randOverride := func() *profile.Override {
		if rng.IntN(3) == 0 {
			return nil
		}
		o := &profile.Override{}
		if rng.IntN(2) == 0 {
			o.OptLevel = ptr(rng.IntN(4))
		}
		if rng.IntN(2) == 0 {
			o.CodegenUnits = ptr(rng.IntN(16))
		}
		if rng.IntN(2) == 0 {
			o.Debug = ptr(rng.IntN(2) == 0)
		}
		if rng.IntN(2) == 0 {
			o.Rpath = ptr(rng.IntN(2) == 0)
		}
		return o
	}
	flag := func() *bool {
		if rng.IntN(2) == 0 {
			return nil
		}
		return ptr(rng.IntN(2) == 0)
	}

	for i := range 200 {
		m := manifest("demo")
		m.Profiles = profile.Overrides{
			Dev: randOverride(), Release: randOverride(), Test: randOverride(),
			Doc: randOverride(), Bench: randOverride(),
		}
		m.Lib = &descriptor.LibSection{Targets: []descriptor.Target{{
			Name: "demo", Test: flag(), Doc: flag(), Bench: flag(), Doctest: flag(), Plugin: flag(),
		}}}
		m.Bins = []descriptor.Target{{Name: "demo", Test: flag()}, {Name: "tool", Bench: flag()}}
		lay := layout.Layout{
			Root:    "/work/demo",
			Lib:     "src/lib.rs",
			Bins:    []string{"src/main.rs"},
			Tests:   []string{"tests/demo.rs"},
			Benches: []string{"benches/demo.rs"},
		}
		if rng.IntN(2) == 0 {
			lay.Tests, lay.Benches = nil, nil
		}

		plan := Synthesize(m, pkgID("demo"), lay)
		seen := make(map[Key]bool)
		for _, tg := range plan.Targets {
			if seen[tg.Key()] {
				t.Fatalf("iteration %d: duplicate target %v", i, tg)
			}
			seen[tg.Key()] = true
		}
	}
}

func TestSynthesize_Plugin(t *testing.T) {
	m := manifest("demo")
	m.Lib = &descriptor.LibSection{Targets: []descriptor.Target{{Name: "demo", Plugin: ptr(true)}}}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: "/work/demo"})

	if len(plan.Targets) == 0 {
		t.Fatal("no targets")
	}
	for _, tg := range plan.Targets {
		if !tg.Profile.ForHost {
			t.Errorf("%v is not built for the host", tg)
		}
		if diff := cmp.Diff([]CrateType{CrateDylib}, tg.CrateTypes); diff != "" {
			t.Errorf("crate types (-want +got):\n%s", diff)
		}
		if tg.Path != filepath.Join("/work/demo", "src", "demo.rs") {
			t.Errorf("default lib path = %q", tg.Path)
		}
	}
}

func TestSynthesize_UnknownCrateType(t *testing.T) {
	m := manifest("demo")
	m.Lib = &descriptor.LibSection{Targets: []descriptor.Target{{Name: "demo", CrateTypes: []string{"rlib", "wasm"}}}}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: "/work/demo", Lib: "src/lib.rs"})
	if diff := cmp.Diff([]CrateType{CrateLib}, plan.Targets[0].CrateTypes); diff != "" {
		t.Errorf("crate types (-want +got):\n%s", diff)
	}
	if len(plan.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", plan.Warnings)
	}
}

func TestSynthesize_LibArrayDeprecated(t *testing.T) {
	m := manifest("demo")
	m.Lib = &descriptor.LibSection{Many: true, Targets: []descriptor.Target{{Name: "a"}, {Name: "b"}}}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: "/work/demo", Lib: "src/lib.rs"})

	if diff := cmp.Diff([]string{WarnLibArray}, plan.Warnings); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
	if len(byRole(plan.Targets, RoleLib, "b")) != 0 {
		t.Error("only the first [[lib]] entry should be built")
	}
	if libs := byRole(plan.Targets, RoleLib, "a"); len(libs) == 0 || libs[0].Path != filepath.Join("/work/demo", "src", "lib.rs") {
		t.Errorf("lib a = %v", libs)
	}
}

func TestSynthesize_ExplicitBinPaths(t *testing.T) {
	tests := []struct {
		name string
		bins []descriptor.Target
		lay  layout.Layout
		want map[string]string
	}{
		{
			name: "single pathless bin takes src/main.rs",
			bins: []descriptor.Target{{Name: "cli"}},
			lay:  layout.Layout{Bins: []string{"src/main.rs"}},
			want: map[string]string{"cli": "src/main.rs"},
		},
		{
			name: "package-named bin takes src/main.rs",
			bins: []descriptor.Target{{Name: "demo"}, {Name: "other"}},
			lay:  layout.Layout{Bins: []string{"src/main.rs", "src/bin/other.rs"}},
			want: map[string]string{"demo": "src/main.rs", "other": "src/bin/other.rs"},
		},
		{
			name: "discovered bin file wins",
			bins: []descriptor.Target{{Name: "tool"}},
			lay:  layout.Layout{Bins: []string{"src/main.rs", "src/bin/tool.rs"}},
			want: map[string]string{"tool": "src/bin/tool.rs"},
		},
		{
			name: "template with a library",
			bins: []descriptor.Target{{Name: "x"}, {Name: "y"}},
			lay:  layout.Layout{Lib: "src/lib.rs"},
			want: map[string]string{"x": "src/bin/x.rs", "y": "src/bin/y.rs"},
		},
		{
			name: "template without a library",
			bins: []descriptor.Target{{Name: "x"}},
			want: map[string]string{"x": "src/x.rs"},
		},
		{
			name: "explicit path kept",
			bins: []descriptor.Target{{Name: "x", Path: "tools/x.rs"}},
			lay:  layout.Layout{Bins: []string{"src/main.rs"}},
			want: map[string]string{"x": "tools/x.rs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.lay.Root = "/work/demo"
			m := manifest("demo")
			m.Bins = tt.bins
			plan := Synthesize(m, pkgID("demo"), tt.lay)

			got := make(map[string]string)
			for _, tg := range plan.Targets {
				if tg.Role != RoleBin {
					continue
				}
				rel, err := filepath.Rel("/work/demo", tg.Path)
				if err != nil {
					t.Fatal(err)
				}
				got[tg.Name] = filepath.ToSlash(rel)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bin paths (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSynthesize_InferredMainNamedAfterLib(t *testing.T) {
	m := manifest("demo")
	m.Lib = &descriptor.LibSection{Targets: []descriptor.Target{{Name: "demo_core"}}}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: "/work/demo", Bins: []string{"src/main.rs"}})
	if len(byRole(plan.Targets, RoleBin, "demo_core")) == 0 {
		t.Errorf("src/main.rs not named after the library: %v", plan.Targets)
	}
}

func TestSynthesize_InferredBinCollision(t *testing.T) {
	lay := layout.Layout{Root: "/work/demo", Bins: []string{"src/main.rs", "src/bin/demo.rs"}}
	plan := Synthesize(manifest("demo"), pkgID("demo"), lay)
	assertUnique(t, plan.Targets)
	if len(plan.Warnings) != 1 {
		t.Errorf("warnings = %v", plan.Warnings)
	}
}

func TestSynthesize_DefaultTestAndBenchPaths(t *testing.T) {
	m := manifest("demo")
	m.Tests = []descriptor.Target{{Name: "test"}, {Name: "it", Harness: ptr(false)}}
	m.Benches = []descriptor.Target{{Name: "bench"}, {Name: "speed"}}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: "/work/demo", Lib: "src/lib.rs"})

	paths := map[string]string{}
	for _, tg := range plan.Targets {
		if tg.Role == RoleTest || tg.Role == RoleBench {
			rel, _ := filepath.Rel("/work/demo", tg.Path)
			paths[tg.Role.String()+":"+tg.Name] = filepath.ToSlash(rel)
		}
	}
	want := map[string]string{
		"test:test":   "src/test.rs",
		"test:it":     "tests/it.rs",
		"bench:bench": "src/bench.rs",
		"bench:speed": "benches/speed.rs",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	if it := byRole(plan.Targets, RoleTest, "it"); it[0].Profile.Harness {
		t.Error("harness = false was ignored")
	}
}

func TestSynthesize_EmptyBenchListIsInferred(t *testing.T) {
	m := manifest("demo")
	m.Benches = []descriptor.Target{}
	m.Examples = []descriptor.Target{}
	lay := layout.Layout{Root: "/work/demo", Lib: "src/lib.rs", Benches: []string{"benches/b.rs"}, Examples: []string{"examples/e.rs"}}
	plan := Synthesize(m, pkgID("demo"), lay)
	if len(byRole(plan.Targets, RoleBench, "b")) != 1 {
		t.Error("empty bench list should fall back to discovered benches")
	}
	if len(byRole(plan.Targets, RoleExample, "e")) != 0 {
		t.Error("an explicit empty example list should disable inference")
	}
}

func TestSynthesize_NoTargets(t *testing.T) {
	plan := Synthesize(manifest("demo"), pkgID("demo"), layout.Layout{Root: "/work/demo"})
	if len(plan.Targets) != 0 {
		t.Errorf("targets = %v, want none", plan.Targets)
	}
}

func TestSynthesize_BuildScript(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "build.rs"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	m := manifest("demo")
	m.Package.Build = &descriptor.BuildCommand{Commands: []string{"build.rs"}}
	m.Profiles.Dev = &profile.Override{OptLevel: ptr(1)}
	plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: root, Lib: "src/lib.rs"})

	scripts := byRole(plan.Targets, RoleCustomBuild, "build-script-build")
	if len(scripts) != 1 {
		t.Fatalf("build scripts = %v", scripts)
	}
	want := profile.Profile{Env: profile.EnvDev, OptLevel: 1, Debug: true, Harness: true, ForHost: true, CustomBuild: true}
	if diff := cmp.Diff(want, scripts[0].Profile); diff != "" {
		t.Errorf("build script profile (-want +got):\n%s", diff)
	}
	if plan.LegacyBuild != nil || len(plan.Warnings) != 0 {
		t.Errorf("legacy = %v, warnings = %v", plan.LegacyBuild, plan.Warnings)
	}
}

func TestSynthesize_BuildScriptOnLayoutFS(t *testing.T) {
	lay := layout.Layout{
		Root: filepath.FromSlash("/work/demo"),
		Lib:  "src/lib.rs",
		FS:   fstest.MapFS{"src/lib.rs": {}, "tools/gen.rs": {}},
	}

	m := manifest("demo")
	m.Package.Build = &descriptor.BuildCommand{Commands: []string{"tools/gen.rs"}}
	plan := Synthesize(m, pkgID("demo"), lay)

	scripts := byRole(plan.Targets, RoleCustomBuild, "build-script-gen")
	if len(scripts) != 1 {
		t.Fatalf("build scripts = %v, warnings = %v", scripts, plan.Warnings)
	}
	if want := filepath.FromSlash("/work/demo/tools/gen.rs"); scripts[0].Path != want {
		t.Errorf("Path = %q, want %q", scripts[0].Path, want)
	}

	m.Package.Build = &descriptor.BuildCommand{Commands: []string{"build.rs"}}
	if plan := Synthesize(m, pkgID("demo"), lay); plan.LegacyBuild == nil {
		t.Error("a script missing from the layout filesystem should fall back to a legacy command")
	}
}

func TestSynthesize_LegacyBuild(t *testing.T) {
	tests := []struct {
		name  string
		build *descriptor.BuildCommand
	}{
		{"missing script", &descriptor.BuildCommand{Commands: []string{"build.rs"}}},
		{"shell command", &descriptor.BuildCommand{Commands: []string{"make"}}},
		{"command list", &descriptor.BuildCommand{Commands: []string{"make", "make install"}, Multiple: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifest("demo")
			m.Package.Build = tt.build
			plan := Synthesize(m, pkgID("demo"), layout.Layout{Root: t.TempDir(), Lib: "src/lib.rs"})

			if diff := cmp.Diff(tt.build.Commands, plan.LegacyBuild); diff != "" {
				t.Errorf("legacy commands (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(WarnLegacyBuild, plan.Warnings); diff != "" {
				t.Errorf("warnings (-want +got):\n%s", diff)
			}
			for _, tg := range plan.Targets {
				if tg.Role == RoleCustomBuild {
					t.Errorf("unexpected build script target %v", tg)
				}
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	a := NewMetadata(pkgID("demo"))
	b := NewMetadata(pkgID("demo"))
	if a != b {
		t.Error("metadata is not deterministic")
	}
	if a == NewMetadata(pkgID("other")) {
		t.Error("different packages share metadata")
	}
	if a.Mix("test") == a || a.Mix("test") == a.Mix("bin-test") {
		t.Error("mixing did not change the fingerprint")
	}
	if a.ExtraFilename != "-"+a.Metadata || len(a.Metadata) != 16 {
		t.Errorf("metadata = %+v", a)
	}
}
