package target

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cratec/pkg/descriptor"
	"github.com/matzehuels/cratec/pkg/layout"
	"github.com/matzehuels/cratec/pkg/profile"
	"github.com/matzehuels/cratec/pkg/source"
)

// Deprecation warnings.
const (
	WarnLibArray = "the [[lib]] section has been deprecated in favor of [lib]"
)

// WarnLegacyBuild is emitted, one line per entry, when package.build is an
// arbitrary command rather than a build script.
var WarnLegacyBuild = []string{
	"warning: an arbitrary build command has now been deprecated.",
	"         It has been replaced by custom build scripts.",
	"         For more information, see http://doc.crates.io/build-script.html",
}

// Plan is the outcome of target synthesis.
type Plan struct {
	Targets     []Target
	LegacyBuild []string // opaque build commands, nil when a build script is used
	Warnings    []string
}

// Synthesize computes the build targets of the package described by m, whose
// source files were discovered as lay. pkg supplies the identity used for
// metadata fingerprints. An empty Plan.Targets is not an error here; the
// caller decides whether a manifest without targets is acceptable.
func Synthesize(m *descriptor.Manifest, pkg source.PackageID, lay layout.Layout) Plan {
	s := &synth{
		m:        m,
		pkg:      pkg,
		lay:      lay,
		meta:     NewMetadata(pkg),
		profiles: m.Profiles,
	}
	s.run()
	return s.plan
}

type synth struct {
	m        *descriptor.Manifest
	pkg      source.PackageID
	lay      layout.Layout
	meta     Metadata
	profiles profile.Overrides
	plan     Plan
}

func (s *synth) warn(format string, args ...any) {
	s.plan.Warnings = append(s.plan.Warnings, fmt.Sprintf(format, args...))
}

func (s *synth) run() {
	lib := s.libDescriptor()
	bins := s.binDescriptors(lib)
	examples := s.inferred(s.m.Examples, s.lay.Examples)
	tests := s.inferred(s.m.Tests, s.lay.Tests)
	benches := s.m.Benches
	if len(benches) == 0 {
		benches = s.inferred(nil, s.lay.Benches)
	}
	needed := len(examples) > 0 || len(tests) > 0 || len(benches) > 0

	if lib != nil {
		s.libTargets(*lib, needed)
	}
	for _, b := range bins {
		s.binTargets(b, needed && lib == nil)
	}
	s.buildScript()
	for _, ex := range examples {
		s.exampleTarget(ex)
	}
	for _, t := range tests {
		s.testTarget(t)
	}
	for _, b := range benches {
		s.benchTarget(b)
	}
}

// libDescriptor returns the library to build, if any, with its path filled
// in from the layout when the manifest left it out.
func (s *synth) libDescriptor() *descriptor.Target {
	if s.m.Lib == nil {
		if s.lay.Lib == "" {
			return nil
		}
		return &descriptor.Target{Name: s.pkg.Name, Path: s.lay.Lib}
	}
	if s.m.Lib.Deprecated() {
		s.warn(WarnLibArray)
	}
	primary := s.m.Lib.Primary()
	if primary == nil {
		return nil
	}
	lib := *primary
	if lib.Path == "" {
		lib.Path = s.lay.Lib
	}
	if lib.Path == "" {
		lib.Path = "src/" + lib.Name + layout.SourceExt
	}
	return &lib
}

// binDescriptors fills in pathless binaries. src/main.rs goes to a binary
// named after the package, or to the only pathless binary that has no
// src/bin/<name>.rs of its own; the rest use src/bin/<name>.rs.
func (s *synth) binDescriptors(lib *descriptor.Target) []descriptor.Target {
	if s.m.Bins == nil {
		return s.inferredBins()
	}

	main, hasMain := s.lay.Main()
	pathless := 0
	for _, b := range s.m.Bins {
		if b.Path == "" {
			pathless++
		}
	}

	out := make([]descriptor.Target, 0, len(s.m.Bins))
	for _, b := range s.m.Bins {
		if b.Path == "" {
			inBinDir := layout.BinDir + "/" + b.Name + layout.SourceExt
			switch {
			case hasMain && (b.Name == s.pkg.Name || (pathless == 1 && !s.lay.Has(inBinDir))):
				b.Path = main
			case s.lay.Has(inBinDir) || lib != nil:
				b.Path = inBinDir
			default:
				b.Path = "src/" + b.Name + layout.SourceExt
			}
		}
		out = append(out, b)
	}
	return out
}

func (s *synth) inferredBins() []descriptor.Target {
	mainName := s.pkg.Name
	if lib := s.m.Lib.Primary(); lib != nil {
		mainName = lib.Name
	}

	out := make([]descriptor.Target, 0, len(s.lay.Bins))
	seen := make(map[string]string, len(s.lay.Bins))
	for _, p := range s.lay.Bins {
		name := layout.Stem(p)
		if p == layout.MainPath {
			name = mainName
		}
		if prev, ok := seen[name]; ok {
			s.warn("skipping `%s`: binary `%s` is already built from `%s`", p, name, prev)
			continue
		}
		seen[name] = p
		out = append(out, descriptor.Target{Name: name, Path: p})
	}
	return out
}

// inferred returns declared when the section exists, and one target per
// discovered file otherwise.
func (s *synth) inferred(declared []descriptor.Target, found []string) []descriptor.Target {
	if declared != nil {
		return declared
	}
	out := make([]descriptor.Target, 0, len(found))
	for _, p := range found {
		out = append(out, descriptor.Target{Name: layout.Stem(p), Path: p})
	}
	return out
}

// fanOut returns the profiles a lib or bin target is built under.
func (s *synth) fanOut(t descriptor.Target, needed bool) []profile.Profile {
	ov := s.profiles
	out := []profile.Profile{
		ov.Resolve(profile.Dev()),
		ov.Resolve(profile.Release()),
	}
	if descriptor.Flag(t.Test, true) {
		out = append(out, ov.Resolve(profile.Test()))
	}
	if descriptor.Flag(t.Doc, true) {
		out = append(out, ov.Resolve(profile.Doc().WithDoctest(descriptor.Flag(t.Doctest, true))))
	}
	if descriptor.Flag(t.Bench, true) {
		out = append(out, ov.Resolve(profile.Bench()))
	}
	if needed {
		out = append(out,
			ov.Resolve(profile.Test().WithTest(false).WithHarness(false)),
			ov.Resolve(profile.Doc().WithDoc(false)),
			ov.Resolve(profile.Bench().WithTest(false).WithHarness(false)),
		)
	}
	if descriptor.Flag(t.Plugin, false) {
		for i := range out {
			out[i] = out[i].ForHostOnly()
		}
	}
	return out
}

func (s *synth) crateTypes(lib descriptor.Target) []CrateType {
	def := CrateLib
	if descriptor.Flag(lib.Plugin, false) {
		def = CrateDylib
	}
	if len(lib.CrateTypes) == 0 {
		return []CrateType{def}
	}
	out := make([]CrateType, 0, len(lib.CrateTypes))
	for _, raw := range lib.CrateTypes {
		ct, ok := ParseCrateType(raw)
		if !ok {
			s.warn("unknown crate type `%s` for library `%s`, building `%s` instead", raw, lib.Name, def)
			return []CrateType{def}
		}
		out = append(out, ct)
	}
	return out
}

func (s *synth) libTargets(lib descriptor.Target, needed bool) {
	types := s.crateTypes(lib)
	path := s.lay.Abs(lib.Path)
	for _, p := range s.fanOut(lib, needed) {
		meta := s.meta
		if p.IsTest() {
			meta = meta.Mix("test")
		}
		s.add(Target{Name: lib.Name, Role: RoleLib, CrateTypes: types, Path: path, Profile: p, Metadata: &meta})
	}
}

func (s *synth) binTargets(bin descriptor.Target, needed bool) {
	path := s.lay.Abs(bin.Path)
	for _, p := range s.fanOut(bin, needed) {
		var meta *Metadata
		if p.IsTest() {
			m := s.meta.Mix("bin-" + bin.Name)
			meta = &m
		}
		s.add(Target{Name: bin.Name, Role: RoleBin, Path: path, Profile: p, Metadata: meta})
	}
}

func (s *synth) buildScript() {
	build := s.m.Package.Build
	if build == nil || len(build.Commands) == 0 {
		return
	}
	if cmd, ok := build.Single(); ok && strings.HasSuffix(cmd, layout.SourceExt) && s.lay.Exists(cmd) {
		p := profile.Merge(profile.Dev().ForHostOnly().AsCustomBuild(), s.profiles.Dev)
		s.add(Target{
			Name:    "build-script-" + layout.Stem(cmd),
			Role:    RoleCustomBuild,
			Path:    s.lay.Abs(cmd),
			Profile: p,
		})
		return
	}
	s.plan.LegacyBuild = append([]string(nil), build.Commands...)
	s.plan.Warnings = append(s.plan.Warnings, WarnLegacyBuild...)
}

func (s *synth) exampleTarget(ex descriptor.Target) {
	rel := ex.Path
	if rel == "" {
		rel = layout.Examples + "/" + ex.Name + layout.SourceExt
	}
	p := s.profiles.Resolve(profile.Test().WithTest(false))
	s.add(Target{Name: ex.Name, Role: RoleExample, Path: s.lay.Abs(rel), Profile: p})
}

func (s *synth) testTarget(t descriptor.Target) {
	rel := t.Path
	switch {
	case rel != "":
	case t.Name == "test":
		rel = "src/test.rs"
	default:
		rel = layout.Tests + "/" + t.Name + layout.SourceExt
	}
	p := s.profiles.Resolve(profile.Test().WithHarness(descriptor.Flag(t.Harness, true)))
	meta := s.meta.Mix("test-" + t.Name)
	s.add(Target{Name: t.Name, Role: RoleTest, Path: s.lay.Abs(rel), Profile: p, Metadata: &meta})
}

func (s *synth) benchTarget(b descriptor.Target) {
	rel := b.Path
	switch {
	case rel != "":
	case b.Name == "bench":
		rel = "src/bench.rs"
	default:
		rel = layout.Benches + "/" + b.Name + layout.SourceExt
	}
	p := s.profiles.Resolve(profile.Bench().WithHarness(descriptor.Flag(b.Harness, true)))
	meta := s.meta.Mix("bench-" + b.Name)
	s.add(Target{Name: b.Name, Role: RoleBench, Path: s.lay.Abs(rel), Profile: p, Metadata: &meta})
}

func (s *synth) add(t Target) {
	s.plan.Targets = append(s.plan.Targets, t)
}
