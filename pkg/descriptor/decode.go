package descriptor

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/profile"
	"github.com/matzehuels/cratec/pkg/tree"
)

// Decode converts a parsed manifest into descriptors. It returns the set of
// leaf paths it consumed; anything in root outside that set was ignored.
//
// Shape mismatches are INVALID_MANIFEST errors naming the dotted key path.
// A malformed package.version is INVALID_VERSION, and a manifest with
// neither [package] nor [project] is MISSING_PACKAGE.
func Decode(root *tree.Table) (*Manifest, tree.Paths, error) {
	d := &decoder{used: make(tree.Paths)}
	m, err := d.manifest(root)
	if err != nil {
		return nil, nil, err
	}
	return m, d.used, nil
}

type decoder struct {
	used tree.Paths
}

// alternate returns the other spelling of a key that may be written with
// dashes or underscores.
func alternate(key string) string {
	switch {
	case strings.Contains(key, "-"):
		return strings.ReplaceAll(key, "-", "_")
	case strings.Contains(key, "_"):
		return strings.ReplaceAll(key, "_", "-")
	}
	return ""
}

// field looks key up in t, falling back to its alternate spelling, and
// returns the value with the dotted path of the spelling actually found.
func field(t *tree.Table, path, key string) (any, string, bool) {
	if v, ok := t.Get(key); ok {
		return v, tree.Join(path, key), true
	}
	if alt := alternate(key); alt != "" {
		if v, ok := t.Get(alt); ok {
			return v, tree.Join(path, alt), true
		}
	}
	return nil, "", false
}

func typeError(path, want string, v any) error {
	return errors.New(errors.ErrCodeInvalidManifest,
		"expected %s for the key `%s`, found %s", want, path, describe(v))
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case *tree.Table:
		return "a table"
	default:
		return "a datetime"
	}
}

func (d *decoder) str(t *tree.Table, path, key string) (string, bool, error) {
	v, p, ok := field(t, path, key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, typeError(p, "a string", v)
	}
	d.used.Mark(p)
	return s, true, nil
}

func (d *decoder) boolean(t *tree.Table, path, key string) (*bool, error) {
	v, p, ok := field(t, path, key)
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, typeError(p, "a boolean", v)
	}
	d.used.Mark(p)
	return &b, nil
}

func (d *decoder) natural(t *tree.Table, path, key string) (*int, error) {
	v, p, ok := field(t, path, key)
	if !ok {
		return nil, nil
	}
	n, ok := v.(int64)
	if !ok || n < 0 {
		return nil, typeError(p, "a non-negative integer", v)
	}
	d.used.Mark(p)
	i := int(n)
	return &i, nil
}

func (d *decoder) strs(t *tree.Table, path, key string) ([]string, bool, error) {
	v, p, ok := field(t, path, key)
	if !ok {
		return nil, false, nil
	}
	out, err := d.stringList(p, v)
	return out, err == nil, err
}

func (d *decoder) stringList(path string, v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, typeError(path, "an array of strings", v)
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, typeError(path, "an array of strings", v)
		}
		out = append(out, s)
	}
	d.used.Mark(path)
	return out, nil
}

func (d *decoder) table(t *tree.Table, path, key string) (*tree.Table, string, error) {
	v, p, ok := field(t, path, key)
	if !ok {
		return nil, "", nil
	}
	sub, ok := v.(*tree.Table)
	if !ok {
		return nil, "", typeError(p, "a table", v)
	}
	return sub, p, nil
}

func (d *decoder) manifest(root *tree.Table) (*Manifest, error) {
	m := &Manifest{}

	var pkg, project *Package
	var err error
	if pkg, err = d.packageSection(root, "package"); err != nil {
		return nil, err
	}
	if project, err = d.packageSection(root, "project"); err != nil {
		return nil, err
	}
	switch {
	case project != nil:
		m.Package = project
	case pkg != nil:
		m.Package = pkg
	default:
		return nil, errors.New(errors.ErrCodeMissingPackage, "No `package` or `project` section found.")
	}

	if m.Profiles, err = d.profiles(root); err != nil {
		return nil, err
	}
	if m.Lib, err = d.lib(root); err != nil {
		return nil, err
	}
	if m.Bins, err = d.targets(root, "bin"); err != nil {
		return nil, err
	}
	if m.Examples, err = d.targets(root, "example"); err != nil {
		return nil, err
	}
	if m.Tests, err = d.targets(root, "test"); err != nil {
		return nil, err
	}
	if m.Benches, err = d.targets(root, "bench"); err != nil {
		return nil, err
	}

	if m.Dependencies, err = d.dependencies(root, "", "dependencies"); err != nil {
		return nil, err
	}
	if m.DevDependencies, err = d.dependencies(root, "", "dev-dependencies"); err != nil {
		return nil, err
	}
	if m.BuildDependencies, err = d.dependencies(root, "", "build-dependencies"); err != nil {
		return nil, err
	}
	if m.Platforms, err = d.platforms(root); err != nil {
		return nil, err
	}
	if m.Features, err = d.features(root); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *decoder) packageSection(root *tree.Table, key string) (*Package, error) {
	t, path, err := d.table(root, "", key)
	if err != nil || t == nil {
		return nil, err
	}

	p := &Package{}
	name, ok, err := d.str(t, path, "name")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "missing field `name` in `%s`", path)
	}
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	p.Name = name

	raw, ok, err := d.str(t, path, "version")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "missing field `version` in `%s`", path)
	}
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err,
			"invalid version `%s` for the key `%s`", raw, tree.Join(path, "version"))
	}
	p.Version = v

	if p.Authors, _, err = d.strs(t, path, "authors"); err != nil {
		return nil, err
	}
	if p.Build, err = d.buildCommand(t, path); err != nil {
		return nil, err
	}
	if p.Exclude, _, err = d.strs(t, path, "exclude"); err != nil {
		return nil, err
	}
	if p.Keywords, _, err = d.strs(t, path, "keywords"); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		key string
		dst *string
	}{
		{"links", &p.Links},
		{"description", &p.Description},
		{"homepage", &p.Homepage},
		{"documentation", &p.Documentation},
		{"readme", &p.Readme},
		{"license", &p.License},
		{"repository", &p.Repository},
	} {
		if *f.dst, _, err = d.str(t, path, f.key); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (d *decoder) buildCommand(t *tree.Table, path string) (*BuildCommand, error) {
	v, p, ok := field(t, path, "build")
	if !ok {
		return nil, nil
	}
	switch v := v.(type) {
	case string:
		d.used.Mark(p)
		return &BuildCommand{Commands: []string{v}}, nil
	case []any:
		cmds, err := d.stringList(p, v)
		if err != nil {
			return nil, err
		}
		return &BuildCommand{Commands: cmds, Multiple: true}, nil
	default:
		return nil, typeError(p, "a string or an array of strings", v)
	}
}

func (d *decoder) profiles(root *tree.Table) (profile.Overrides, error) {
	var out profile.Overrides
	t, path, err := d.table(root, "", "profile")
	if err != nil || t == nil {
		return out, err
	}
	for _, kind := range []struct {
		key string
		dst **profile.Override
	}{
		{"dev", &out.Dev},
		{"release", &out.Release},
		{"test", &out.Test},
		{"doc", &out.Doc},
		{"bench", &out.Bench},
	} {
		sub, p, err := d.table(t, path, kind.key)
		if err != nil {
			return out, err
		}
		if sub == nil {
			continue
		}
		o := &profile.Override{}
		if o.OptLevel, err = d.natural(sub, p, "opt-level"); err != nil {
			return out, err
		}
		if o.CodegenUnits, err = d.natural(sub, p, "codegen-units"); err != nil {
			return out, err
		}
		if o.Debug, err = d.boolean(sub, p, "debug"); err != nil {
			return out, err
		}
		if o.Rpath, err = d.boolean(sub, p, "rpath"); err != nil {
			return out, err
		}
		*kind.dst = o
	}
	return out, nil
}

func (d *decoder) lib(root *tree.Table) (*LibSection, error) {
	v, path, ok := field(root, "", "lib")
	if !ok {
		return nil, nil
	}
	switch v := v.(type) {
	case *tree.Table:
		t, err := d.target(v, path, true)
		if err != nil {
			return nil, err
		}
		return &LibSection{Targets: []Target{t}}, nil
	case []any:
		targets, err := d.targetList(v, path, true)
		if err != nil {
			return nil, err
		}
		return &LibSection{Targets: targets, Many: true}, nil
	default:
		return nil, typeError(path, "a table or an array of tables", v)
	}
}

func (d *decoder) targets(root *tree.Table, key string) ([]Target, error) {
	v, path, ok := field(root, "", key)
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, typeError(path, "an array of tables", v)
	}
	return d.targetList(arr, path, false)
}

func (d *decoder) targetList(arr []any, path string, lib bool) ([]Target, error) {
	out := make([]Target, 0, len(arr))
	seen := make(map[string]bool, len(arr))
	for _, e := range arr {
		t, ok := e.(*tree.Table)
		if !ok {
			return nil, typeError(path, "an array of tables", arr)
		}
		target, err := d.target(t, path, lib)
		if err != nil {
			return nil, err
		}
		if seen[target.Name] {
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"duplicate target name `%s` in `%s`", target.Name, path)
		}
		seen[target.Name] = true
		out = append(out, target)
	}
	return out, nil
}

func (d *decoder) target(t *tree.Table, path string, lib bool) (Target, error) {
	var out Target
	name, ok, err := d.str(t, path, "name")
	if err != nil {
		return out, err
	}
	if !ok {
		return out, errors.New(errors.ErrCodeInvalidManifest, "missing field `name` in `%s`", path)
	}
	if err := errors.ValidateTargetName(name); err != nil {
		return out, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid name for the key `%s`", tree.Join(path, "name"))
	}
	out.Name = name

	if out.Path, _, err = d.str(t, path, "path"); err != nil {
		return out, err
	}
	if lib {
		if out.CrateTypes, _, err = d.strs(t, path, "crate-type"); err != nil {
			return out, err
		}
	}
	for _, f := range []struct {
		key string
		dst **bool
	}{
		{"test", &out.Test},
		{"doctest", &out.Doctest},
		{"bench", &out.Bench},
		{"doc", &out.Doc},
		{"plugin", &out.Plugin},
		{"harness", &out.Harness},
	} {
		if *f.dst, err = d.boolean(t, path, f.key); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (d *decoder) dependencies(t *tree.Table, path, key string) ([]NamedDependency, error) {
	deps, p, err := d.table(t, path, key)
	if err != nil || deps == nil {
		return nil, err
	}
	out := make([]NamedDependency, 0, deps.Len())
	for _, name := range deps.Keys() {
		v, _ := deps.Get(name)
		spec, err := d.dependency(v, tree.Join(p, name))
		if err != nil {
			return nil, err
		}
		out = append(out, NamedDependency{Name: name, Spec: spec})
	}
	return out, nil
}

func (d *decoder) dependency(v any, path string) (DependencySpec, error) {
	switch v := v.(type) {
	case string:
		d.used.Mark(path)
		return DependencySpec{Version: v}, nil
	case *tree.Table:
		det := &DetailedDependency{}
		var err error
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"version", &det.Version},
			{"path", &det.Path},
			{"git", &det.Git},
			{"branch", &det.Branch},
			{"tag", &det.Tag},
			{"rev", &det.Rev},
		} {
			if *f.dst, _, err = d.str(v, path, f.key); err != nil {
				return DependencySpec{}, err
			}
		}
		if det.Features, _, err = d.strs(v, path, "features"); err != nil {
			return DependencySpec{}, err
		}
		if det.Optional, err = d.boolean(v, path, "optional"); err != nil {
			return DependencySpec{}, err
		}
		if det.DefaultFeatures, err = d.boolean(v, path, "default-features"); err != nil {
			return DependencySpec{}, err
		}
		return DependencySpec{Detail: det}, nil
	default:
		return DependencySpec{}, typeError(path, "a version string or a dependency table", v)
	}
}

func (d *decoder) platforms(root *tree.Table) ([]Platform, error) {
	t, path, err := d.table(root, "", "target")
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]Platform, 0, t.Len())
	for _, name := range t.Keys() {
		v, _ := t.Get(name)
		sub, ok := v.(*tree.Table)
		if !ok {
			return nil, typeError(tree.Join(path, name), "a table", v)
		}
		deps, err := d.dependencies(sub, tree.Join(path, name), "dependencies")
		if err != nil {
			return nil, err
		}
		out = append(out, Platform{Name: name, Dependencies: deps})
	}
	return out, nil
}

func (d *decoder) features(root *tree.Table) ([]Feature, error) {
	t, path, err := d.table(root, "", "features")
	if err != nil || t == nil {
		return nil, err
	}
	out := make([]Feature, 0, t.Len())
	for _, name := range t.Keys() {
		v, _ := t.Get(name)
		reqs, err := d.stringList(tree.Join(path, name), v)
		if err != nil {
			return nil, err
		}
		out = append(out, Feature{Name: name, Requires: reqs})
	}
	return out, nil
}
