package manifest

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/matzehuels/cratec/pkg/deps"
	"github.com/matzehuels/cratec/pkg/descriptor"
	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/layout"
	"github.com/matzehuels/cratec/pkg/source"
	"github.com/matzehuels/cratec/pkg/target"
	"github.com/matzehuels/cratec/pkg/tree"
)

// Output directories, relative to the package root.
const (
	TargetDir = "target"
	DocDir    = "doc"
)

// Options configures a compile.
type Options struct {
	Deps deps.Options
}

// Compile turns the raw bytes of <lay.Root>/Cargo.toml into a Manifest.
// src identifies where the package lives and decides how its path
// dependencies resolve. The second result lists the local dependency paths,
// as written in the manifest, that the caller should load next.
func Compile(contents []byte, src source.ID, lay layout.Layout, opts Options) (*Manifest, []string, error) {
	display := DisplayPath(filepath.Join(lay.Root, errors.ManifestFilename))

	if !utf8.Valid(contents) {
		return nil, nil, errors.New(errors.ErrCodeInvalidEncoding, "%s is not valid UTF-8", display)
	}

	root, err := tree.Parse(string(contents), display)
	if err != nil {
		return nil, nil, err
	}

	desc, used, err := descriptor.Decode(root)
	if err != nil {
		return nil, nil, invalid(display, err)
	}

	pkg := source.PackageID{Name: desc.Package.Name, Version: desc.Package.Version, Source: src}
	plan := target.Synthesize(desc, pkg, lay)

	r := deps.NewResolver(src, opts.Deps)
	if err := resolveAll(r, desc); err != nil {
		return nil, nil, invalid(display, err)
	}

	m := &Manifest{
		Package:      pkg,
		Targets:      plan.Targets,
		Dependencies: nonNil(r.Dependencies()),
		Features:     nonNil(desc.Features),
		TargetDir:    filepath.Join(lay.Root, TargetDir),
		DocDir:       filepath.Join(lay.Root, DocDir),
		LegacyBuild:  plan.LegacyBuild,
		Exclude:      nonNil(desc.Package.Exclude),
		Links:        desc.Package.Links,
		Metadata:     metadata(desc.Package),
		Warnings:     nonNil(plan.Warnings),
	}
	for _, key := range tree.Unused(root, used) {
		m.Warnings = append(m.Warnings, "unused manifest key: "+key)
	}

	if len(m.Targets) == 0 {
		return nil, nil, errors.New(errors.ErrCodeNoTargets, "either a [lib] or [[bin]] section must be present")
	}
	return m, r.NestedPaths(), nil
}

func resolveAll(r *deps.Resolver, desc *descriptor.Manifest) error {
	for _, g := range []struct {
		group []descriptor.NamedDependency
		kind  deps.Kind
	}{
		{desc.Dependencies, deps.KindNormal},
		{desc.DevDependencies, deps.KindDev},
		{desc.BuildDependencies, deps.KindBuild},
	} {
		if err := r.AddGroup(g.group, g.kind, ""); err != nil {
			return err
		}
	}
	for _, p := range desc.Platforms {
		if err := r.AddGroup(p.Dependencies, deps.KindNormal, p.Name); err != nil {
			return err
		}
	}
	return nil
}

func invalid(display string, err error) error {
	return errors.WrapPreserve(errors.ErrCodeInvalidManifest, err, "%s is not a valid manifest", display)
}

func metadata(p *descriptor.Package) Metadata {
	return Metadata{
		Authors:       nonNil(p.Authors),
		Description:   p.Description,
		Homepage:      p.Homepage,
		Documentation: p.Documentation,
		Readme:        p.Readme,
		Keywords:      nonNil(p.Keywords),
		License:       p.License,
		Repository:    p.Repository,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DisplayPath returns path relative to the working directory when it lies
// below it, and path unchanged otherwise.
func DisplayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return rel
}
