package deps

import (
	"github.com/matzehuels/cratec/pkg/descriptor"
	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/source"
)

// Resolver turns declared dependencies into [Dependency] records for one
// manifest. It accumulates the records and the local paths that need to be
// loaded next, so a Resolver must not be shared between compiles.
type Resolver struct {
	self     source.ID
	registry source.ID

	deps   []Dependency
	nested []string
	seen   map[string]bool
}

// NewResolver creates a Resolver for a manifest that lives at self.
func NewResolver(self source.ID, opts Options) *Resolver {
	opts = opts.WithDefaults()
	return &Resolver{
		self:     self,
		registry: source.ForRegistry(opts.RegistryURL),
		seen:     make(map[string]bool),
	}
}

// AddGroup resolves every dependency of one manifest section in declaration
// order. platform is "" outside target.<platform>.dependencies.
func (r *Resolver) AddGroup(group []descriptor.NamedDependency, kind Kind, platform string) error {
	for _, nd := range group {
		if err := r.Add(nd.Name, nd.Spec, kind, platform); err != nil {
			return err
		}
	}
	return nil
}

// Add resolves a single dependency and records it.
func (r *Resolver) Add(name string, spec descriptor.DependencySpec, kind Kind, platform string) error {
	d := spec.Normalize()

	src, err := r.sourceFor(name, d)
	if err != nil {
		return err
	}

	req, err := ParseRequirement(d.Version)
	if err != nil {
		return invalidRequirement(name, d.Version, err)
	}

	features := d.Features
	if features == nil {
		features = []string{}
	}

	r.deps = append(r.deps, Dependency{
		Name:            name,
		Requirement:     req,
		Source:          src,
		Features:        features,
		DefaultFeatures: descriptor.Flag(d.DefaultFeatures, true),
		Optional:        descriptor.Flag(d.Optional, false),
		Kind:            kind,
		Platform:        platform,
	})
	return nil
}

// Reference picks the git reference for d: branch, then tag, then rev,
// falling back to [source.DefaultReference].
func Reference(d descriptor.DetailedDependency) string {
	switch {
	case d.Branch != "":
		return d.Branch
	case d.Tag != "":
		return d.Tag
	case d.Rev != "":
		return d.Rev
	default:
		return source.DefaultReference
	}
}

func (r *Resolver) sourceFor(name string, d descriptor.DetailedDependency) (source.ID, error) {
	switch {
	case d.Git != "":
		id, err := source.ForGit(d.Git, Reference(d))
		if err != nil {
			return source.ID{}, errors.WrapPreserve(errors.ErrCodeInvalidSource, err,
				"failed to resolve the source of the dependency `%s`", name)
		}
		return id, nil
	case d.Path != "":
		if !r.seen[d.Path] {
			r.seen[d.Path] = true
			r.nested = append(r.nested, d.Path)
		}
		return r.self.Join(d.Path), nil
	default:
		return r.registry, nil
	}
}

// Dependencies returns the records added so far, in declaration order.
func (r *Resolver) Dependencies() []Dependency { return r.deps }

// NestedPaths returns each distinct local dependency path, as written in the
// manifest, in the order first seen.
func (r *Resolver) NestedPaths() []string { return r.nested }
