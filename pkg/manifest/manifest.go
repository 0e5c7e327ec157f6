// Package manifest compiles a package manifest into a build plan.
//
// [Compile] is the single entry point. It runs every stage in one pass:
//
//  1. UTF-8 validation of the raw bytes
//  2. TOML parsing into an ordered tree ([tree.Parse])
//  3. Decoding into typed descriptors ([descriptor.Decode])
//  4. Target synthesis and profile fan-out ([target.Synthesize])
//  5. Dependency source resolution ([deps.Resolver])
//  6. Unused-key warnings ([tree.Unused])
//
// Fatal problems abort the compile with a single coded error from
// [errors]; nothing partial is returned. Everything else, such as unused keys
// or deprecated shapes, is reported in [Manifest.Warnings].
//
// Compile does no I/O of its own beyond the existence check for a build
// script, so independent manifests may be compiled concurrently.
package manifest

import (
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratec/pkg/deps"
	"github.com/matzehuels/cratec/pkg/descriptor"
	"github.com/matzehuels/cratec/pkg/source"
	"github.com/matzehuels/cratec/pkg/target"
)

// Manifest is the compiled form of one package manifest. It is not modified
// after Compile returns.
type Manifest struct {
	Package      source.PackageID     `json:"package"`
	Targets      []target.Target      `json:"targets"`
	Dependencies []deps.Dependency    `json:"dependencies"`
	Features     []descriptor.Feature `json:"features"`
	TargetDir    string               `json:"target_dir"`
	DocDir       string               `json:"doc_dir"`
	LegacyBuild  []string             `json:"build,omitempty"`
	Exclude      []string             `json:"exclude"`
	Links        string               `json:"links,omitempty"`
	Metadata     Metadata             `json:"metadata"`
	Warnings     []string             `json:"warnings"`
}

// Metadata is the descriptive package information used for publishing.
type Metadata struct {
	Authors       []string `json:"authors"`
	Description   string   `json:"description,omitempty"`
	Homepage      string   `json:"homepage,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
	Readme        string   `json:"readme,omitempty"`
	Keywords      []string `json:"keywords"`
	License       string   `json:"license,omitempty"`
	Repository    string   `json:"repository,omitempty"`
}

// Name returns the package name.
func (m *Manifest) Name() string { return m.Package.Name }

// Version returns the package version.
func (m *Manifest) Version() *semver.Version { return m.Package.Version }

// Lib returns the library's dev-profile target, if the package has a library.
func (m *Manifest) Lib() (target.Target, bool) {
	for _, t := range m.Targets {
		if t.IsLib() {
			return t, true
		}
	}
	return target.Target{}, false
}

// TargetNames returns each distinct (role, name) pair once, in target order,
// formatted as "role:name".
func (m *Manifest) TargetNames() []string {
	var out []string
	for _, t := range m.Targets {
		key := t.Role.String() + ":" + t.Name
		if !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	return out
}

// DependenciesOf returns the dependencies of the given kind.
func (m *Manifest) DependenciesOf(kind deps.Kind) []deps.Dependency {
	var out []deps.Dependency
	for _, d := range m.Dependencies {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
