// Package descriptor maps a parsed manifest tree onto typed descriptors.
//
// The decoder is strict about shapes and lenient about presence: every field
// is optional unless the manifest cannot be understood without it (the
// package name and version). Alternate shapes the manifest format allows are
// kept as small sum types ([DependencySpec], [LibSection], [BuildCommand])
// that callers collapse with their Normalize-style accessors before use.
//
// Every leaf the decoder reads is recorded in a [tree.Paths] set returned
// alongside the descriptors, so that unread keys can be reported later.
package descriptor

import (
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratec/pkg/profile"
)

// Manifest is the typed form of a whole manifest file.
type Manifest struct {
	Package  *Package
	Profiles profile.Overrides

	// Lib is nil when no [lib] section is declared.
	Lib *LibSection

	// Target lists are nil when the section is absent. An empty, non-nil
	// list only arises for sections declared as empty arrays.
	Bins     []Target
	Examples []Target
	Tests    []Target
	Benches  []Target

	Dependencies      []NamedDependency
	DevDependencies   []NamedDependency
	BuildDependencies []NamedDependency
	Platforms         []Platform

	Features []Feature
}

// Package describes the [package] (or legacy [project]) section.
type Package struct {
	Name    string
	Version *semver.Version
	Authors []string
	Build   *BuildCommand
	Links   string
	Exclude []string

	Description   string
	Homepage      string
	Documentation string
	Readme        string
	Keywords      []string
	License       string
	Repository    string
}

// BuildCommand is the package.build field: a single command or, in the
// legacy shape, a list of commands.
type BuildCommand struct {
	Commands []string
	Multiple bool
}

// Single returns the command when exactly one was given in the string form.
func (b *BuildCommand) Single() (string, bool) {
	if b == nil || b.Multiple || len(b.Commands) != 1 {
		return "", false
	}
	return b.Commands[0], true
}

// LibSection is either a [lib] table or a legacy [[lib]] array.
type LibSection struct {
	Targets []Target
	Many    bool
}

// Deprecated reports whether the legacy array shape was used.
func (l *LibSection) Deprecated() bool { return l != nil && l.Many }

// Primary returns the library target. Only the first entry of a legacy
// array is built.
func (l *LibSection) Primary() *Target {
	if l == nil || len(l.Targets) == 0 {
		return nil
	}
	return &l.Targets[0]
}

// Target is one declared [lib], [[bin]], [[example]], [[test]] or [[bench]]
// entry. Nil flags were not set in the manifest.
type Target struct {
	Name       string
	Path       string
	CrateTypes []string // lib only

	Test    *bool
	Doctest *bool
	Bench   *bool
	Doc     *bool
	Plugin  *bool
	Harness *bool
}

// Flag returns *p, or def when the flag was not set.
func Flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// NamedDependency keeps a dependency's declared name next to its spec, in
// declaration order.
type NamedDependency struct {
	Name string
	Spec DependencySpec
}

// DependencySpec is either the shorthand requirement string or a detailed
// table. Exactly one of Version and Detail is meaningful: Detail wins when
// set.
type DependencySpec struct {
	Version string
	Detail  *DetailedDependency
}

// Normalize collapses the shorthand into the detailed shape.
func (s DependencySpec) Normalize() DetailedDependency {
	if s.Detail != nil {
		return *s.Detail
	}
	return DetailedDependency{Version: s.Version}
}

// DetailedDependency is the table form of a dependency. Empty strings and
// nil pointers mean the field was absent.
type DetailedDependency struct {
	Version string
	Path    string
	Git     string
	Branch  string
	Tag     string
	Rev     string

	Features        []string
	Optional        *bool
	DefaultFeatures *bool
}

// Platform is a target.<name> section carrying platform-specific
// dependencies.
type Platform struct {
	Name         string
	Dependencies []NamedDependency
}

// Feature is one [features] entry.
type Feature struct {
	Name     string   `json:"name"`
	Requires []string `json:"requires"`
}
