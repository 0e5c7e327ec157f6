// Package target synthesizes the final build targets of a package.
//
// [Synthesize] reconciles three inputs: the targets a manifest declares, the
// source files a [layout.Layout] discovered, and the manifest's profile
// overrides. Each declared or inferred target fans out into one [Target] per
// applicable [profile.Profile], and targets that would otherwise produce
// identically named artifacts are told apart by a [Metadata] fingerprint.
//
// The result never contains two targets with the same name, role and profile.
package target

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cratec/pkg/profile"
)

// Role is the kind of artifact a target produces.
type Role int

const (
	RoleLib Role = iota
	RoleBin
	RoleExample
	RoleTest
	RoleBench
	RoleCustomBuild
)

var roleNames = [...]string{"lib", "bin", "example", "test", "bench", "custom-build"}

// String returns the role name used in output ("lib", "bin", ...).
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// CrateType is a kind of library artifact.
type CrateType string

const (
	CrateLib       CrateType = "lib"
	CrateRlib      CrateType = "rlib"
	CrateDylib     CrateType = "dylib"
	CrateStaticlib CrateType = "staticlib"
)

// ParseCrateType recognizes a crate-type string.
func ParseCrateType(s string) (CrateType, bool) {
	switch t := CrateType(s); t {
	case CrateLib, CrateRlib, CrateDylib, CrateStaticlib:
		return t, true
	}
	return "", false
}

// Target is one artifact built under one profile.
type Target struct {
	Name       string          `json:"name"`
	Role       Role            `json:"kind"`
	CrateTypes []CrateType     `json:"crate_types,omitempty"`
	Path       string          `json:"src_path"`
	Profile    profile.Profile `json:"profile"`
	Metadata   *Metadata       `json:"metadata,omitempty"`
}

// Key identifies a target for collision checks.
type Key struct {
	Name    string
	Role    Role
	Profile profile.Profile
}

// Key returns the identity of t.
func (t Target) Key() Key { return Key{Name: t.Name, Role: t.Role, Profile: t.Profile} }

// IsLib reports whether t is the library.
func (t Target) IsLib() bool { return t.Role == RoleLib }

// String renders a compact description such as "bin:tool test[...]".
func (t Target) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s %s", t.Role, t.Name, t.Profile)
	if t.Metadata != nil {
		b.WriteString(" " + t.Metadata.Metadata)
	}
	return b.String()
}
