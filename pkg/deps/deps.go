package deps

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/source"
)

// Options configures dependency source resolution.
type Options struct {
	RegistryURL string // Index used for dependencies without git or path (default: crates.io index)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.RegistryURL == "" {
		opts.RegistryURL = source.DefaultRegistryURL
	}
	return opts
}

// Kind tags a dependency with the build phase that needs it.
type Kind int

const (
	KindNormal Kind = iota
	KindDev
	KindBuild
)

// String returns "normal", "dev" or "build".
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindDev:
		return "dev"
	case KindBuild:
		return "build"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Requirement is a parsed version requirement. The zero value matches any
// version.
type Requirement struct {
	Raw         string
	Constraints *semver.Constraints
}

// ParseRequirement parses a comma-separated requirement. Comparators with no
// operator ("1.2") are caret requirements, so "1.2" allows >=1.2.0, <2.0.0.
// An empty string yields the any-version requirement.
func ParseRequirement(raw string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return Requirement{Raw: raw}, nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		parts[i] = p
	}
	c, err := semver.NewConstraint(strings.Join(parts, ", "))
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Raw: raw, Constraints: c}, nil
}

// Any reports whether the requirement accepts every version.
func (r Requirement) Any() bool { return r.Constraints == nil }

// Matches reports whether v satisfies the requirement.
func (r Requirement) Matches(v *semver.Version) bool {
	if r.Constraints == nil {
		return true
	}
	return r.Constraints.Check(v)
}

// Equal compares requirements by their source text.
func (r Requirement) Equal(o Requirement) bool { return r.Raw == o.Raw }

// String returns the requirement as written, or "*" for any version.
func (r Requirement) String() string {
	if r.Raw == "" {
		return "*"
	}
	return r.Raw
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Dependency is one resolution-ready dependency edge.
type Dependency struct {
	Name            string      `json:"name"`
	Requirement     Requirement `json:"req"`
	Source          source.ID   `json:"source"`
	Features        []string    `json:"features"`
	DefaultFeatures bool        `json:"default_features"`
	Optional        bool        `json:"optional"`
	Kind            Kind        `json:"kind"`
	Platform        string      `json:"target,omitempty"` // "" means every platform
}

// String renders a one-line summary such as "serde ^1.0 (registry+...)".
func (d Dependency) String() string {
	s := fmt.Sprintf("%s %s (%s)", d.Name, d.Requirement, d.Source)
	if d.Kind != KindNormal {
		s += " [" + d.Kind.String() + "]"
	}
	if d.Platform != "" {
		s += " for " + d.Platform
	}
	return s
}

func invalidRequirement(name, raw string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidVersion, err,
		"invalid version requirement `%s` for the dependency `%s`", raw, name)
}
