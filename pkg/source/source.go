// Package source identifies where a package's code comes from.
//
// An [ID] is one of three kinds:
//
//   - registry: the canonical package index ([Registry] or [ForRegistry])
//   - git: a remote repository plus a reference ([ForGit])
//   - path: a directory on the local filesystem ([ForPath])
//
// IDs are small comparable values; two IDs are equal exactly when their kind,
// location and reference match, so they can be compared with == and used as
// map keys.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/matzehuels/cratec/pkg/errors"
)

// DefaultRegistryURL is the location of the central package index.
const DefaultRegistryURL = "https://github.com/rust-lang/crates.io-index"

// DefaultReference is the git reference used when a dependency names none
// of branch, tag or rev.
const DefaultReference = "master"

// Kind distinguishes the three source variants.
type Kind int

const (
	KindRegistry Kind = iota
	KindGit
	KindPath
)

// String returns the URL-scheme-like prefix used in [ID.String].
func (k Kind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindGit:
		return "git"
	case KindPath:
		return "path"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ID is the resolved identity of a package source.
type ID struct {
	kind      Kind
	location  string
	reference string
}

// Registry returns the ID of the default central registry.
func Registry() ID { return ForRegistry(DefaultRegistryURL) }

// ForRegistry returns a registry ID for the index at url.
func ForRegistry(url string) ID {
	return ID{kind: KindRegistry, location: url}
}

// ForPath returns a path ID for dir. The directory is cleaned but not made
// absolute; callers decide what it is relative to.
func ForPath(dir string) ID {
	return ID{kind: KindPath, location: filepath.Clean(dir)}
}

// ForGit returns a git ID for the remote at rawURL checked out at ref.
// The URL is parsed with go-git's endpoint parser and stored in canonical
// form. Bare relative paths and unparseable URLs are rejected with an
// INVALID_SOURCE error.
func ForGit(rawURL, ref string) (ID, error) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return ID{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "invalid git url `%s`", rawURL)
	}
	if ep.Protocol == "file" && !strings.HasPrefix(rawURL, "file://") {
		return ID{}, errors.New(errors.ErrCodeInvalidSource, "invalid git url `%s`: relative URL without a base", rawURL)
	}
	if ep.Protocol != "file" && ep.Host == "" {
		return ID{}, errors.New(errors.ErrCodeInvalidSource, "invalid git url `%s`: missing host", rawURL)
	}
	if ref == "" {
		ref = DefaultReference
	}
	return ID{kind: KindGit, location: ep.String(), reference: ref}, nil
}

// Kind returns the source variant.
func (id ID) Kind() Kind { return id.kind }

// Location returns the registry URL, git URL or directory.
func (id ID) Location() string { return id.location }

// Reference returns the git reference, or "" for other kinds.
func (id ID) Reference() string { return id.reference }

// IsRegistry reports whether id is a registry source.
func (id ID) IsRegistry() bool { return id.kind == KindRegistry }

// IsGit reports whether id is a git source.
func (id ID) IsGit() bool { return id.kind == KindGit }

// IsPath reports whether id is a local path source.
func (id ID) IsPath() bool { return id.kind == KindPath }

// IsZero reports whether id was never constructed.
func (id ID) IsZero() bool { return id == ID{} }

// Equal reports whether id and o name the same source.
func (id ID) Equal(o ID) bool { return id == o }

// Join resolves a path dependency declared by the package at id. A path
// source yields a path source for dir relative to its own directory; any
// other source yields itself, since the dependency ships inside the same
// registry package or git checkout.
func (id ID) Join(dir string) ID {
	if id.kind != KindPath {
		return id
	}
	if filepath.IsAbs(dir) {
		return ForPath(dir)
	}
	return ForPath(filepath.Join(id.location, dir))
}

// String renders the ID as kind+location, with ?ref= for git sources.
func (id ID) String() string {
	if id.kind == KindGit {
		return fmt.Sprintf("%s+%s?ref=%s", id.kind, id.location, id.reference)
	}
	return fmt.Sprintf("%s+%s", id.kind, id.location)
}

// MarshalText implements encoding.TextMarshaler for JSON export.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// PackageID identifies one version of a package at one source.
type PackageID struct {
	Name    string          `json:"name"`
	Version *semver.Version `json:"version"`
	Source  ID              `json:"source"`
}

// String renders the package as "name version (source)".
func (p PackageID) String() string {
	v := "?"
	if p.Version != nil {
		v = p.Version.String()
	}
	return fmt.Sprintf("%s v%s (%s)", p.Name, v, p.Source)
}
