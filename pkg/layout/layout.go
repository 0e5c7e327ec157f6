// Package layout discovers a package's source files from directory
// conventions.
//
// A [Layout] lists candidate entry points relative to the package root, using
// forward slashes. The conventional locations are:
//
//	src/lib.rs          library entry point
//	src/main.rs         primary executable
//	src/bin/*.rs        additional executables
//	examples/*.rs       examples
//	tests/*.rs          integration tests
//	benches/*.rs        benchmarks
//
// Target synthesis consumes a Layout through the [Provider] interface so that
// tests can supply layouts without touching the filesystem.
package layout

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Conventional relative paths.
const (
	LibPath  = "src/lib.rs"
	MainPath = "src/main.rs"
	BinDir   = "src/bin"
	Examples = "examples"
	Tests    = "tests"
	Benches  = "benches"
)

// SourceExt is the extension of compilable source files.
const SourceExt = ".rs"

// Layout is the set of source files found under a package root.
type Layout struct {
	Root     string   // absolute package directory
	Lib      string   // "" when there is no library entry point
	Bins     []string // src/main.rs first, then src/bin/*.rs sorted
	Examples []string
	Tests    []string
	Benches  []string

	// FS is the filesystem the layout was discovered on, rooted at Root.
	// Nil means the operating system's filesystem.
	FS fs.FS `json:"-"`
}

// Main returns src/main.rs if the layout has it.
func (l Layout) Main() (string, bool) {
	if slices.Contains(l.Bins, MainPath) {
		return MainPath, true
	}
	return "", false
}

// Has reports whether rel was discovered in any category.
func (l Layout) Has(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	if l.Lib == rel {
		return true
	}
	for _, list := range [][]string{l.Bins, l.Examples, l.Tests, l.Benches} {
		if slices.Contains(list, rel) {
			return true
		}
	}
	return false
}

// Abs resolves a root-relative path against the layout root.
func (l Layout) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// Stem returns the file name of rel without its extension.
func Stem(rel string) string {
	base := path.Base(filepath.ToSlash(rel))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Provider discovers the layout of a package rooted at a directory.
type Provider interface {
	Discover(root string) (Layout, error)
}

// Conventional discovers layouts on a filesystem. The zero value reads the
// operating system's filesystem.
type Conventional struct {
	// FS overrides the filesystem, rooted so that root paths passed to
	// Discover are resolved relative to it. Used by tests with fstest.MapFS.
	FS fs.FS
}

// Discover scans root for conventional entry points. Missing directories are
// not errors; they simply contribute nothing.
func (c Conventional) Discover(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, err
	}
	fsys := c.FS
	if fsys == nil {
		fsys = os.DirFS(abs)
	}

	l := Layout{Root: abs, FS: c.FS}
	if isFile(fsys, LibPath) {
		l.Lib = LibPath
	}
	if isFile(fsys, MainPath) {
		l.Bins = append(l.Bins, MainPath)
	}
	l.Bins = append(l.Bins, sources(fsys, BinDir)...)
	l.Examples = sources(fsys, Examples)
	l.Tests = sources(fsys, Tests)
	l.Benches = sources(fsys, Benches)
	return l, nil
}

// Exists reports whether rel names a regular file under the layout root.
func (l Layout) Exists(rel string) bool {
	if l.FS == nil || filepath.IsAbs(rel) {
		info, err := os.Stat(l.Abs(rel))
		return err == nil && info.Mode().IsRegular()
	}
	name := path.Clean(filepath.ToSlash(rel))
	if !fs.ValidPath(name) {
		return false
	}
	return isFile(l.FS, name)
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}

func sources(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != SourceExt {
			continue
		}
		out = append(out, path.Join(dir, e.Name()))
	}
	return out
}
