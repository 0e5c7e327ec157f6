// Package pipeline loads packages from disk and compiles their manifests.
//
// A [Runner] does the I/O that [manifest.Compile] leaves to its caller:
// reading Cargo.toml, discovering the source layout and following local path
// dependencies. Both CLI commands and tests go through it.
//
// # Usage
//
// Compile a single package:
//
//	runner := pipeline.NewRunner(pipeline.Options{}, logger)
//	pkg, err := runner.Load(ctx, "./my-crate")
//
// Compile a package and every local package it reaches through path
// dependencies, compiling each frontier in parallel:
//
//	res, err := runner.LoadGraph(ctx, "./my-crate")
//	for _, pkg := range res.Packages { // dependencies first
//	    fmt.Println(pkg.Manifest.Name())
//	}
//
// A cycle among path dependencies fails the load with DEPENDENCY_CYCLE.
package pipeline

import (
	"time"

	"github.com/matzehuels/cratec/pkg/dag"
	"github.com/matzehuels/cratec/pkg/layout"
	"github.com/matzehuels/cratec/pkg/manifest"
)

// DefaultJobs is the number of manifests compiled concurrently by
// [Runner.LoadGraph] when Options.Jobs is unset.
const DefaultJobs = 4

// Options configures a [Runner].
type Options struct {
	// Manifest is passed through to every compile.
	Manifest manifest.Options

	// Jobs bounds concurrent compiles in LoadGraph.
	Jobs int

	// Layout discovers source files. Defaults to layout.Conventional{}.
	Layout layout.Provider
}

// WithDefaults returns a copy of the options with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.Jobs <= 0 {
		o.Jobs = DefaultJobs
	}
	if o.Layout == nil {
		o.Layout = layout.Conventional{}
	}
	o.Manifest.Deps = o.Manifest.Deps.WithDefaults()
	return o
}

// Package is one loaded package.
type Package struct {
	Root     string             // absolute package directory
	Path     string             // absolute path of its Cargo.toml
	Layout   layout.Layout      // discovered source files
	Manifest *manifest.Manifest // compiled manifest
	Nested   []string           // path dependencies as written, relative to Root
}

// Result is the outcome of [Runner.LoadGraph].
type Result struct {
	// Packages lists every loaded package, dependencies before dependents.
	Packages []*Package

	// Graph has one node per package, keyed by Root, and one edge per path
	// dependency.
	Graph *dag.DAG

	Stats Stats
}

// Root returns the package LoadGraph was started from.
func (r *Result) Root() *Package {
	return r.Packages[len(r.Packages)-1]
}

// Stats contains load statistics.
type Stats struct {
	Packages     int
	Targets      int
	Dependencies int
	Warnings     int
	Duration     time.Duration
}
