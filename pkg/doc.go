// Package pkg provides the libraries behind cratec, the manifest compiler.
//
// # Overview
//
// cratec turns a package's Cargo.toml and the source files found next to it
// into a build plan: the targets to compile, the profile each is compiled
// with, and the dependencies the package declares. The pkg directory is
// organized by pipeline stage:
//
//	Cargo.toml bytes
//	     ↓
//	[tree]        ordered TOML tree, syntax diagnostics, unused-key walk
//	     ↓
//	[descriptor]  typed sections ([package], [lib], [[bin]], [dependencies], ...)
//	     ↓
//	[target]      target synthesis and profile fan-out, using [layout] and [profile]
//	[deps]        requirement parsing and source resolution, using [source]
//	     ↓
//	[manifest]    the compiled Manifest (single entry point: manifest.Compile)
//
// Around the compiler:
//
//   - [pipeline] reads manifests from disk and follows path dependencies
//   - [dag] holds the graph of local packages
//   - [io] writes manifests and graphs as JSON
//   - [render/nodelink] draws the package graph with Graphviz
//   - [errors] defines the coded errors every stage returns
//   - [observability] exposes hooks around compiles
//   - [buildinfo] carries version information set at link time
//
// # Quick Start
//
//	runner := pipeline.NewRunner(pipeline.Options{}, nil)
//	pkg, err := runner.Load(ctx, "./my-crate")
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, errors.UserMessage(err))
//	    os.Exit(1)
//	}
//	for _, t := range pkg.Manifest.Targets {
//	    fmt.Println(t)
//	}
//
// [tree]: github.com/matzehuels/cratec/pkg/tree
// [descriptor]: github.com/matzehuels/cratec/pkg/descriptor
// [target]: github.com/matzehuels/cratec/pkg/target
// [layout]: github.com/matzehuels/cratec/pkg/layout
// [profile]: github.com/matzehuels/cratec/pkg/profile
// [deps]: github.com/matzehuels/cratec/pkg/deps
// [source]: github.com/matzehuels/cratec/pkg/source
// [manifest]: github.com/matzehuels/cratec/pkg/manifest
// [pipeline]: github.com/matzehuels/cratec/pkg/pipeline
// [dag]: github.com/matzehuels/cratec/pkg/dag
// [io]: github.com/matzehuels/cratec/pkg/io
// [render/nodelink]: github.com/matzehuels/cratec/pkg/render/nodelink
// [errors]: github.com/matzehuels/cratec/pkg/errors
// [observability]: github.com/matzehuels/cratec/pkg/observability
// [buildinfo]: github.com/matzehuels/cratec/pkg/buildinfo
package pkg
