// Package deps resolves declared dependencies into resolution-ready records.
//
// # Overview
//
// Every entry of a manifest's dependency sections becomes a [Dependency]:
//
//   - Name and version [Requirement] (absent means any version)
//   - [source.ID]: git remote, local path or the package registry
//   - Requested features, default-features flag and optional flag
//   - [Kind]: normal, dev or build
//   - Platform restriction for target.<platform>.dependencies entries
//
// # Source selection
//
// A [Resolver] picks the source for each entry in this order:
//
//  1. git: a git source at branch, else tag, else rev, else "master"
//  2. path: the directory joined onto the referencing package's own path
//     source; the raw path is also queued in [Resolver.NestedPaths] so the
//     caller can load that manifest next
//  3. otherwise the registry from [Options]
//
// Bare requirements such as "1.2" are caret requirements (>=1.2.0, <2.0.0),
// parsed with Masterminds/semver.
//
// # Usage
//
//	r := deps.NewResolver(source.ForPath(root), deps.Options{})
//	if err := r.AddGroup(m.Dependencies, deps.KindNormal, ""); err != nil {
//	    return err
//	}
//	records, nested := r.Dependencies(), r.NestedPaths()
//
// [source.ID]: github.com/matzehuels/cratec/pkg/source.ID
package deps
