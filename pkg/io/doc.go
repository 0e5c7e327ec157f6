// Package io writes compiled manifests and package graphs as JSON.
//
// # Manifest Format
//
// [WriteJSON] emits the compiled manifest as one object. Targets carry their
// role under "kind", the source file under "src_path" and the resolved
// profile inline:
//
//	{
//	  "package": {"name": "demo", "version": "0.1.0", "source": "path+/work/demo"},
//	  "targets": [
//	    {"name": "demo", "kind": "lib", "crate_types": ["lib"], "src_path": "/work/demo/src/lib.rs",
//	     "profile": {"env": "dev", "opt_level": 0, "debug": true, ...},
//	     "metadata": {"metadata": "9f0c…", "extra_filename": "-9f0c…"}}
//	  ],
//	  "dependencies": [
//	    {"name": "serde", "req": "1.0", "source": "registry+https://github.com/rust-lang/crates.io-index", ...}
//	  ],
//	  "warnings": ["unused manifest key: package.colour"]
//	}
//
// # Graph Format
//
// [WriteGraphJSON] and [ReadGraphJSON] use two arrays, one entry per local
// package and one per path dependency:
//
//	{
//	  "nodes": [{"id": "/work/app", "meta": {"name": "app", "version": "0.1.0"}}],
//	  "edges": [{"from": "/work/app", "to": "/work/util", "meta": {"kind": "normal"}}]
//	}
//
// Node IDs are package directories. Metadata round-trips as JSON values, so
// integers come back as float64.
package io
