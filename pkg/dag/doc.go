// Package dag provides the package graph built when a workspace of local
// packages is loaded.
//
// Each node is one package, keyed by its absolute directory, and each edge
// is a path dependency from a package to another local package. Remote
// dependencies (registry and git) are not nodes; they stay on the compiled
// manifest.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "/work/app", Meta: dag.Metadata{"name": "app"}})
//	g.AddNode(dag.Node{ID: "/work/util"})
//	g.AddEdge(dag.Edge{From: "/work/app", To: "/work/util"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. [DAG.TopoSort] orders packages so that dependencies come
// first, and [DAG.FindCycle] reports a cycle for error messages.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The loader in
// [github.com/matzehuels/cratec/pkg/pipeline] builds the graph from a single
// goroutine after the parallel compiles finish.
package dag
