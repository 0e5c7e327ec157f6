// Package nodelink draws the package graph as a node-and-edge diagram.
//
// Packages are boxes labelled with their name and version, and each path
// dependency is a directed edge from the dependent to the dependency:
//
//	g, _, _ := runner.LoadGraph(ctx, root)
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//
// Layout is left to Graphviz (the "dot" engine, via go-graphviz), so the
// DOT text is the only intermediate form. Packages that compiled with
// warnings are filled light yellow.
package nodelink
