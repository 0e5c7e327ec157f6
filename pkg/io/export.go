package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cratec/pkg/dag"
	"github.com/matzehuels/cratec/pkg/manifest"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string       `json:"id"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes a compiled manifest as indented JSON and writes it to w.
func WriteJSON(m *manifest.Manifest, w io.Writer) error {
	return encode(m, w)
}

// WriteAllJSON encodes several compiled manifests as one JSON array.
func WriteAllJSON(ms []*manifest.Manifest, w io.Writer) error {
	if ms == nil {
		ms = []*manifest.Manifest{}
	}
	return encode(ms, w)
}

// ExportJSON writes a compiled manifest to a JSON file at path.
func ExportJSON(m *manifest.Manifest, path string) error {
	return export(path, func(w io.Writer) error { return WriteJSON(m, w) })
}

// WriteGraphJSON encodes a package graph as JSON and writes it to w.
// The output can be read back with [ReadGraphJSON].
func WriteGraphJSON(g *dag.DAG, w io.Writer) error {
	out := graph{
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		nd := node{ID: n.ID}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		ed := edge{From: e.From, To: e.To}
		if len(e.Meta) > 0 {
			ed.Meta = e.Meta
		}
		out.Edges = append(out.Edges, ed)
	}
	return encode(out, w)
}

// ExportGraphJSON writes a package graph to a JSON file at path.
func ExportGraphJSON(g *dag.DAG, path string) error {
	return export(path, func(w io.Writer) error { return WriteGraphJSON(g, w) })
}

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func export(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
