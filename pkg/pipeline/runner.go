package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cratec/pkg/dag"
	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/manifest"
	"github.com/matzehuels/cratec/pkg/observability"
	"github.com/matzehuels/cratec/pkg/source"
)

// Runner loads and compiles packages.
//
// The Runner holds no per-load state, so multiple goroutines can share one.
type Runner struct {
	Options Options
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil logger discards all output.
func NewRunner(opts Options, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Options: opts.WithDefaults(), Logger: logger}
}

// Load compiles the package whose manifest lives in dir.
func (r *Runner) Load(ctx context.Context, dir string) (*Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid package directory `%s`", dir)
	}
	path := filepath.Join(root, errors.ManifestFilename)

	hooks := observability.Pipeline()
	hooks.OnCompileStart(ctx, root)
	start := time.Now()

	pkg, err := r.compile(root, path)

	stats := observability.CompileStats{}
	if pkg != nil {
		m := pkg.Manifest
		stats = observability.CompileStats{
			Package:      m.Name(),
			Targets:      len(m.Targets),
			Dependencies: len(m.Dependencies),
			Warnings:     len(m.Warnings),
		}
	}
	hooks.OnCompileComplete(ctx, root, stats, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("compiled manifest",
		"package", stats.Package,
		"targets", stats.Targets,
		"dependencies", stats.Dependencies,
		"duration", time.Since(start))
	for _, w := range pkg.Manifest.Warnings {
		r.Logger.Warn(w, "package", stats.Package)
	}
	return pkg, nil
}

func (r *Runner) compile(root, path string) (*Package, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err,
				"could not find `%s` in `%s`", errors.ManifestFilename, manifest.DisplayPath(root))
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to read `%s`", manifest.DisplayPath(path))
	}

	lay, err := r.Options.Layout.Discover(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to scan `%s`", manifest.DisplayPath(root))
	}

	m, nested, err := manifest.Compile(contents, source.ForPath(root), lay, r.Options.Manifest)
	if err != nil {
		return nil, err
	}
	return &Package{Root: root, Path: path, Layout: lay, Manifest: m, Nested: nested}, nil
}

// pending is a package directory waiting to be loaded, with the package
// that referenced it.
type pending struct {
	dir  string
	from string
}

// LoadGraph compiles the package in dir and, transitively, every local
// package reached through path dependencies. Each frontier is compiled
// concurrently, bounded by Options.Jobs.
func (r *Runner) LoadGraph(ctx context.Context, dir string) (*Result, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid package directory `%s`", dir)
	}

	hooks := observability.Pipeline()
	hooks.OnGraphStart(ctx, root)
	start := time.Now()

	res, err := r.loadGraph(ctx, root)

	var stats observability.GraphStats
	if res != nil {
		stats = observability.GraphStats{Packages: res.Graph.NodeCount(), Edges: res.Graph.EdgeCount()}
		res.Stats.Duration = time.Since(start)
	}
	hooks.OnGraphComplete(ctx, root, stats, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded package graph",
		"packages", stats.Packages,
		"edges", stats.Edges,
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) loadGraph(ctx context.Context, root string) (*Result, error) {
	loaded := make(map[string]*Package)
	var order []string

	frontier := []pending{{dir: root}}
	seen := map[string]bool{root: true}
	for len(frontier) > 0 {
		pkgs, err := r.loadAll(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var next []pending
		for _, p := range pkgs {
			loaded[p.Root] = p
			order = append(order, p.Root)
			for _, rel := range p.Nested {
				dir := rel
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(p.Root, rel)
				}
				dir = filepath.Clean(dir)
				if !seen[dir] {
					seen[dir] = true
					next = append(next, pending{dir: dir, from: p.Root})
				}
			}
		}
		frontier = next
	}

	g, err := buildGraph(loaded, order)
	if err != nil {
		return nil, err
	}
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, cycleError(g)
	}

	res := &Result{Graph: g}
	for _, id := range sorted {
		p := loaded[id]
		res.Packages = append(res.Packages, p)
		res.Stats.Targets += len(p.Manifest.Targets)
		res.Stats.Dependencies += len(p.Manifest.Dependencies)
		res.Stats.Warnings += len(p.Manifest.Warnings)
	}
	res.Stats.Packages = len(res.Packages)
	return res, nil
}

func (r *Runner) loadAll(ctx context.Context, frontier []pending) ([]*Package, error) {
	out := make([]*Package, len(frontier))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Options.Jobs)
	for i, p := range frontier {
		g.Go(func() error {
			pkg, err := r.Load(gctx, p.dir)
			if err != nil {
				if p.from == "" {
					return err
				}
				return errors.WrapPreserve(errors.ErrCodeInvalidManifest, err,
					"failed to load `%s`, a path dependency of `%s`",
					manifest.DisplayPath(p.dir), manifest.DisplayPath(p.from))
			}
			out[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildGraph(loaded map[string]*Package, order []string) (*dag.DAG, error) {
	g := dag.New(nil)
	for _, id := range order {
		m := loaded[id].Manifest
		meta := dag.Metadata{
			"name":     m.Name(),
			"targets":  len(m.Targets),
			"deps":     len(m.Dependencies),
			"warnings": len(m.Warnings),
		}
		if v := m.Version(); v != nil {
			meta["version"] = v.String()
		}
		if err := g.AddNode(dag.Node{ID: id, Meta: meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "package `%s`", id)
		}
	}
	for _, id := range order {
		for _, d := range loaded[id].Manifest.Dependencies {
			if !d.Source.IsPath() {
				continue
			}
			to := filepath.Clean(d.Source.Location())
			if _, ok := loaded[to]; !ok {
				continue
			}
			meta := dag.Metadata{"kind": d.Kind.String(), "dep": d.Name}
			if err := g.AddEdge(dag.Edge{From: id, To: to, Meta: meta}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "dependency `%s` of `%s`", d.Name, id)
			}
		}
	}
	return g, nil
}

func cycleError(g *dag.DAG) error {
	ids := g.FindCycle()
	names := make([]string, len(ids))
	for i, id := range ids {
		n, _ := g.Node(id)
		names[i] = n.Label()
	}
	return errors.New(errors.ErrCodeDependencyCycle,
		"cyclic package dependency: %s", strings.Join(names, " -> "))
}
