package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cratecio "github.com/matzehuels/cratec/pkg/io"
	"github.com/matzehuels/cratec/pkg/manifest"
	"github.com/matzehuels/cratec/pkg/pipeline"
)

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		asJSON    bool
		output    string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the manifest and summarize it",
		Long: `Compile the package manifest and summarize the result.

Warnings (unused keys, deprecated shapes) are logged; errors stop the compile.
With --json the full compiled manifest is written instead of the summary. With
--recursive every local package reached through path dependencies is compiled
too, and --json writes an array with dependencies before dependents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd.Context(), cmd.OutOrStdout(), asJSON, output, recursive)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write the compiled manifest as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for --json (default: stdout)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "also compile local path dependencies")

	return cmd
}

func (c *CLI) runCompile(ctx context.Context, w io.Writer, asJSON bool, output string, recursive bool) error {
	dir, err := c.packageDir()
	if err != nil {
		return err
	}
	runner := c.newRunner()
	prog := newProgress(c.Logger)

	var pkgs []*pipeline.Package
	if recursive {
		res, err := runner.LoadGraph(ctx, dir)
		if err != nil {
			return err
		}
		pkgs = res.Packages
	} else {
		pkg, err := runner.Load(ctx, dir)
		if err != nil {
			return err
		}
		pkgs = []*pipeline.Package{pkg}
	}
	prog.done(fmt.Sprintf("Compiled %d package(s)", len(pkgs)))

	if asJSON {
		var buf bytes.Buffer
		if recursive {
			ms := make([]*manifest.Manifest, len(pkgs))
			for i, p := range pkgs {
				ms[i] = p.Manifest
			}
			err = cratecio.WriteAllJSON(ms, &buf)
		} else {
			err = cratecio.WriteJSON(pkgs[0].Manifest, &buf)
		}
		if err != nil {
			return err
		}
		return writeOutput(w, output, buf.Bytes())
	}

	for _, p := range pkgs {
		printSummary(w, p)
	}
	return nil
}

func printSummary(w io.Writer, p *pipeline.Package) {
	m := p.Manifest
	printSuccess(w, "%s v%s", m.Name(), m.Version())
	printFile(w, manifest.DisplayPath(p.Path))
	printStats(w,
		stat{len(m.TargetNames()), "target"},
		stat{len(m.Targets), "profile variant"},
		stat{len(m.Dependencies), "dependency"},
		stat{len(m.Features), "feature"},
	)
	for _, warn := range m.Warnings {
		printWarning(w, "%s", warn)
	}
}
