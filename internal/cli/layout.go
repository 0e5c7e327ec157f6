package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratec/pkg/layout"
	"github.com/matzehuels/cratec/pkg/manifest"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show the source files discovered by convention",
		Long: `Show the source files found in the conventional locations:

  src/lib.rs, src/main.rs, src/bin/*.rs, examples/*.rs, tests/*.rs, benches/*.rs

These are the candidates targets are inferred from when the manifest does not
declare them. The manifest itself is not compiled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer) error {
	dir, err := c.packageDir()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	lay, err := c.newRunner().Options.Layout.Discover(dir)
	if err != nil {
		return err
	}

	printTitle(w, manifest.DisplayPath(lay.Root))
	printKeyValue(w, "lib", orNone(lay.Lib))
	for _, row := range []struct {
		key   string
		files []string
	}{
		{"bin", lay.Bins},
		{layout.Examples, lay.Examples},
		{layout.Tests, lay.Tests},
		{layout.Benches, lay.Benches},
	} {
		printKeyValue(w, row.key, orNone(strings.Join(row.files, " ")))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
