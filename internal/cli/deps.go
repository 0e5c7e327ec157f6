package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratec/pkg/deps"
	"github.com/matzehuels/cratec/pkg/errors"
)

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		asJSON bool
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "List declared dependencies and their sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd.Context(), cmd.OutOrStdout(), asJSON, kind)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write dependencies as JSON")
	cmd.Flags().StringVar(&kind, "kind", "", "only list one kind: normal, dev, build")

	return cmd
}

func parseKind(s string) (deps.Kind, error) {
	for _, k := range []deps.Kind{deps.KindNormal, deps.KindDev, deps.KindBuild} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid --kind %q (must be one of: normal, dev, build)", s)
}

func (c *CLI) runDeps(ctx context.Context, w io.Writer, asJSON bool, kind string) error {
	dir, err := c.packageDir()
	if err != nil {
		return err
	}
	pkg, err := c.newRunner().Load(ctx, dir)
	if err != nil {
		return err
	}

	list := pkg.Manifest.Dependencies
	if kind != "" {
		k, err := parseKind(kind)
		if err != nil {
			return err
		}
		list = pkg.Manifest.DependenciesOf(k)
	}

	if asJSON {
		if list == nil {
			list = []deps.Dependency{}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}

	rows := [][]string{{"NAME", "REQ", "KIND", "SOURCE", "PLATFORM"}}
	for _, d := range list {
		name := d.Name
		if d.Optional {
			name += "?"
		}
		rows = append(rows, []string{name, d.Requirement.String(), d.Kind.String(), d.Source.String(), d.Platform})
	}
	printTitle(w, pkg.Manifest.Package.String())
	printTable(w, rows)
	return nil
}
