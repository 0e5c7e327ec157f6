package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratec/pkg/target"
)

// targetsCommand creates the targets command.
func (c *CLI) targetsCommand() *cobra.Command {
	var (
		asJSON bool
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List compiled targets",
		Long: `List the targets compiled from the manifest.

By default each target is shown once with the profiles it is built with.
Use --all to print one row per (target, profile) pair.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTargets(cmd.Context(), cmd.OutOrStdout(), asJSON, all)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write targets as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "one row per profile variant")

	return cmd
}

func (c *CLI) runTargets(ctx context.Context, w io.Writer, asJSON, all bool) error {
	dir, err := c.packageDir()
	if err != nil {
		return err
	}
	pkg, err := c.newRunner().Load(ctx, dir)
	if err != nil {
		return err
	}
	targets := pkg.Manifest.Targets

	if asJSON {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(targets); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}

	rows := [][]string{{"KIND", "NAME", "PROFILES", "PATH"}}
	if all {
		rows[0][2] = "PROFILE"
		for _, t := range targets {
			rows = append(rows, []string{t.Role.String(), t.Name, t.Profile.String(), relative(pkg.Root, t.Path)})
		}
	} else {
		for _, g := range groupTargets(targets) {
			rows = append(rows, []string{g.role, g.name, strings.Join(g.envs, ","), relative(pkg.Root, g.path)})
		}
	}
	printTitle(w, pkg.Manifest.Package.String())
	printTable(w, rows)
	return nil
}

type targetGroup struct {
	role, name, path string
	envs             []string
}

// groupTargets collapses profile variants of the same (role, name), listing
// each profile environment once in first-seen order.
func groupTargets(targets []target.Target) []targetGroup {
	var out []targetGroup
	index := make(map[string]int)
	for _, t := range targets {
		key := t.Role.String() + ":" + t.Name
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, targetGroup{role: t.Role.String(), name: t.Name, path: t.Path})
		}
		env := t.Profile.Env.String()
		if !slices.Contains(out[i].envs, env) {
			out[i].envs = append(out[i].envs, env)
		}
	}
	return out
}
