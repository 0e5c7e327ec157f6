// Package cli implements the cratec command-line interface.
//
// Commands compile the manifest of the package in the current directory
// (or the one named by --manifest-path) and print what it describes:
//
//   - compile: validate the manifest and summarize it, or emit it as JSON
//   - targets: list the compiled targets and their profiles
//   - deps: list dependencies with their resolved sources
//   - layout: show the source files discovered on disk
//   - graph: draw the graph of local path dependencies
//   - completion: generate shell completion scripts
//
// Diagnostics go to the logger (stderr); command output goes to the
// command's output writer (stdout).
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratec/pkg/buildinfo"
	"github.com/matzehuels/cratec/pkg/errors"
	"github.com/matzehuels/cratec/pkg/manifest"
	"github.com/matzehuels/cratec/pkg/pipeline"
)

const appName = "cratec"

// Environment variables consulted when the matching flag is not given.
const (
	EnvRegistry = "CRATEC_REGISTRY"
	EnvJobs     = "CRATEC_JOBS"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose      bool
	manifestPath string
	registry     string
	jobs         int
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cratec compiles Cargo.toml manifests into build plans",
		Long: `cratec reads a package's Cargo.toml and its source layout and compiles them
into the list of targets to build, the profile each is built with, and the
dependencies the package declares.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.applyEnv(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.manifestPath, "manifest-path", "", "path to the "+errors.ManifestFilename+" to compile (default: ./"+errors.ManifestFilename+")")
	flags.StringVar(&c.registry, "registry", "", "index URL for registry dependencies (env "+EnvRegistry+")")
	flags.IntVar(&c.jobs, "jobs", pipeline.DefaultJobs, "manifests compiled in parallel with --recursive (env "+EnvJobs+")")

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.targetsCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// applyEnv fills flags the user did not set from the environment.
func (c *CLI) applyEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !flags.Changed("registry") {
		if v := os.Getenv(EnvRegistry); v != "" {
			c.registry = v
		}
	}
	if !flags.Changed("jobs") {
		if v := os.Getenv(EnvJobs); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%s must be a positive integer, got %q", EnvJobs, v)
			}
			c.jobs = n
		}
	}
	return nil
}

// packageDir returns the directory holding the manifest to compile.
func (c *CLI) packageDir() (string, error) {
	if c.manifestPath == "" {
		return os.Getwd()
	}
	if err := errors.ValidateManifestPath(c.manifestPath); err != nil {
		return "", err
	}
	return filepath.Dir(c.manifestPath), nil
}

func (c *CLI) newRunner() *pipeline.Runner {
	opts := pipeline.Options{Jobs: c.jobs}
	opts.Manifest.Deps.RegistryURL = c.registry
	return pipeline.NewRunner(opts, c.Logger)
}

// relative shortens an absolute path below root for display.
func relative(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", manifest.DisplayPath(path), err)
	}
	return nil
}
