// Package cli wires configuration, logging and the catalog pipeline into the
// qrcatalog command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qrcatalog/internal/config"
	"github.com/JonMunkholm/qrcatalog/internal/logging"
)

// app carries what every subcommand needs once the root pre-run has loaded
// the configuration.
type app struct {
	version string
	stdout  io.Writer
	stderr  io.Writer

	// environ replaces the process environment when non-nil.
	environ map[string]string

	cfg *config.Config
}

// Execute runs the root command.
func Execute(version string) error {
	a := &app{version: version, stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCommand(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "qrcatalog",
		Short: "Build a QR-linked product catalog from spreadsheet exports",
		Long: `qrcatalog turns a directory of spreadsheet exports into a static product catalog:
one JSON document listing every product, and one QR code per product that opens
the product's detail page.

Configuration comes from the environment (and a .env file); flags override it.`,
		Version:           a.version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(newBuildCommand(a))
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newVersionCommand(a))
	return root
}

// setup loads and validates configuration, then configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.environ != nil {
		cfg, err = config.LoadFrom(a.environ)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(a.stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "command", cmd.Name(), "config", cfg.String())
	return nil
}
