// Package cli implements the cartctl command line tool.
//
// cartctl drives a cart engine whose snapshot lives in a durable
// backend (file, sqlite or redis, chosen by config), so the
// write-through behavior is observable across invocations: every
// mutation command loads the cart, applies one operation, and exits
// with the new snapshot already persisted.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // empty means built-in defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for cartctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Control a durable shopping cart",
		Long: `cartctl drives the storefront cart engine from the command line.

The cart snapshot lives in the backend configured via --config
(file, sqlite or redis); without a config file a JSON file named
cart.json in the working directory is used. Each mutation persists
immediately, so the cart survives between invocations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewIncreaseCommand(opts))
	cmd.AddCommand(NewDecreaseCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}
