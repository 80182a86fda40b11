package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketbay/cartengine/internal/cart"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemOpCommand(rootOpts, "remove <product-id>",
		"Remove a product from the cart",
		func(store *cart.Store, id string) { store.RemoveItem(id) })
}

// NewIncreaseCommand creates the increase command.
func NewIncreaseCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemOpCommand(rootOpts, "increase <product-id>",
		"Increase a line's quantity by one",
		func(store *cart.Store, id string) { store.IncreaseQuantity(id) })
}

// NewDecreaseCommand creates the decrease command.
func NewDecreaseCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemOpCommand(rootOpts, "decrease <product-id>",
		"Decrease a line's quantity by one (never below 1)",
		func(store *cart.Store, id string) { store.DecreaseQuantity(id) })
}

// newItemOpCommand builds the shared shape of the id-based mutations.
// Unknown ids are silent no-ops, mirroring the engine's contract, so
// these commands always exit 0 on a reachable backend.
func newItemOpCommand(rootOpts *RootOptions, use, short string, op func(*cart.Store, string)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer sess.close()

			op(sess.store, args[0])
			return printOutcome(cmd, rootOpts, sess)
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer sess.close()

			sess.store.Clear()
			return printOutcome(cmd, rootOpts, sess)
		},
	}
}

// printOutcome reports the post-operation totals (text) or the full
// snapshot (json).
func printOutcome(cmd *cobra.Command, opts *RootOptions, sess *session) error {
	if opts.Format == "text" {
		totals := sess.store.Totals()
		fmt.Fprintf(cmd.OutOrStdout(), "Cart total: %s (%d items)\n",
			sess.msgs.FormatAmount(totals.Amount), totals.Quantity)
		return nil
	}
	return printSnapshotJSON(cmd, sess.store.Snapshot())
}
