package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketbay/cartengine/internal/cart"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the cart contents and totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer sess.close()

			if rootOpts.Format == "json" {
				return printSnapshotJSON(cmd, sess.store.Snapshot())
			}
			return printSnapshotText(cmd, sess)
		},
	}
}

func printSnapshotText(cmd *cobra.Command, sess *session) error {
	items := sess.store.Items()
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUNIT PRICE\tQTY\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			it.ID, it.Title,
			sess.msgs.FormatAmount(it.UnitPrice),
			it.Quantity,
			sess.msgs.FormatAmount(it.Subtotal()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	totals := sess.store.Totals()
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %s (%d items)\n",
		sess.msgs.FormatAmount(totals.Amount), totals.Quantity)
	return nil
}

// printSnapshotJSON writes the snapshot as indented JSON.
func printSnapshotJSON(cmd *cobra.Command, snap cart.Snapshot) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
