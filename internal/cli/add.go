package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketbay/cartengine/internal/cart"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Title   string
	Price   float64
	Variant map[string]string
	Image   string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart, or increment its quantity if the id is
already present. Merge identity is the product id alone: a different
--variant on a second add is ignored and the first variant's
attributes are kept.

Example:
  cartctl add sku-123 --title "Alpha Hoodie" --price 120 --variant size=M`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "display name")
	cmd.Flags().Float64Var(&opts.Price, "price", 0, "unit price (required, > 0)")
	cmd.Flags().StringToStringVar(&opts.Variant, "variant", nil, "variant attributes, e.g. size=M,color=red")
	cmd.Flags().StringVar(&opts.Image, "image", "", "image URL")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runAdd(opts *AddOptions, id string, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.close()

	err = sess.store.AddItem(cart.LineItem{
		ID:        id,
		Title:     opts.Title,
		UnitPrice: opts.Price,
		Variant:   opts.Variant,
		Image:     opts.Image,
	})
	if errors.Is(err, cart.ErrMissingID) || errors.Is(err, cart.ErrInvalidUnitPrice) {
		return WrapExitError(ExitCommandError, "invalid item", err)
	}
	if err != nil {
		return err
	}

	if opts.Format == "text" {
		totals := sess.store.Totals()
		fmt.Fprintf(cmd.OutOrStdout(), "Cart total: %s (%d items)\n",
			sess.msgs.FormatAmount(totals.Amount), totals.Quantity)
		return nil
	}
	return printSnapshotJSON(cmd, sess.store.Snapshot())
}
