package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// SellResult is the output of the sell command.
type SellResult struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <id>",
		Short: "Take one unit of a product out of stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 0 {
				return failf("%q is not a product id", args[0])
			}

			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			remaining, err := e.service.SellUnit(cmd.Context(), id)
			if err != nil {
				return serviceError(err, "failed to sell product %d", id)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(SellResult{ID: id, Quantity: remaining},
				fmt.Sprintf("Sold one unit of product %d, %d left", id, remaining))
		},
	}
}
