package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteAllResult is the output of the delete-all command.
type DeleteAllResult struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

// NewDeleteAllCommand creates the delete-all command.
func NewDeleteAllCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			rows, err := e.service.DeleteAll(cmd.Context())
			if err != nil {
				return serviceError(err, "failed to delete products")
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(DeleteAllResult{RowsDeleted: rows}, fmt.Sprintf("Deleted %d products", rows))
		},
	}
}
