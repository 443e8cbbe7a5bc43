package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SeedResult is the output of the seed command.
type SeedResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample product",
		Long: `Insert the sample product (an Audi A3, one unit at 25000) into the
database, creating the database if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.service.SeedSample(cmd.Context())
			if err != nil {
				return serviceError(err, "failed to seed sample product")
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(SeedResult{ID: id, Name: "A3"}, fmt.Sprintf("Seeded product %d", id))
		},
	}
}
