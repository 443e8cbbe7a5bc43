package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"warehouse/internal/models"
	"warehouse/internal/services"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Supplier string
	InStock  bool
	Sort     string
}

var listSortColumns = map[string]string{
	"id":         models.ColumnID,
	"name":       models.ColumnName,
	"quantity":   models.ColumnQuantity,
	"unit_price": models.ColumnUnitPrice,
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Supplier, "supplier", "", "only list products from this supplier")
	cmd.Flags().BoolVar(&opts.InStock, "in-stock", false, "only list products with a positive quantity")
	cmd.Flags().StringVar(&opts.Sort, "sort", "id", "sort column (id|name|quantity|unit_price)")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	column, ok := listSortColumns[opts.Sort]
	if !ok {
		return failf("cannot sort by %q", opts.Sort)
	}

	e, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	q := services.Query{SortOrder: column + " ASC"}
	switch {
	case opts.Supplier != "" && opts.InStock:
		q.Selection = models.ColumnSupplierName + " = ? AND " + models.ColumnQuantity + " > 0"
		q.SelectionArgs = []interface{}{opts.Supplier}
	case opts.Supplier != "":
		q.Selection = models.ColumnSupplierName + " = ?"
		q.SelectionArgs = []interface{}{opts.Supplier}
	case opts.InStock:
		q.Selection = models.ColumnQuantity + " > 0"
	}

	rs, err := e.service.List(cmd.Context(), models.PathProducts, q)
	if err != nil {
		return serviceError(err, "failed to list products")
	}

	products := make([]models.Product, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		p, err := models.ProductFromRow(row)
		if err != nil {
			return failf("failed to read product: %w", err)
		}
		products = append(products, p)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(products, productTable(products))
}

// productTable renders products as an aligned text table.
func productTable(products []models.Product) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUNIT PRICE\tQUANTITY\tSUPPLIER\tEMAIL")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n", p.ID, p.Name, p.UnitPrice, p.Quantity, p.SupplierName, p.SupplierEmail)
	}
	w.Flush()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
