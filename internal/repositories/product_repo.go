package repositories

import (
	"context"

	"warehouse/internal/models"
)

// ProductStore defines the raw data access primitives over the products table.
// Implementations do not enforce business rules; an empty selection matches
// every row.
type ProductStore interface {
	Select(ctx context.Context, projection []string, selection string, args []interface{}, sortOrder string) ([]models.Row, error)
	Insert(ctx context.Context, values models.Values) (int64, error)
	Update(ctx context.Context, values models.Values, selection string, args []interface{}) (int64, error)
	Delete(ctx context.Context, selection string, args []interface{}) (int64, error)
	Close() error
}
