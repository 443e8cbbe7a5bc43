package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"warehouse/internal/models"
	"warehouse/internal/repositories"
	"warehouse/pkg/notify"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Query selects rows for List. An empty Projection reads every column and an
// empty Selection matches every row of the addressed resource.
type Query struct {
	Projection    []string
	Selection     string
	SelectionArgs []interface{}
	SortOrder     string
}

// ResultSet holds the rows read by List together with the resource they were
// read from, so callers can watch that resource for changes.
type ResultSet struct {
	Resource models.Resource
	Rows     []models.Row

	registry *notify.Registry
}

// Watch subscribes observer to future changes of the resource the rows were
// read from. Call the returned function to stop watching.
func (rs *ResultSet) Watch(observer notify.Observer) func() {
	return rs.registry.Subscribe(rs.Resource.String(), observer)
}

// InventoryService is the only reader and writer of the product store. It
// routes operations by resource, validates write payloads and notifies
// observers after successful writes.
type InventoryService struct {
	store     repositories.ProductStore
	registry  *notify.Registry
	validator *payloadValidator
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService. A nil registry gets a
// private one.
func NewInventoryService(store repositories.ProductStore, registry *notify.Registry, logger *zap.Logger) *InventoryService {
	if registry == nil {
		registry = notify.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		store:     store,
		registry:  registry,
		validator: newPayloadValidator(),
		logger:    logger,
	}
}

// ResourceType classifies target as the products collection ("products") or
// a single product ("products/<id>").
func (s *InventoryService) ResourceType(target string) (models.Resource, error) {
	path := strings.Trim(target, "/")
	if path == models.PathProducts {
		return models.CollectionResource(), nil
	}

	rest, ok := strings.CutPrefix(path, models.PathProducts+"/")
	if !ok || rest == "" {
		return models.Resource{}, invalidTarget(target)
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return models.Resource{}, invalidTarget(target)
		}
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return models.Resource{}, invalidTarget(target)
	}
	return models.ItemResource(id), nil
}

// GetType returns the MIME type of the data at target.
func (s *InventoryService) GetType(target string) (string, error) {
	res, err := s.ResourceType(target)
	if err != nil {
		return "", err
	}
	return res.ContentType(), nil
}

// Subscribe registers observer for changes at res.
func (s *InventoryService) Subscribe(res models.Resource, observer notify.Observer) func() {
	return s.registry.Subscribe(res.String(), observer)
}

// List reads the rows at target. For an item target the caller's selection
// is replaced by the id predicate.
func (s *InventoryService) List(ctx context.Context, target string, q Query) (*ResultSet, error) {
	res, err := s.ResourceType(target)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, res, q)
}

// GetByID reads the product with the given id. It returns a nil row when no
// product has that id.
func (s *InventoryService) GetByID(ctx context.Context, id int64, projection []string) (models.Row, error) {
	rs, err := s.query(ctx, models.ItemResource(id), Query{Projection: projection})
	if err != nil {
		return nil, err
	}
	if len(rs.Rows) == 0 {
		return nil, nil
	}
	return rs.Rows[0], nil
}

func (s *InventoryService) query(ctx context.Context, res models.Resource, q Query) (*ResultSet, error) {
	selection, args := scope(res, q.Selection, q.SelectionArgs)
	rows, err := s.store.Select(ctx, q.Projection, selection, args, q.SortOrder)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return &ResultSet{Resource: res, Rows: rows, registry: s.registry}, nil
}

// Insert validates values and writes a new product, returning its id. A
// rejected payload yields a *ValidationError; a store failure yields NoID and
// a *StorageError.
func (s *InventoryService) Insert(ctx context.Context, values models.Values) (int64, error) {
	checked, err := s.validator.check(values, modeInsert)
	if err != nil {
		return NoID, err
	}

	id, err := s.store.Insert(ctx, checked)
	if err == nil && id <= 0 {
		err = errors.New("no row id returned")
	}
	if err != nil {
		s.logger.Error("Failed to insert product",
			zap.String("resource", models.CollectionResource().String()),
			zap.Error(err))
		return NoID, &StorageError{Op: "insert", Err: err}
	}

	s.notify(models.CollectionResource(), notify.OpInsert, 1)
	return id, nil
}

// Update validates the fields present in values and writes them to the rows
// at target, returning the number of rows affected. An empty payload is a
// no-op.
func (s *InventoryService) Update(ctx context.Context, target string, values models.Values, selection string, args []interface{}) (int64, error) {
	res, err := s.ResourceType(target)
	if err != nil {
		return 0, err
	}

	checked, err := s.validator.check(values, modeUpdate)
	if err != nil {
		return 0, err
	}
	if len(checked) == 0 {
		return 0, nil
	}

	selection, args = scope(res, selection, args)
	rows, err := s.store.Update(ctx, checked, selection, args)
	if err != nil {
		s.logger.Error("Failed to update products", zap.String("resource", res.String()), zap.Error(err))
		return 0, &StorageError{Op: "update", Err: err}
	}

	if rows > 0 {
		s.notify(res, notify.OpUpdate, rows)
	}
	return rows, nil
}

// Delete removes the rows at target and returns how many were removed.
func (s *InventoryService) Delete(ctx context.Context, target string, selection string, args []interface{}) (int64, error) {
	res, err := s.ResourceType(target)
	if err != nil {
		return 0, err
	}

	selection, args = scope(res, selection, args)
	rows, err := s.store.Delete(ctx, selection, args)
	if err != nil {
		s.logger.Error("Failed to delete products", zap.String("resource", res.String()), zap.Error(err))
		return 0, &StorageError{Op: "delete", Err: err}
	}

	if rows > 0 {
		s.notify(res, notify.OpDelete, rows)
	}
	return rows, nil
}

// DeleteAll removes every product.
func (s *InventoryService) DeleteAll(ctx context.Context) (int64, error) {
	return s.Delete(ctx, models.CollectionResource().String(), "", nil)
}

// SellUnit takes one unit of the product out of stock and returns the
// remaining quantity.
func (s *InventoryService) SellUnit(ctx context.Context, id int64) (int64, error) {
	row, err := s.GetByID(ctx, id, []string{models.ColumnQuantity})
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	quantity, err := cast.ToInt64E(row[models.ColumnQuantity])
	if err != nil {
		return 0, &StorageError{Op: "query", Err: err}
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: id %d", ErrOutOfStock, id)
	}

	remaining := quantity - 1
	rows, err := s.Update(ctx, models.ItemResource(id).String(), models.Values{models.ColumnQuantity: remaining}, "", nil)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return remaining, nil
}

// SampleProduct is the demo product written by SeedSample.
func SampleProduct() models.Product {
	return models.Product{
		Name:          "A3",
		UnitPrice:     25000,
		Quantity:      1,
		SupplierName:  "Audi",
		SupplierEmail: "orders@audi.com",
	}
}

// SeedSample inserts SampleProduct and returns its id.
func (s *InventoryService) SeedSample(ctx context.Context) (int64, error) {
	return s.Insert(ctx, SampleProduct().Values())
}

func (s *InventoryService) notify(res models.Resource, op notify.Op, rows int64) {
	s.logger.Debug("Products changed",
		zap.String("resource", res.String()),
		zap.String("op", string(op)),
		zap.Int64("rows", rows))
	s.registry.Notify(notify.Change{Path: res.String(), Op: op, Rows: rows})
}

// scope replaces the selection with the id predicate for item resources.
func scope(res models.Resource, selection string, args []interface{}) (string, []interface{}) {
	if res.Kind == models.ResourceItem {
		return models.ColumnID + " = ?", []interface{}{res.ID}
	}
	return selection, args
}
