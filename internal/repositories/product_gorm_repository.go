package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"warehouse/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrUnknownColumn is returned when a projection or payload names a column
// the products table does not have.
var ErrUnknownColumn = errors.New("unknown column")

const createProductsTable = `CREATE TABLE ` + models.TableName + ` (
	` + models.ColumnID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
	` + models.ColumnName + ` TEXT NOT NULL,
	` + models.ColumnUnitPrice + ` INTEGER NOT NULL DEFAULT 1,
	` + models.ColumnQuantity + ` INTEGER NOT NULL DEFAULT 0,
	` + models.ColumnImagePath + ` TEXT,
	` + models.ColumnSupplierName + ` TEXT NOT NULL,
	` + models.ColumnSupplierEmail + ` TEXT NOT NULL
)`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

// GORMProductStore is a GORM implementation of ProductStore backed by SQLite.
type GORMProductStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenProductStore opens (or creates) the SQLite database at path and makes
// sure the products table exists. Opening an existing database is a no-op
// apart from the pragmas.
func OpenProductStore(path string, logger *zap.Logger) (*GORMProductStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	store, err := NewGORMProductStore(db, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	logger.Debug("Opened product store", zap.String("path", path))
	return store, nil
}

// NewGORMProductStore creates a GORMProductStore over an open connection,
// creating the products table if it is missing.
func NewGORMProductStore(db *gorm.DB, logger *zap.Logger) (*GORMProductStore, error) {
	if err := ensureSchema(db, logger); err != nil {
		return nil, err
	}
	return &GORMProductStore{
		db:     db,
		logger: logger,
	}, nil
}

// ensureSchema creates the products table on first open and stamps the
// schema version. There is no upgrade path.
func ensureSchema(db *gorm.DB, logger *zap.Logger) error {
	var version int
	if err := db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > models.SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, models.SchemaVersion)
	}

	if !db.Migrator().HasTable(models.TableName) {
		if err := db.Exec(createProductsTable).Error; err != nil {
			return fmt.Errorf("failed to create %s table: %w", models.TableName, err)
		}
		logger.Info("Created products table", zap.Int("schema_version", models.SchemaVersion))
	}

	if version != models.SchemaVersion {
		if err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", models.SchemaVersion)).Error; err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *GORMProductStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Select returns the rows matching selection, restricted to projection (all
// columns when empty) and ordered by sortOrder when given.
func (s *GORMProductStore) Select(ctx context.Context, projection []string, selection string, args []interface{}, sortOrder string) ([]models.Row, error) {
	if err := checkColumns(projection); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Table(models.TableName)
	if len(projection) > 0 {
		tx = tx.Select(projection)
	}
	if selection != "" {
		tx = tx.Where(selection, args...)
	}
	if sortOrder != "" {
		tx = tx.Order(sortOrder)
	}

	var found []map[string]interface{}
	if err := tx.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}

	rows := make([]models.Row, 0, len(found))
	for _, r := range found {
		rows = append(rows, models.Row(r))
	}
	return rows, nil
}

// Insert writes a new row and returns the id assigned by the database.
func (s *GORMProductStore) Insert(ctx context.Context, values models.Values) (int64, error) {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	if err := checkColumns(columns); err != nil {
		return 0, err
	}

	var query string
	args := make([]interface{}, 0, len(columns))
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", models.TableName, models.ColumnID)
	} else {
		placeholders := make([]string, len(columns))
		for i, column := range columns {
			placeholders[i] = "?"
			args = append(args, values[column])
		}
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			models.TableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "), models.ColumnID)
	}

	var id int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&id).Error; err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	if id <= 0 {
		return 0, errors.New("failed to insert product: no row id returned")
	}
	return id, nil
}

// Update sets values on every row matching selection and returns the number
// of rows affected.
func (s *GORMProductStore) Update(ctx context.Context, values models.Values, selection string, args []interface{}) (int64, error) {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	if err := checkColumns(columns); err != nil {
		return 0, err
	}

	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Table(models.TableName)
	if selection != "" {
		tx = tx.Where(selection, args...)
	}
	res := tx.Updates(map[string]interface{}(values))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update products: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes every row matching selection and returns the number of rows
// deleted.
func (s *GORMProductStore) Delete(ctx context.Context, selection string, args []interface{}) (int64, error) {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if selection != "" {
		tx = tx.Where(selection, args...)
	}
	res := tx.Delete(&models.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete products: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func checkColumns(columns []string) error {
	for _, c := range columns {
		if !models.IsColumn(c) {
			return fmt.Errorf("%w %q", ErrUnknownColumn, c)
		}
	}
	return nil
}
