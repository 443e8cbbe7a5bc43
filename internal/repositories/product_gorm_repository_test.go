package repositories_test

import (
	"context"
	"path/filepath"
	"testing"

	"warehouse/internal/models"
	"warehouse/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openStore(t *testing.T, path string) *repositories.GORMProductStore {
	t.Helper()
	store, err := repositories.OpenProductStore(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleValues() models.Values {
	return models.Values{
		models.ColumnName:          "A3",
		models.ColumnUnitPrice:     int64(25000),
		models.ColumnSupplierName:  "Audi",
		models.ColumnSupplierEmail: "orders@audi.com",
	}
}

func TestOpenProductStore_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.DatabaseName)
	ctx := context.Background()

	first, err := repositories.OpenProductStore(path, zap.NewNop())
	require.NoError(t, err)
	id, err := first.Insert(ctx, sampleValues())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	rows, err := second.Select(ctx, nil, models.ColumnID+" = ?", []interface{}{id}, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "reopening must keep existing rows")
}

func TestOpenProductStore_SchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.DatabaseName)
	openStore(t, path)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var version int
	require.NoError(t, db.Raw("PRAGMA user_version").Scan(&version).Error)
	assert.Equal(t, models.SchemaVersion, version)

	// A newer schema cannot be opened.
	require.NoError(t, db.Exec("PRAGMA user_version = 7").Error)
	_, err = repositories.OpenProductStore(path, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestGORMProductStore_ColumnDefaults(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), models.DatabaseName))
	ctx := context.Background()

	values := sampleValues()
	delete(values, models.ColumnUnitPrice)
	id, err := store.Insert(ctx, values)
	require.NoError(t, err)

	rows, err := store.Select(ctx, []string{models.ColumnUnitPrice, models.ColumnQuantity, models.ColumnImagePath},
		models.ColumnID+" = ?", []interface{}{id}, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0][models.ColumnUnitPrice])
	assert.EqualValues(t, 0, rows[0][models.ColumnQuantity])
	assert.Nil(t, rows[0][models.ColumnImagePath])
}

func TestGORMProductStore_NotNullConstraint(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), models.DatabaseName))

	values := sampleValues()
	delete(values, models.ColumnSupplierEmail)
	id, err := store.Insert(context.Background(), values)
	assert.Error(t, err)
	assert.Zero(t, id)
}

func TestGORMProductStore_UnknownColumns(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), models.DatabaseName))
	ctx := context.Background()

	_, err := store.Select(ctx, []string{"price"}, "", nil, "")
	assert.ErrorIs(t, err, repositories.ErrUnknownColumn)

	values := sampleValues()
	values["colour"] = "red"
	_, err = store.Insert(ctx, values)
	assert.ErrorIs(t, err, repositories.ErrUnknownColumn)

	_, err = store.Update(ctx, models.Values{"colour": "blue"}, "", nil)
	assert.ErrorIs(t, err, repositories.ErrUnknownColumn)
}

func TestGORMProductStore_UpdateAndDelete(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), models.DatabaseName))
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := store.Insert(ctx, sampleValues())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	// Test update with a selection
	n, err := store.Update(ctx, models.Values{models.ColumnQuantity: int64(9)}, models.ColumnID+" = ?", []interface{}{ids[1]})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Test update with an empty selection touches every row
	n, err = store.Update(ctx, models.Values{models.ColumnSupplierName: "VW"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := store.Select(ctx, []string{models.ColumnID, models.ColumnQuantity}, "", nil, models.ColumnQuantity+" DESC")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, ids[1], rows[0][models.ColumnID])
	assert.EqualValues(t, 9, rows[0][models.ColumnQuantity])

	// Test delete matching nothing
	n, err = store.Delete(ctx, models.ColumnID+" = ?", []interface{}{int64(999)})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Delete(ctx, models.ColumnID+" = ?", []interface{}{ids[0]})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Test delete with an empty selection removes the rest
	n, err = store.Delete(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err = store.Select(ctx, nil, "", nil, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
