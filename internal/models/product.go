package models

import (
	"fmt"

	"github.com/spf13/cast"
)

// Database file and schema identity. The schema is never migrated.
const (
	DatabaseName  = "warehouse.db"
	SchemaVersion = 1
)

// TableName is the name of the products table.
const TableName = "products"

// Column names of the products table.
const (
	ColumnID            = "id"
	ColumnName          = "name"
	ColumnUnitPrice     = "unit_price"
	ColumnQuantity      = "quantity"
	ColumnImagePath     = "image_path"
	ColumnSupplierName  = "supplier_name"
	ColumnSupplierEmail = "supplier_email"
)

// Columns lists every column in table order.
var Columns = []string{
	ColumnID,
	ColumnName,
	ColumnUnitPrice,
	ColumnQuantity,
	ColumnImagePath,
	ColumnSupplierName,
	ColumnSupplierEmail,
}

// IsColumn reports whether name is a column of the products table.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values is a write payload keyed by column name. An absent key is left to
// the column default on insert and untouched on update.
type Values map[string]interface{}

// Row is a single row read from the products table, keyed by column name.
type Row map[string]interface{}

// Product represents a product held in the warehouse.
type Product struct {
	ID            int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name          string  `json:"name" gorm:"column:name;not null"`
	UnitPrice     int64   `json:"unit_price" gorm:"column:unit_price;not null;default:1"`
	Quantity      int64   `json:"quantity" gorm:"column:quantity;not null;default:0"`
	ImagePath     *string `json:"image_path" gorm:"column:image_path"`
	SupplierName  string  `json:"supplier_name" gorm:"column:supplier_name;not null"`
	SupplierEmail string  `json:"supplier_email" gorm:"column:supplier_email;not null"`
}

func (Product) TableName() string { return TableName }

// Values returns the insert payload for p. The id is left for the store to
// assign and a nil image path is omitted.
func (p Product) Values() Values {
	v := Values{
		ColumnName:          p.Name,
		ColumnUnitPrice:     p.UnitPrice,
		ColumnQuantity:      p.Quantity,
		ColumnSupplierName:  p.SupplierName,
		ColumnSupplierEmail: p.SupplierEmail,
	}
	if p.ImagePath != nil {
		v[ColumnImagePath] = *p.ImagePath
	}
	return v
}

// ProductFromRow converts a row read with the full projection into a Product.
// Columns missing from the row keep their zero value.
func ProductFromRow(row Row) (Product, error) {
	var p Product
	var err error

	if v, ok := row[ColumnID]; ok {
		if p.ID, err = cast.ToInt64E(v); err != nil {
			return Product{}, fmt.Errorf("column %s: %w", ColumnID, err)
		}
	}
	if v, ok := row[ColumnName]; ok {
		p.Name = cast.ToString(v)
	}
	if v, ok := row[ColumnUnitPrice]; ok {
		if p.UnitPrice, err = cast.ToInt64E(v); err != nil {
			return Product{}, fmt.Errorf("column %s: %w", ColumnUnitPrice, err)
		}
	}
	if v, ok := row[ColumnQuantity]; ok {
		if p.Quantity, err = cast.ToInt64E(v); err != nil {
			return Product{}, fmt.Errorf("column %s: %w", ColumnQuantity, err)
		}
	}
	if v, ok := row[ColumnImagePath]; ok && v != nil {
		s := cast.ToString(v)
		p.ImagePath = &s
	}
	if v, ok := row[ColumnSupplierName]; ok {
		p.SupplierName = cast.ToString(v)
	}
	if v, ok := row[ColumnSupplierEmail]; ok {
		p.SupplierEmail = cast.ToString(v)
	}
	return p, nil
}
