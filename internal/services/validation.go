package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"warehouse/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

type fieldKind int

const (
	textField fieldKind = iota
	integerField
)

type writeMode int

const (
	modeInsert writeMode = iota
	modeUpdate
)

// fieldRule describes how one column of a write payload is checked.
type fieldRule struct {
	column   string
	kind     fieldKind
	required bool   // must be present on insert and never null
	tag      string // validator tag applied to the normalized value
	reason   string
}

// productRules are checked in order; the first failure wins.
var productRules = []fieldRule{
	{column: models.ColumnName, kind: textField, required: true, reason: "product requires a name"},
	{column: models.ColumnUnitPrice, kind: integerField, required: true, reason: "product requires a valid unit price"},
	{column: models.ColumnQuantity, kind: integerField, tag: "gte=0", reason: "product requires a valid quantity"},
	{column: models.ColumnSupplierName, kind: textField, required: true, reason: "product requires a supplier's name"},
	{column: models.ColumnSupplierEmail, kind: textField, required: true, reason: "product requires a supplier's email address"},
	{column: models.ColumnImagePath, kind: textField, reason: "product image path must be text"},
}

// payloadValidator checks write payloads against productRules.
type payloadValidator struct {
	validate *validator.Validate
}

func newPayloadValidator() *payloadValidator {
	return &payloadValidator{validate: validator.New()}
}

// check validates values for the given write mode. On success it returns a
// copy of values with every ruled field normalized to its storage type; keys
// without a rule are copied through for the store to accept or reject.
func (v *payloadValidator) check(values models.Values, mode writeMode) (models.Values, error) {
	out := make(models.Values, len(values))
	ruled := make(map[string]struct{}, len(productRules))

	for _, rule := range productRules {
		ruled[rule.column] = struct{}{}

		raw, present := values[rule.column]
		if !present {
			if mode == modeInsert && rule.required {
				return nil, &ValidationError{Field: rule.column, Reason: rule.reason}
			}
			continue
		}
		if raw == nil {
			if rule.required {
				return nil, &ValidationError{Field: rule.column, Reason: rule.reason}
			}
			out[rule.column] = nil
			continue
		}

		normalized, err := normalize(rule.kind, raw)
		if err != nil {
			return nil, &ValidationError{Field: rule.column, Reason: rule.reason}
		}
		if rule.tag != "" {
			if err := v.validate.Var(normalized, rule.tag); err != nil {
				return nil, &ValidationError{Field: rule.column, Reason: rule.reason}
			}
		}
		out[rule.column] = normalized
	}

	if _, ok := values[models.ColumnID]; ok {
		return nil, &ValidationError{Field: models.ColumnID, Reason: "product id is assigned by the store and cannot be written"}
	}

	for column, value := range values {
		if _, ok := ruled[column]; !ok {
			out[column] = value
		}
	}
	return out, nil
}

func normalize(kind fieldKind, v interface{}) (interface{}, error) {
	switch kind {
	case integerField:
		return toInteger(v)
	default:
		return cast.ToStringE(v)
	}
}

// Every integer no larger than maxExactFloat in magnitude has an exact
// float64 representation.
const maxExactFloat = 1 << 53

// toInteger accepts integer kinds, integral floats and base-10 numeric
// strings. Values that do not fit an int64 exactly are rejected.
func toInteger(v interface{}) (int64, error) {
	switch n := v.(type) {
	case bool:
		return 0, fmt.Errorf("unable to use %v as an integer", n)
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > maxExactFloat {
			return 0, fmt.Errorf("unable to use %v as an integer", n)
		}
		return int64(n), nil
	case float32:
		return toInteger(float64(n))
	case uint:
		return toInteger(uint64(n))
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	case uintptr:
		return toInteger(uint64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return toInteger(f)
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return cast.ToInt64E(v)
}
