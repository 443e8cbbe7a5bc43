package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInteger(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    int64
		wantErr bool
	}{
		{"int", 42, 42, false},
		{"int64 max", int64(math.MaxInt64), math.MaxInt64, false},
		{"integral float", 25000.0, 25000, false},
		{"float at exact limit", float64(1 << 53), 1 << 53, false},
		{"negative integral float", -3.0, -3, false},
		{"numeric string", " 17 ", 17, false},
		{"json number", json.Number("9007199254740993"), 9007199254740993, false},
		{"json number exponent", json.Number("1e3"), 1000, false},
		{"uint64 max int64", uint64(math.MaxInt64), math.MaxInt64, false},
		{"uint32", uint32(7), 7, false},

		{"bool", true, 0, true},
		{"fractional float", 12.5, 0, true},
		{"float above exact limit", float64(1<<53) * 2, 0, true},
		{"float above int64", 1e19, 0, true},
		{"float below int64", -1e19, 0, true},
		{"huge float", 1e30, 0, true},
		{"infinity", math.Inf(1), 0, true},
		{"nan", math.NaN(), 0, true},
		{"uint64 above int64", uint64(1 << 63), 0, true},
		{"uint above int64", ^uint(0), 0, true},
		{"json number above int64", json.Number("9223372036854775808"), 0, true},
		{"json number fraction", json.Number("2.5"), 0, true},
		{"string above int64", "9223372036854775808", 0, true},
		{"non numeric string", "cheap", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInteger(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
