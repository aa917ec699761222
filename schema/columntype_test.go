package schema_test

import (
	"testing"

	"github.com/leftmike/rowset/schema"
)

func TestDataType(t *testing.T) {
	cases := []struct {
		ct schema.ColumnType
		dt string
	}{
		{
			schema.ColumnType{Type: schema.BooleanType},
			"BOOL",
		},
		{
			schema.ColumnType{Type: schema.StringType, Fixed: false, Size: 123},
			"VARCHAR(123)",
		},
		{
			schema.ColumnType{Type: schema.StringType, Fixed: true, Size: 123},
			"CHAR(123)",
		},
		{
			schema.ColumnType{Type: schema.StringType, Size: schema.MaxColumnSize},
			"TEXT",
		},
		{
			schema.ColumnType{Type: schema.BytesType, Fixed: false, Size: 123},
			"VARBINARY(123)",
		},
		{
			schema.ColumnType{Type: schema.BytesType, Fixed: true, Size: 123},
			"BINARY(123)",
		},
		{
			schema.ColumnType{Type: schema.BytesType, Size: schema.MaxColumnSize},
			"BYTES",
		},
		{
			schema.ColumnType{Type: schema.FloatType},
			"DOUBLE",
		},
		{
			schema.ColumnType{Type: schema.IntegerType, Size: 2},
			"SMALLINT",
		},
		{
			schema.ColumnType{Type: schema.IntegerType, Size: 4},
			"INT",
		},
		{
			schema.ColumnType{Type: schema.IntegerType, Size: 8},
			"BIGINT",
		},
	}

	for _, c := range cases {
		if c.ct.DataType() != c.dt {
			t.Errorf("ColumnType{%v}.DataType() got %s want %s", c.ct, c.ct.DataType(), c.dt)
		}
	}
}
