package schema_test

import (
	"testing"

	"github.com/leftmike/rowset/schema"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		v1, v2 schema.Value
		cmp    int
	}{
		{nil, schema.BoolValue(true), -1},
		{nil, nil, 0},

		{schema.BoolValue(false), nil, 1},
		{schema.BoolValue(true), schema.BoolValue(true), 0},
		{schema.BoolValue(false), schema.BoolValue(false), 0},
		{schema.BoolValue(false), schema.BoolValue(true), -1},
		{schema.BoolValue(true), schema.BoolValue(false), 1},
		{schema.BoolValue(false), schema.Float64Value(1.23), -1},

		{schema.Float64Value(1.23), schema.BoolValue(false), 1},
		{schema.Float64Value(1.23), schema.Int64Value(123), -1},
		{schema.Float64Value(1.23), schema.StringValue("abc"), -1},
		{schema.Float64Value(1.23), schema.Float64Value(2.34), -1},
		{schema.Float64Value(1.23), schema.Float64Value(1.23), 0},
		{schema.Float64Value(1.23), schema.Float64Value(0.12), 1},

		{schema.Int64Value(123), schema.BoolValue(false), 1},
		{schema.Int64Value(123), schema.Float64Value(1.23), 1},
		{schema.Int64Value(123), schema.StringValue("abc"), -1},
		{schema.Int64Value(123), schema.Int64Value(234), -1},
		{schema.Int64Value(123), schema.Int64Value(123), 0},
		{schema.Int64Value(123), schema.Int64Value(12), 1},

		{schema.StringValue("abc"), schema.BoolValue(false), 1},
		{schema.StringValue("abc"), schema.Float64Value(1.23), 1},
		{schema.StringValue("abc"), schema.Int64Value(123), 1},
		{schema.StringValue("def"), schema.StringValue("ghi"), -1},
		{schema.StringValue("def"), schema.StringValue("def"), 0},
		{schema.StringValue("def"), schema.StringValue("abc"), 1},
	}

	for _, c := range cases {
		cmp := schema.Compare(c.v1, c.v2)
		if cmp != c.cmp {
			t.Errorf("Compare(%v, %v) got %d want %d", c.v1, c.v2, cmp, c.cmp)
		}
	}
}
