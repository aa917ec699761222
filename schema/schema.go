package schema

import (
	"fmt"
	"math"
	"strings"
)

// Schema is the schema/key codec collaborator named in the spec: it knows each column's stable
// id and type, which columns form the encoded key, and how to turn a Row into a memcmp-ordered
// byte string and back into a human-readable line for diagnostics.
//
// A Schema is immutable once constructed; schema evolution is handled externally by flushing the
// row store that holds this schema and building a fresh one (see MemRowSet.AlterSchema).
type Schema struct {
	id      string
	columns []Column
	byID    map[ColumnID]int // ColumnID -> index into columns
	keyIdx  []int            // indexes into columns, in key order
}

// New builds a Schema from columns in declaration order. Every column must carry a non-zero
// ColumnID — construction fails otherwise, matching the codec collaborator's documented
// contract ("column_ids (required — construction fails otherwise)").
func New(id string, columns []Column) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema %s: at least one column is required", id)
	}

	byID := make(map[ColumnID]int, len(columns))
	var keyIdx []int
	for i, c := range columns {
		if c.ID == 0 {
			return nil, fmt.Errorf("schema %s: column %q has no column id", id, c.Name)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("schema %s: duplicate column id %d", id, c.ID)
		}
		byID[c.ID] = i
		if c.InKey {
			keyIdx = append(keyIdx, i)
		}
	}
	if len(keyIdx) == 0 {
		return nil, fmt.Errorf("schema %s: at least one column must be part of the key", id)
	}

	return &Schema{
		id:      id,
		columns: append([]Column(nil), columns...),
		byID:    byID,
		keyIdx:  keyIdx,
	}, nil
}

func (s *Schema) ID() string        { return s.id }
func (s *Schema) NumColumns() int   { return len(s.columns) }
func (s *Schema) Column(i int) Column { return s.columns[i] }

// ColumnIDs returns the stable ids of every column, in declaration order.
func (s *Schema) ColumnIDs() []ColumnID {
	ids := make([]ColumnID, len(s.columns))
	for i, c := range s.columns {
		ids[i] = c.ID
	}
	return ids
}

// IndexOf returns the column position for id, or -1 if this schema has no such column.
func (s *Schema) IndexOf(id ColumnID) int {
	if i, ok := s.byID[id]; ok {
		return i
	}
	return -1
}

// EncodeKey appends row's key columns to buf in a memcmp-ordered encoding and returns the
// extended slice. Ordering is memcmp on the returned bytes, matching spec.md's "Encoded key"
// data model: a byte string produced by a schema-driven comparator-preserving encoding.
func (s *Schema) EncodeKey(row Row, buf []byte) ([]byte, error) {
	for _, idx := range s.keyIdx {
		col := s.columns[idx]
		var v Value
		if idx < len(row) {
			v = row[idx]
		}
		enc, err := encodeKeyValue(col, v)
		if err != nil {
			return nil, fmt.Errorf("schema %s: column %q: %w", s.id, col.Name, err)
		}
		buf = append(buf, enc...)
	}
	return buf, nil
}

// DebugRow renders row as a single human-readable line for diagnostics (MemRowSet.DebugDump).
func (s *Schema) DebugRow(row Row) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, col := range s.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.Name)
		sb.WriteByte('=')
		if i < len(row) {
			sb.WriteString(Format(row[i]))
		} else {
			sb.WriteString(NullString)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// present/absent markers, chosen so that NULL sorts before any value of the same column.
const (
	keyNull    byte = 0x00
	keyPresent byte = 0x01

	stringEscapeByte byte = 0x00
	stringEscapeFF   byte = 0xFF
	stringTerminator byte = 0x00
)

func encodeKeyValue(col Column, v Value) ([]byte, error) {
	if v == nil {
		if col.Type.NotNull {
			return nil, fmt.Errorf("key column may not be NULL")
		}
		return flipIfDesc(col, []byte{keyNull}), nil
	}

	buf := []byte{keyPresent}
	switch col.Type.Type {
	case BooleanType:
		b, ok := v.(BoolValue)
		if !ok {
			return nil, fmt.Errorf("expected a boolean value: %v", v)
		}
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case IntegerType:
		i, ok := v.(Int64Value)
		if !ok {
			return nil, fmt.Errorf("expected an integer value: %v", v)
		}
		buf = append(buf, encodeInt64(int64(i))...)
	case FloatType:
		f, ok := v.(Float64Value)
		if !ok {
			return nil, fmt.Errorf("expected a float value: %v", v)
		}
		buf = append(buf, encodeFloat64(float64(f))...)
	case StringType:
		s, ok := v.(StringValue)
		if !ok {
			return nil, fmt.Errorf("expected a string value: %v", v)
		}
		buf = append(buf, encodeBytesTerminated([]byte(s))...)
	case BytesType:
		b, ok := v.(BytesValue)
		if !ok {
			return nil, fmt.Errorf("expected a bytes value: %v", v)
		}
		buf = append(buf, encodeBytesTerminated([]byte(b))...)
	default:
		return nil, fmt.Errorf("unsupported key column type: %v", col.Type.Type)
	}
	return flipIfDesc(col, buf), nil
}

func flipIfDesc(col Column, buf []byte) []byte {
	if !col.KeyDesc {
		return buf
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = ^b
	}
	return out
}

// encodeInt64 produces a big-endian encoding with the sign bit flipped, so that memcmp order
// matches signed integer order.
func encodeInt64(i int64) []byte {
	u := uint64(i) ^ (uint64(1) << 63)
	return []byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
}

// encodeFloat64 produces a big-endian encoding that sorts under memcmp the same way IEEE-754
// doubles sort under their natural ordering (the classic flip-sign-or-flip-everything trick).
func encodeFloat64(f float64) []byte {
	u := math.Float64bits(f)
	if u>>63 == 1 {
		u = ^u
	} else {
		u |= uint64(1) << 63
	}
	return []byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
}

// encodeBytesTerminated escapes every 0x00 byte as 0x00 0xFF and terminates with 0x00 0x00, the
// standard order-preserving encoding for variable-length byte strings.
func encodeBytesTerminated(b []byte) []byte {
	out := make([]byte, 0, len(b)+2)
	for _, c := range b {
		if c == stringEscapeByte {
			out = append(out, stringEscapeByte, stringEscapeFF)
		} else {
			out = append(out, c)
		}
	}
	out = append(out, stringEscapeByte, stringTerminator)
	return out
}
