package schema

// ColumnID is the stable identity of a column across schema evolution. Unlike a column's
// ordinal position (which shifts as columns are added/dropped), a ColumnID never changes for
// the life of a column; it is what row projection matches source and destination columns on.
type ColumnID uint32

// Column is one column of a Schema: its stable id, its storage type, and whether it
// participates in the row's encoded key.
type Column struct {
	ID      ColumnID
	Name    string
	Type    ColumnType
	InKey   bool // this column is part of the encoded, memcmp-ordered key
	KeyDesc bool // within the key, this column sorts descending
}
