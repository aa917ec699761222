package schema

// Row is a row body in logical form: one Value per column, in schema column order. nil means
// the column is NULL. This is the form callers build rows in and the form DebugRow renders;
// the row store keeps rows in this same form, with string and bytes contents copied into its
// arena.
type Row []Value
