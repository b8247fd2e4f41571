package ddl

// Kind is the logical type of a report column. Backends map each kind to a
// concrete SQL type through their Dialect.
type Kind int

const (
	KindText Kind = iota
	KindTimestamp
	KindFloat
	KindBool
)

// String returns the lower-case name of k.
func (k Kind) String() string {
	switch k {
	case KindTimestamp:
		return "timestamp"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Field is a named logical column.
type Field struct {
	Name string
	Kind Kind
}

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN) and an ordered list of columns. The FQN
// may be dotted ("schema.table"); renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
