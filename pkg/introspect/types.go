package introspect

// TableKind distinguishes ordinary tables from views.
type TableKind string

const (
	TableKindTable TableKind = "table"
	TableKindView  TableKind = "view"
)

// TableDescriptor is one visible relation in a namespace.
type TableDescriptor struct {
	Name string    `json:"name" yaml:"name"`
	Kind TableKind `json:"kind" yaml:"kind"`
}

// ColumnDescriptor combines the driver-level description of a column with
// nullability and default taken from information_schema.columns.
type ColumnDescriptor struct {
	Name         string  `json:"name" yaml:"name"`
	TypeCode     string  `json:"type_code" yaml:"type_code"`                             // driver type name, e.g. INT4, VARCHAR
	InternalSize *int64  `json:"internal_size,omitempty" yaml:"internal_size,omitempty"` // storage width, -1 for variable length
	DisplaySize  *int64  `json:"display_size,omitempty" yaml:"display_size,omitempty"`   // declared length of varchar/bpchar
	Precision    *int64  `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale        *int64  `json:"scale,omitempty" yaml:"scale,omitempty"`
	Nullable     bool    `json:"nullable" yaml:"nullable"`
	Default      *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// IndexFlags reports whether a column carries a single-column primary key
// and/or unique index.
type IndexFlags struct {
	PrimaryKey bool `json:"primary_key" yaml:"primary_key"`
	Unique     bool `json:"unique" yaml:"unique"`
}

// IndexSummary maps column name to its single-column index flags.
type IndexSummary map[string]IndexFlags

// Relation is the target of a foreign key as seen from a local column.
type Relation struct {
	ForeignColumn string `json:"foreign_column" yaml:"foreign_column"`
	ForeignTable  string `json:"foreign_table" yaml:"foreign_table"`
}

// Relations maps local column name to the column it references.
// Only the first column pair of each foreign key is reported.
type Relations map[string]Relation

// SortOrder is the per-column ordering of a btree index.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// IndexSuffix is the type reported for indexes using the default (btree)
// access method. Other methods are reported by their pg_am name.
const IndexSuffix = "idx"

// ForeignKeyRef is the table and column a foreign key constraint points at.
type ForeignKeyRef struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// Constraint describes one constraint or index of a table.
//
// Columns are in definition order. For index entries Orders is parallel to
// Columns; positions of expression keys hold an empty column name.
type Constraint struct {
	Columns    []string       `json:"columns" yaml:"columns"`
	PrimaryKey bool           `json:"primary_key" yaml:"primary_key"`
	Unique     bool           `json:"unique" yaml:"unique"`
	ForeignKey *ForeignKeyRef `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
	Check      bool           `json:"check" yaml:"check"`
	Index      bool           `json:"index" yaml:"index"`
	Type       *string        `json:"type,omitempty" yaml:"type,omitempty"`
	Definition *string        `json:"definition,omitempty" yaml:"definition,omitempty"`
	Options    []string       `json:"options,omitempty" yaml:"options,omitempty"`
	Orders     []SortOrder    `json:"orders,omitempty" yaml:"orders,omitempty"`
}

// Constraints maps constraint or index name to its description.
type Constraints map[string]Constraint

// KeyColumn is one column participating in a foreign key constraint.
type KeyColumn struct {
	Column           string `json:"column" yaml:"column"`
	ReferencedTable  string `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumn string `json:"referenced_column" yaml:"referenced_column"`
}

// TableSnapshot is everything known about one relation.
// Views carry columns only.
type TableSnapshot struct {
	TableDescriptor `yaml:",inline"`
	Columns         []ColumnDescriptor `json:"columns" yaml:"columns"`
	Indexes         IndexSummary       `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Relations       Relations          `json:"relations,omitempty" yaml:"relations,omitempty"`
	Constraints     Constraints        `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	KeyColumns      []KeyColumn        `json:"key_columns,omitempty" yaml:"key_columns,omitempty"`
}

// NamespaceSnapshot describes every visible relation of a namespace.
type NamespaceSnapshot struct {
	Namespace string          `json:"namespace" yaml:"namespace"`
	Tables    []TableSnapshot `json:"tables" yaml:"tables"`
}
