package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constraintRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"conname", "columns", "contype", "fk_table", "fk_column", "reloptions"})
}

func indexDefinitionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"indexname", "columns", "indisunique", "indisprimary", "orders", "amname", "exprdef", "attoptions"})
}

func ptr(s string) *string { return &s }

func TestGetConstraints(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "orders").
		WillReturnRows(constraintRows().
			AddRow("orders_pkey", "{id}", "p", nil, nil, nil).
			AddRow("orders_customer_id_fkey", "{customer_id}", "f", "customers", "id", nil).
			AddRow("orders_pair_fkey", "{pair_b,pair_a}", "f", "pairs", "b", nil).
			AddRow("orders_reference_key", "{reference}", "u", nil, nil, nil).
			AddRow("orders_total_check", "{total}", "c", nil, nil, "{fillfactor=70}"))
	mock.ExpectQuery(indexesQuery).WithArgs("orders").
		WillReturnRows(indexDefinitionRows().
			AddRow("orders_pkey", "{id}", true, true, "{ASC}", "btree", nil, nil).
			AddRow("orders_created_desc", "{created_at,id}", false, false, "{DESC,ASC}", "btree", nil, "{fillfactor=80}").
			AddRow("orders_lower_note", `{""}`, false, false, "{ASC}", "btree",
				"CREATE INDEX orders_lower_note ON tenant_a.orders USING btree (lower(note))", nil).
			AddRow("orders_customer_hash", "{customer_id}", false, false, `{""}`, "hash", nil, nil))
	expectRelease(mock)

	got, err := in.GetConstraints(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, got, 8)

	pk := got["orders_pkey"]
	assert.Equal(t, []string{"id"}, pk.Columns)
	assert.True(t, pk.PrimaryKey)
	assert.True(t, pk.Unique)
	assert.False(t, pk.Index, "constraint entry wins over the same-named index")
	assert.Nil(t, pk.Type)

	fk := got["orders_customer_id_fkey"]
	assert.Equal(t, &ForeignKeyRef{Table: "customers", Column: "id"}, fk.ForeignKey)
	assert.False(t, fk.Unique)

	pair := got["orders_pair_fkey"]
	assert.Equal(t, []string{"pair_b", "pair_a"}, pair.Columns, "definition order, not attnum order")
	assert.Equal(t, &ForeignKeyRef{Table: "pairs", Column: "b"}, pair.ForeignKey)

	assert.True(t, got["orders_reference_key"].Unique)
	assert.False(t, got["orders_reference_key"].PrimaryKey)

	check := got["orders_total_check"]
	assert.True(t, check.Check)
	assert.Equal(t, []string{"fillfactor=70"}, check.Options)

	desc := got["orders_created_desc"]
	assert.True(t, desc.Index)
	assert.Equal(t, []string{"created_at", "id"}, desc.Columns)
	assert.Equal(t, []SortOrder{SortDesc, SortAsc}, desc.Orders)
	assert.Equal(t, ptr(IndexSuffix), desc.Type)
	assert.Equal(t, []string{"fillfactor=80"}, desc.Options)
	assert.Nil(t, desc.Definition)

	expr := got["orders_lower_note"]
	assert.Empty(t, expr.Columns)
	assert.NotNil(t, expr.Columns)
	assert.Equal(t, []SortOrder{SortAsc}, expr.Orders)
	require.NotNil(t, expr.Definition)
	assert.Contains(t, *expr.Definition, "lower(note)")

	hash := got["orders_customer_hash"]
	assert.Equal(t, []string{"customer_id"}, hash.Columns)
	assert.Empty(t, hash.Orders)
	assert.Equal(t, ptr("hash"), hash.Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConstraints_ConfiguredNamespace(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{ConstraintNamespace: "tenant_a"})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(constraintsQuery).WithArgs("tenant_a", "customers").
		WillReturnRows(constraintRows().AddRow("customers_pkey", "{id}", "p", nil, nil, nil))
	mock.ExpectQuery(indexesQuery).WithArgs("customers").WillReturnRows(indexDefinitionRows())
	expectRelease(mock)

	got, err := in.GetConstraints(context.Background(), "customers")
	require.NoError(t, err)
	assert.Equal(t, Constraints{
		"customers_pkey": {Columns: []string{"id"}, PrimaryKey: true, Unique: true},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConstraints_IndexQueryFailure(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "orders").WillReturnRows(constraintRows())
	mock.ExpectQuery(indexesQuery).WithArgs("orders").WillReturnError(assert.AnError)
	expectRelease(mock)

	got, err := in.GetConstraints(context.Background(), "orders")
	require.Error(t, err)
	assert.Nil(t, got, "no partial result")
	assert.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrimaryKeyColumn(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "pairs").
		WillReturnRows(constraintRows().
			AddRow("pairs_b_check", "{b}", "c", nil, nil, nil).
			AddRow("pairs_pkey", "{b,a}", "p", nil, nil, nil))
	mock.ExpectQuery(indexesQuery).WithArgs("pairs").
		WillReturnRows(indexDefinitionRows().
			AddRow("pairs_pkey", "{b,a}", true, true, "{ASC,ASC}", "btree", nil, nil))
	expectRelease(mock)

	column, found, err := in.PrimaryKeyColumn(context.Background(), "pairs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", column)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrimaryKeyColumn_None(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "events").
		WillReturnRows(constraintRows().AddRow("events_kind_check", "{kind}", "c", nil, nil, nil))
	mock.ExpectQuery(indexesQuery).WithArgs("events").WillReturnRows(indexDefinitionRows())
	expectRelease(mock)

	column, found, err := in.PrimaryKeyColumn(context.Background(), "events")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, column)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConstraints_UniqueConstraintWinsOverSameNamedIndex(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "accounts").
		WillReturnRows(constraintRows().AddRow("uq_1", "{email}", "u", nil, nil, nil))
	mock.ExpectQuery(indexesQuery).WithArgs("accounts").
		WillReturnRows(indexDefinitionRows().
			AddRow("uq_1", "{email}", true, false, "{ASC}", "btree", nil, "{fillfactor=90}"))
	expectRelease(mock)

	got, err := in.GetConstraints(context.Background(), "accounts")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Constraint{Columns: []string{"email"}, Unique: true}, got["uq_1"])
	assert.Nil(t, got["uq_1"].ForeignKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraints_PrimaryKeyColumn(t *testing.T) {
	tests := []struct {
		name        string
		constraints Constraints
		want        string
		found       bool
	}{
		{
			name:        "empty",
			constraints: Constraints{},
		},
		{
			name: "first column of declared order",
			constraints: Constraints{
				"pairs_b_check": {Columns: []string{"b"}, Check: true},
				"pairs_pkey":    {Columns: []string{"b", "a"}, PrimaryKey: true, Unique: true},
			},
			want:  "b",
			found: true,
		},
		{
			name: "name order decides between entries",
			constraints: Constraints{
				"z_pkey": {Columns: []string{"z"}, PrimaryKey: true},
				"a_pkey": {Columns: []string{"a"}, PrimaryKey: true, Index: true},
			},
			want:  "a",
			found: true,
		},
		{
			name: "primary key without columns is skipped",
			constraints: Constraints{
				"expr_pkey": {Columns: []string{}, PrimaryKey: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := tt.constraints.PrimaryKeyColumn()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
		})
	}
}
