package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

func indexFlagRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"attname", "indkey", "indisunique", "indisprimary"})
}

func TestGetIndexes(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(indexFlagsQuery).WithArgs("orders", "tenant_a").
		WillReturnRows(indexFlagRows().
			AddRow("id", "1", true, true).
			AddRow("reference", "4", true, false).
			AddRow("reference", "4", false, false).
			AddRow("customer_id", "2 3", true, false).
			AddRow("customer_id", "2", false, false))
	expectRelease(mock)

	summary, err := in.GetIndexes(context.Background(), "tenant_a", "orders")
	require.NoError(t, err)
	assert.Equal(t, IndexSummary{
		"id":          {PrimaryKey: true, Unique: true},
		"reference":   {PrimaryKey: false, Unique: true},
		"customer_id": {PrimaryKey: false, Unique: false},
	}, summary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIndexes_MultiColumnOnly(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(indexFlagsQuery).WithArgs("pairs", "tenant_a").
		WillReturnRows(indexFlagRows().AddRow("b", "2 1", true, true))
	expectRelease(mock)

	summary, err := in.GetIndexes(context.Background(), "tenant_a", "pairs")
	require.NoError(t, err)
	assert.Empty(t, summary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func relationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"attname", "relname", "attname"})
}

func TestGetRelations(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(relationsQuery).WithArgs("orders", "tenant_a").
		WillReturnRows(relationRows().
			AddRow("customer_id", "customers", "id").
			AddRow("pair_b", "pairs", "b"))
	expectRelease(mock)

	relations, err := in.GetRelations(context.Background(), "tenant_a", "orders")
	require.NoError(t, err)
	assert.Equal(t, Relations{
		"customer_id": {ForeignColumn: "id", ForeignTable: "customers"},
		"pair_b":      {ForeignColumn: "b", ForeignTable: "pairs"},
	}, relations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRelations_NoForeignKeys(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(relationsQuery).WithArgs("customers", "tenant_a").WillReturnRows(relationRows())
	expectRelease(mock)

	relations, err := in.GetRelations(context.Background(), "tenant_a", "customers")
	require.NoError(t, err)
	assert.NotNil(t, relations)
	assert.Empty(t, relations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRelations_RowShape(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(relationsQuery).WithArgs("orders", "tenant_a").
		WillReturnRows(sqlmock.NewRows([]string{"attname", "relname"}).AddRow("customer_id", "customers"))
	expectRelease(mock)

	_, err := in.GetRelations(context.Background(), "tenant_a", "orders")
	assert.ErrorIs(t, err, apperrors.ErrRowShape)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetKeyColumns(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(keyColumnsQuery).WithArgs("orders", "tenant_a").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "referenced_table", "referenced_column"}).
			AddRow("customer_id", "customers", "id").
			AddRow("pair_a", "pairs", "a").
			AddRow("pair_b", "pairs", "b"))
	expectRelease(mock)

	keys, err := in.GetKeyColumns(context.Background(), "tenant_a", "orders")
	require.NoError(t, err)
	assert.Equal(t, []KeyColumn{
		{Column: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id"},
		{Column: "pair_a", ReferencedTable: "pairs", ReferencedColumn: "a"},
		{Column: "pair_b", ReferencedTable: "pairs", ReferencedColumn: "b"},
	}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetKeyColumns_Empty(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(keyColumnsQuery).WithArgs("customers", "tenant_a").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "referenced_table", "referenced_column"}))
	expectRelease(mock)

	keys, err := in.GetKeyColumns(context.Background(), "tenant_a", "customers")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}
