package introspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

func TestDescribeNamespace(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})
	ctx := context.Background()

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(listTablesQuery).WithArgs("tenant_a").
		WillReturnRows(tableRows("customers", "r", "active_customers", "v"))
	expectRelease(mock)

	// customers: every operation
	expectScope(mock, "tenant_a")
	mock.ExpectQuery(columnInfoQuery).WithArgs("tenant_a", "customers").
		WillReturnRows(columnInfoRows().AddRow("id", "NO", nil, nil))
	mock.ExpectQuery(`SELECT * FROM "tenant_a"."customers" LIMIT 0`).
		WillReturnRows(mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("INT4", int64(0))))
	expectRelease(mock)

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(indexFlagsQuery).WithArgs("customers", "tenant_a").
		WillReturnRows(indexFlagRows().AddRow("id", "1", true, true))
	expectRelease(mock)

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(relationsQuery).WithArgs("customers", "tenant_a").WillReturnRows(relationRows())
	expectRelease(mock)

	expectScope(mock, "public")
	mock.ExpectQuery(constraintsQuery).WithArgs("public", "customers").WillReturnRows(constraintRows())
	mock.ExpectQuery(indexesQuery).WithArgs("customers").
		WillReturnRows(indexDefinitionRows().AddRow("customers_pkey", "{id}", true, true, "{ASC}", "btree", nil, nil))
	expectRelease(mock)

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(keyColumnsQuery).WithArgs("customers", "tenant_a").
		WillReturnRows(relationRows())
	expectRelease(mock)

	// active_customers: columns only
	expectScope(mock, "tenant_a")
	mock.ExpectQuery(columnInfoQuery).WithArgs("tenant_a", "active_customers").
		WillReturnRows(columnInfoRows().AddRow("id", "YES", nil, nil))
	mock.ExpectQuery(`SELECT * FROM "tenant_a"."active_customers" LIMIT 0`).
		WillReturnRows(mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("INT4", int64(0))))
	expectRelease(mock)

	snap, err := in.DescribeNamespace(ctx, "tenant_a")
	require.NoError(t, err)
	assert.Equal(t, "tenant_a", snap.Namespace)
	require.Len(t, snap.Tables, 2)

	customers := snap.Tables[0]
	assert.Equal(t, "customers", customers.Name)
	require.Len(t, customers.Columns, 1)
	assert.Equal(t, IndexSummary{"id": {PrimaryKey: true, Unique: true}}, customers.Indexes)
	assert.Empty(t, customers.Relations)
	assert.Contains(t, customers.Constraints, "customers_pkey")
	assert.Empty(t, customers.KeyColumns)

	view := snap.Tables[1]
	assert.Equal(t, TableKindView, view.Kind)
	require.Len(t, view.Columns, 1)
	assert.True(t, view.Columns[0].Nullable)
	assert.Nil(t, view.Indexes)
	assert.Nil(t, view.Constraints)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDescribeNamespace_FailsFast(t *testing.T) {
	in, mock := newTestIntrospector(t, Options{})

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(listTablesQuery).WithArgs("tenant_a").
		WillReturnRows(tableRows("orders", "r", "customers", "r"))
	expectRelease(mock)

	expectScope(mock, "tenant_a")
	mock.ExpectQuery(columnInfoQuery).WithArgs("tenant_a", "orders").WillReturnRows(columnInfoRows())
	mock.ExpectQuery(`SELECT * FROM "tenant_a"."orders" LIMIT 0`).
		WillReturnRows(mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("INT4", int64(0))))
	expectRelease(mock)

	snap, err := in.DescribeNamespace(context.Background(), "tenant_a")
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, apperrors.ErrInconsistentMetadata)
	require.NoError(t, mock.ExpectationsWereMet(), "customers must not be visited after orders failed")
}
