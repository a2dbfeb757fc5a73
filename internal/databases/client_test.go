package databases

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

func mockClient(t *testing.T, engine string) (*SQLClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &SQLClient{engine: engine, db: db}, mock
}

func TestFetchProjectsColumns(t *testing.T) {
	c, mock := mockClient(t, "postgres")
	mock.ExpectQuery("SELECT sku, title FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"sku", "title"}).
			AddRow("A-1", []byte("Widget")).
			AddRow("A-2", "Gadget"))

	records, err := c.Fetch(context.Background(), "products", []string{"sku", "title"}, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Widget", records[0]["title"])
	require.Equal(t, "A-2", records[1]["sku"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchWithLimit(t *testing.T) {
	c, mock := mockClient(t, "postgres")
	mock.ExpectQuery("SELECT * FROM products LIMIT 5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err := c.Fetch(context.Background(), "products", nil, 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMssqlUsesTop(t *testing.T) {
	c, mock := mockClient(t, "mssql")
	mock.ExpectQuery("SELECT TOP 5 * FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err := c.Fetch(context.Background(), "products", nil, 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteBuildsInsertWithSortedColumns(t *testing.T) {
	c, mock := mockClient(t, "postgres")
	mock.ExpectExec("INSERT INTO products (sku, title) VALUES ($1, $2)").
		WithArgs("A-1", "Widget").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := c.Write(context.Background(), "products", connector.Record{
		"title": "Widget",
		"sku":   "A-1",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteMysqlPlaceholders(t *testing.T) {
	c, mock := mockClient(t, "mysql")
	mock.ExpectExec("INSERT INTO products (sku, title) VALUES (?, ?)").
		WithArgs("A-1", "Widget").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := c.Write(context.Background(), "products", connector.Record{
		"sku":   "A-1",
		"title": "Widget",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFailureIsWriteError(t *testing.T) {
	c, mock := mockClient(t, "postgres")
	mock.ExpectExec("INSERT INTO products (sku) VALUES ($1)").
		WithArgs("A-1").
		WillReturnError(context.DeadlineExceeded)

	err := c.Write(context.Background(), "products", connector.Record{"sku": "A-1"})
	var werr *connector.WriteError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "products", werr.Collection)
}

func TestWriteEmptyRecord(t *testing.T) {
	c, _ := mockClient(t, "postgres")
	err := c.Write(context.Background(), "products", connector.Record{})
	var werr *connector.WriteError
	require.ErrorAs(t, err, &werr)
}

func TestTablesSqlite(t *testing.T) {
	c, mock := mockClient(t, "sqlite")
	mock.ExpectQuery(sqliteTablesQuery).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("products").AddRow("orders"))

	tables, err := c.Tables(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"products", "orders"}, tables)
}
