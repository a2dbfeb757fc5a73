// Package databases implements the record source/sink contract for SQL
// databases and the schema discovery used by connection-setup flows.
package databases

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

// SQLClient is one open customer database.
type SQLClient struct {
	engine string
	db     *sql.DB
}

// Open connects to a customer database and verifies it with a ping.
func Open(ctx context.Context, engine, host string, port int, dbName, username, password string, params map[string]any) (*SQLClient, error) {
	dsn, err := BuildDSN(engine, host, port, dbName, username, password, params)
	if err != nil {
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	driver, err := DriverName(engine)
	if err != nil {
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	return &SQLClient{engine: engine, db: db}, nil
}

func (c *SQLClient) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &connector.ConnectionError{Side: "database", Err: err}
	}
	return nil
}

// Fetch reads rows from a table, honoring the column projection when given.
func (c *SQLClient) Fetch(ctx context.Context, table string, fields []string, limit int) ([]connector.Record, error) {
	cols := "*"
	if len(fields) > 0 {
		cols = strings.Join(fields, ", ")
	}

	var query string
	if limit > 0 && c.engine == "mssql" {
		query = fmt.Sprintf("SELECT TOP %d %s FROM %s", limit, cols, table)
	} else if limit > 0 {
		query = fmt.Sprintf("SELECT %s FROM %s LIMIT %d", cols, table, limit)
	} else {
		query = fmt.Sprintf("SELECT %s FROM %s", cols, table)
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []connector.Record
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(connector.Record, len(names))
		for i, name := range names {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[name] = v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Write inserts one record. Columns are ordered deterministically so the
// statement shape is stable for a given record set.
func (c *SQLClient) Write(ctx context.Context, table string, rec connector.Record) error {
	if len(rec) == 0 {
		return &connector.WriteError{Collection: table, Err: fmt.Errorf("empty record")}
	}

	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = c.placeholder(i + 1)
		args[i] = rec[col]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return &connector.WriteError{Collection: table, Err: err}
	}
	return nil
}

func (c *SQLClient) Close() error {
	return c.db.Close()
}

func (c *SQLClient) placeholder(n int) string {
	switch c.engine {
	case "postgres", "postgresql":
		return fmt.Sprintf("$%d", n)
	case "mssql":
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}
