package databases

import (
	"context"
	"fmt"
)

// Schema discovery feeds the connection-setup endpoints; the sync path never
// calls it.

type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

type TableSchema struct {
	TableName   string   `json:"table_name"`
	Columns     []Column `json:"columns"`
	PrimaryKeys []string `json:"primary_keys"`
}

const (
	pgTablesQuery = `
    SELECT table_name
    FROM information_schema.tables
    WHERE table_schema = 'public'
    ORDER BY table_name ASC
    `
	mysqlTablesQuery = `
    SELECT table_name
    FROM information_schema.tables
    WHERE table_schema = DATABASE()
    ORDER BY table_name ASC
    `
	mssqlTablesQuery = `
    SELECT table_name
    FROM information_schema.tables
    WHERE table_type = 'BASE TABLE'
    ORDER BY table_name ASC
    `
	sqliteTablesQuery = `
    SELECT name
    FROM sqlite_master
    WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
    ORDER BY name ASC
    `
)

// Tables lists the table names of the connected database.
func (c *SQLClient) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch c.engine {
	case "postgres", "postgresql":
		query = pgTablesQuery
	case "mysql":
		query = mysqlTablesQuery
	case "mssql":
		query = mssqlTablesQuery
	case "sqlite":
		query = sqliteTablesQuery
	default:
		return nil, fmt.Errorf("unsupported database engine: %s", c.engine)
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableSchema returns columns and primary keys for one table.
func (c *SQLClient) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	if c.engine == "sqlite" {
		return c.sqliteTableSchema(ctx, table)
	}

	query := `
        SELECT column_name, data_type, is_nullable
        FROM information_schema.columns
        WHERE table_name = ` + c.placeholder(1) + `
        ORDER BY ordinal_position
    `
	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schema := &TableSchema{TableName: table}
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pks, err := c.primaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	schema.PrimaryKeys = pks
	pkSet := make(map[string]bool, len(pks))
	for _, pk := range pks {
		pkSet[pk] = true
	}
	for i := range schema.Columns {
		schema.Columns[i].PrimaryKey = pkSet[schema.Columns[i].Name]
	}
	return schema, nil
}

func (c *SQLClient) primaryKeys(ctx context.Context, table string) ([]string, error) {
	query := `
        SELECT kcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.table_name = kcu.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = ` + c.placeholder(1) + `
        ORDER BY kcu.ordinal_position
    `
	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pks = append(pks, name)
	}
	return pks, rows.Err()
}

func (c *SQLClient) sqliteTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schema := &TableSchema{TableName: table}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col := Column{Name: name, Type: ctype, Nullable: notNull == 0, PrimaryKey: pk > 0}
		schema.Columns = append(schema.Columns, col)
		if col.PrimaryKey {
			schema.PrimaryKeys = append(schema.PrimaryKeys, name)
		}
	}
	return schema, rows.Err()
}
