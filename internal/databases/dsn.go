package databases

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// DriverName maps an engine kind to its database/sql driver.
func DriverName(engine string) (string, error) {
	switch engine {
	case "postgres", "postgresql":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	case "mssql":
		return "sqlserver", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database engine: %s", engine)
	}
}

// BuildDSN builds the connection string for an engine kind. params carries
// engine-specific extras (e.g. sslmode for postgres).
func BuildDSN(engine, host string, port int, dbName, username, password string, params map[string]any) (string, error) {
	switch engine {
	case "postgres", "postgresql":
		sslMode := "disable"
		if v, ok := params["sslmode"].(string); ok && v != "" {
			sslMode = v
		}
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			username,
			url.QueryEscape(password),
			host,
			port,
			dbName,
			sslMode,
		), nil
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			username,
			password,
			host,
			port,
			dbName,
		), nil
	case "mssql":
		return fmt.Sprintf(
			"sqlserver://%s:%s@%s:%d?database=%s",
			username,
			url.QueryEscape(password),
			host,
			port,
			dbName,
		), nil
	case "sqlite":
		// dbName is the file path; host/port/credentials do not apply.
		return dbName, nil
	default:
		return "", fmt.Errorf("unsupported database engine: %s", engine)
	}
}

// TestConnection opens and pings a database with a short timeout.
func TestConnection(ctx context.Context, engine, dsn string) error {
	driver, err := DriverName(engine)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.PingContext(ctx)
}
