package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options describe how to reach the database.  Path is only used by the
// SQLite driver; the remaining fields only by MySQL.
type Options struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string
}

// MySQLDSN builds the DSN used for MySQL connections.
func MySQLDSN(o Options) string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = o.Host + ":" + o.Port
	cfg.DBName = o.Name
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Conditional UPDATEs report matched rows, not changed rows, so a
	// compare-and-swap that rewrites identical values still counts.
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch o.Driver {
	case DriverMySQL, "":
		db, err = sql.Open(DriverMySQL, MySQLDSN(o))
		if err != nil {
			return nil, err
		}
		// Pool settings
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	case DriverSQLite:
		path := o.Path
		if path == "" {
			path = ":memory:"
		}
		db, err = sql.Open(DriverSQLite, path+"?_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, err
		}
		// One connection: SQLite serializes writers anyway and an in-memory
		// database lives only as long as its connection.
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", o.Driver)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
