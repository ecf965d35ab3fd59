package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/honeynil/bank-ledger/internal/config"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const sqliteBusyTimeoutMS = 5000

// Open connects to the configured database and checks it is reachable.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn := cfg.PostgresDSN
	if dialect == SQLite {
		dsn = SQLiteDSN(cfg.Path, cfg.ForeignKeys)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// a single writer connection avoids SQLITE_BUSY between pooled conns
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	slog.Info("connected to database", "driver", dialect, "foreign_keys", cfg.ForeignKeys || dialect == Postgres)
	return db, dialect, nil
}

func SQLiteDSN(path string, foreignKeys bool) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeoutMS))
	if foreignKeys {
		q.Add("_pragma", "foreign_keys(1)")
	}
	return "file:" + path + "?" + q.Encode()
}
