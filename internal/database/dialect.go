package database

import "fmt"

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case SQLite, Postgres:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

func (d Dialect) idColumn() string {
	if d == Postgres {
		return "id SERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// moneyType holds balances and sent amounts. SQLite has no exact decimal
// type: amounts are bound as decimal text and scanned back through the
// shortest float representation, which returns the same decimal.
func (d Dialect) moneyType() string {
	if d == Postgres {
		return "NUMERIC"
	}
	return "REAL"
}
