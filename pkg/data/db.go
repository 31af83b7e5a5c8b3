package data

import (
	"database/sql"
	"embed"
	"strconv"
	"strings"

	"log/slog"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	AuditFileName string = "audit.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// AuditDB is the run history store. It is backed by a sqlite file or,
// when the DSN is a postgres URL, by a postgres database.
type AuditDB struct {
	db     *sql.DB
	driver string
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres
	}
	return driverSQLite
}

// OpenAudit opens the audit store at dsn and makes sure its schema exists.
func OpenAudit(dsn string) (*AuditDB, error) {
	if dsn == "" {
		return nil, errors.New("audit dsn not specified")
	}

	driver := driverFor(dsn)
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	ddl := "sql/audit.sql"
	if driver == driverPostgres {
		ddl = "sql/audit_pg.sql"
	}

	b, err := f.ReadFile(ddl)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to read the schema creation file")
	}

	slog.Debug("ensuring audit schema", "driver", driver)
	if _, err := conn.Exec(string(b)); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to create audit schema")
	}

	return &AuditDB{db: conn, driver: driver}, nil
}

// Close closes the underlying connection.
func (a *AuditDB) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Driver returns the name of the sql driver in use.
func (a *AuditDB) Driver() string {
	return a.driver
}

// rebind converts ? placeholders to the positional form postgres expects.
func (a *AuditDB) rebind(q string) string {
	if a.driver != driverPostgres {
		return q
	}

	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func openSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open(driverSQLite, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}
