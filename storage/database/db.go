package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/neurolearn/neuro/core"
)

// Engines
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	sqlx.BindDriver(SQLite, sqlx.QUESTION)
	goose.SetBaseFS(migrations)
}

func postgresDSN(dbName string, admin bool, conf core.DatabaseConfig) string {
	user := url.UserPassword(conf.User, conf.Password)
	if admin && conf.AdminUser != "" {
		user = url.UserPassword(conf.AdminUser, conf.AdminPassword)
	}

	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// Open connects to the configured database engine and waits for it to be ready.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch conf.Engine {
	case Postgres:
		db, err = sqlx.Open(Postgres, postgresDSN(conf.Name, false, conf))
	case SQLite:
		db, err = sqlx.Open(SQLite, sqliteDSN(conf.Path))
		if err == nil {
			// every sqlite connection of an in-memory database is a distinct database
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Engine)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func exists(db *sql.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := db.QueryRow(query, args...).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

func createAppUser(db *sql.DB, conf core.DatabaseConfig) error {
	if conf.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", conf.User, conf.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sql.DB, conf core.DatabaseConfig) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the app user and the database on Postgres. SQLite databases are created on open.
func CreateIfNotExist(conf core.DatabaseConfig) error {
	if conf.Engine != Postgres {
		return nil
	}

	// connect as admin
	adminDB, err := sql.Open(Postgres, postgresDSN("postgres", true, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = adminDB.Close() }()
	if err = ping(adminDB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(adminDB, conf); err != nil {
		return err
	}

	// create DB as app user
	db, err := sql.Open(Postgres, postgresDSN("postgres", false, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()
	return createDB(db, conf)
}

func dialect(engine string) string {
	if engine == SQLite {
		return "sqlite3"
	}
	return engine
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset, up-to...) against the embedded migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, engine, command string, args ...string) error {
	if err := goose.SetDialect(dialect(engine)); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := goose.RunContext(ctx, command, db.DB, "migrations", args...); err != nil {
		return errors.Wrapf(err, "running migrations %q", command)
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB, engine string) error {
	return RunMigrations(ctx, db, engine, "up")
}
