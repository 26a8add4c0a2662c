package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect selects the driver and the migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	Dialect Dialect
	log     *zap.Logger
}

// New connects to Postgres. A DSN that names no sslmode is retried with
// sslmode=disable when the first ping fails, for local servers without TLS.
func New(ctx context.Context, connectionString string, logger *zap.Logger) (*DB, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("database connection string is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := openPostgres(ctx, connectionString)
	if err != nil && !strings.Contains(strings.ToLower(connectionString), "sslmode") {
		logger.Info("retrying database connection with SSL disabled", zap.Error(err))
		sqlDB, err = openPostgres(ctx, withParam(connectionString, "sslmode=disable"))
	}
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return &DB{DB: sqlDB, Dialect: DialectPostgres, log: logger}, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqlDB, nil
}

func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// OpenSQLite opens (creating if needed) an SQLite database file.
func OpenSQLite(ctx context.Context, file string, logger *zap.Logger) (*DB, error) {
	if file == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", file+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return &DB{DB: sqlDB, Dialect: DialectSQLite, log: logger}, nil
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Rebind rewrites $n placeholders into the form the dialect expects.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectSQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// RunMigrations applies the embedded migrations for the connection's dialect
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations, err := readMigrations(migrationsFS, path.Join("migrations", string(db.Dialect)))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	if len(migrations) == 0 {
		db.log.Info("no migrations found")
		return nil
	}

	// Ensure migration tracking table exists
	if err := db.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(ctx, m.Number)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			db.log.Debug("migration already applied", zap.Int("version", m.Number))
			continue
		}
		db.log.Info("applying migration", zap.Int("version", m.Number), zap.String("name", m.Name), zap.String("dialect", string(db.Dialect)))
		if err := db.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one migration and records it in the same transaction.
func (db *DB) apply(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to execute migration %d: %w", m.Number, err)
	}
	if _, err := tx.ExecContext(ctx,
		db.Rebind("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)"),
		m.Number, m.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Number, err)
	}
	return tx.Commit()
}

// Migration represents a single migration file
type Migration struct {
	Number int
	Name   string
	SQL    string
}

// readMigrations reads all migration files under dir in fsys
func readMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	var migrations []Migration

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		filename := d.Name()
		// "001_conversation_index.sql" -> 1
		parts := strings.Split(filename, "_")
		if len(parts) < 2 {
			return nil
		}

		number, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}

		sqlBytes, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		migrations = append(migrations, Migration{
			Number: number,
			Name:   strings.TrimSuffix(strings.Join(parts[1:], "_"), ".sql"),
			SQL:    string(sqlBytes),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Number < migrations[j].Number
	})

	return migrations, nil
}

// createMigrationTable creates the table that tracks which migrations have been applied
func (db *DB) createMigrationTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// isMigrationApplied checks if a migration with the given number has been applied
func (db *DB) isMigrationApplied(ctx context.Context, number int) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		db.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = $1"),
		number,
	).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
