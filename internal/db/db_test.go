package db

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReadMigrationsSortsAndSkipsForeignFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_second.sql":    {Data: []byte("SELECT 2")},
		"m/001_first_one.sql": {Data: []byte("SELECT 1")},
		"m/README.md":         {Data: []byte("docs")},
		"m/notes.sql":         {Data: []byte("SELECT 0")},
	}
	got, err := readMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Migration{Number: 1, Name: "first_one", SQL: "SELECT 1"}, got[0])
	assert.Equal(t, 2, got[1].Number)
}

func TestEmbeddedMigrationsPerDialect(t *testing.T) {
	for _, d := range []Dialect{DialectPostgres, DialectSQLite} {
		got, err := readMigrations(migrationsFS, "migrations/"+string(d))
		require.NoError(t, err)
		require.NotEmpty(t, got, d)
		assert.Contains(t, got[0].SQL, "conversation_index")
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	lite := &DB{Dialect: DialectSQLite}
	q := "SELECT a FROM t WHERE x = $1 AND y = $2 AND z = '$'"
	assert.Equal(t, q, pg.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x = ?1 AND y = ?2 AND z = '$'", lite.Rebind(q))
}

func TestNewRequiresConnectionString(t *testing.T) {
	_, err := New(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestSQLiteMigrationsAreRepeatable(t *testing.T) {
	ctx := context.Background()
	d, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "hayat.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	require.NoError(t, d.RunMigrations(ctx))
	require.NoError(t, d.RunMigrations(ctx))
	require.NoError(t, d.HealthCheck(ctx))

	var n int
	require.NoError(t, d.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)

	_, err = d.ExecContext(ctx, d.Rebind("INSERT INTO conversation_index (user_id, mode) VALUES ($1, $2)"), "u1", "normal")
	require.NoError(t, err)
}

func TestWithParam(t *testing.T) {
	assert.Equal(t, "postgres://h/db?sslmode=disable", withParam("postgres://h/db", "sslmode=disable"))
	assert.Equal(t, "postgres://h/db?x=1&sslmode=disable", withParam("postgres://h/db?x=1", "sslmode=disable"))
}
