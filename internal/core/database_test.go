// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/catalog-backend/internal/config"
)

func TestMigrations_EmbeddedSources(t *testing.T) {
	t.Parallel()

	db, err := sqlx.Open("pgx", "postgres://catalog@127.0.0.1:1/catalog")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := (&Database{DB: db}).migrations()
	require.NoError(t, err)

	sources := provider.ListSources()
	require.Len(t, sources, 1)
	assert.Equal(t, int64(1), sources[0].Version)
}

func TestMigrate_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDatabase(ctx, config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	version, err := db.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var id int64
	err = db.DB.QueryRowxContext(ctx,
		`INSERT INTO products (product, category) VALUES ($1, $2) RETURNING id`,
		"semi;colon", "a; b",
	).Scan(&id)
	require.NoError(t, err)

	_, err = db.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	require.NoError(t, err)
}
