package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/poemlink/assets"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "app.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys, err := assets.Migrations()
	require.NoError(t, err)
	require.NoError(t, Migrate(db, fsys))
	require.NoError(t, Migrate(db, fsys))

	var applied int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&applied))
	assert.Equal(t, 2, applied)

	_, err = db.Exec(`INSERT INTO stage_completions (player_id, level, stage) VALUES ('p', 'elementary', 1)`)
	assert.NoError(t, err)
}

func TestMigrateReportsBadScript(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{"001_bad.sql": {Data: []byte("CREATE TABLE (")}}
	err = Migrate(db, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_bad.sql")
}
