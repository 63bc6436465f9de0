package migration

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopadmin/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEmbeddedSource(t *testing.T) {
	src, err := Embedded(migrations.FS)()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, name, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init_identity", name)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE")
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_add_index.up.sql"), []byte("SELECT 1;"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_add_index.down.sql"), []byte("SELECT 1;"), 0o600))

	src, err := Dir(dir)()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(3), first)
}

func TestDirSource_Missing(t *testing.T) {
	_, err := Dir(filepath.Join(t.TempDir(), "nope"))()
	assert.Error(t, err)
}

func TestOpen_SourceError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(db, Dir(filepath.Join(t.TempDir(), "nope")), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open migration source")
}
