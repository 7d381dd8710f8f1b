package migration

import (
	"testing"

	"github.com/bizgrid/backend/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Driver(t *testing.T) {
	t.Run("embedded files", func(t *testing.T) {
		d, url, err := Source{FS: migrations.FS, Path: "ignored"}.driver()
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "iofs", url)
		_ = d.Close()
	})

	t.Run("directory", func(t *testing.T) {
		d, url, err := Source{Path: "/srv/migrations"}.driver()
		require.NoError(t, err)
		assert.Nil(t, d)
		assert.Equal(t, "file:///srv/migrations", url)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := Source{}.driver()
		assert.Error(t, err)
	})
}

func TestEmbeddedMigrations_Paired(t *testing.T) {
	d, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer d.Close()

	version, err := d.First()
	require.NoError(t, err)
	count := 0
	for {
		count++
		up, _, err := d.ReadUp(version)
		require.NoError(t, err, "version %d has no up file", version)
		_ = up.Close()
		down, _, err := d.ReadDown(version)
		require.NoError(t, err, "version %d has no down file", version)
		_ = down.Close()

		next, err := d.Next(version)
		if err != nil {
			break
		}
		assert.Greater(t, next, version)
		version = next
	}
	assert.Equal(t, 4, count)
}
