package main

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql":        {Data: []byte("SELECT 2 FROM `{{PROJECT_ID}}.{{DATASET_ID}}.t`")},
		"m/0001_first.sql":         {Data: []byte("SELECT 1")},
		"m/001_invalid.sql":        {Data: []byte("ignored")},
		"m/0003_test":              {Data: []byte("ignored")},
		"m/0004.sql":               {Data: []byte("ignored")},
		"m/invalid_0005_test.sql":  {Data: []byte("ignored")},
		"m/nested/0006_nested.sql": {Data: []byte("ignored")},
	}

	migrations, err := readMigrations(fsys, "m", "proj", "ds")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "second", migrations[1].Name)
	assert.Equal(t, "SELECT 2 FROM `proj.ds.t`", migrations[1].SQL)

	// Checksums ignore the target dataset.
	other, err := readMigrations(fsys, "m", "proj", "other")
	require.NoError(t, err)
	assert.Equal(t, migrations[1].Checksum, other[1].Checksum)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1")},
		"m/0001_b.sql": {Data: []byte("SELECT 2")},
	}
	_, err := readMigrations(fsys, "m", "p", "d")
	assert.ErrorContains(t, err, "duplicate migration version 0001")
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := readMigrations(embeddedMigrations, "migrations", "proj", "finance")
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotContains(t, m.SQL, "{{")
		assert.Contains(t, m.SQL, "`proj.finance.")
	}
	assert.True(t, strings.Contains(migrations[2].SQL, "insight_id"))
}

func TestPendingAndChangedMigrations(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "a", Checksum: "x"},
		{Version: 2, Name: "b", Checksum: "y"},
		{Version: 3, Name: "c", Checksum: "z"},
	}
	applied := []AppliedMigration{
		{Version: 1, Checksum: "x"},
		{Version: 2, Checksum: "changed"},
	}

	pending := pendingMigrations(migrations, applied)
	require.Len(t, pending, 1)
	assert.Equal(t, 3, pending[0].Version)

	changed := checksumMismatches(migrations, applied)
	require.Len(t, changed, 1)
	assert.Equal(t, 2, changed[0].Version)
}
