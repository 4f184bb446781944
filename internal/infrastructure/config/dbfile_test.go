package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBFileSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DBFileName)

	saved := &DBFileConfig{
		Host: "db.internal", User: "boards", Password: "secret",
		Port: 5433, Name: "card_manager",
	}
	require.NoError(t, SaveDBFile(path, saved))

	loaded, err := LoadDBFile(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadDBFileMissing(t *testing.T) {
	_, err := LoadDBFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, Name: "card_manager",
		User: "postgres", Password: "postgres",
		SSLMode: "disable", MaxOpenConns: 25,
	}

	cfg.ApplyFileConfig(&DBFileConfig{Host: "db.internal", User: "boards", Port: 5433})
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "card_manager", cfg.Name, "empty file name keeps the configured database")
	assert.Equal(t, "disable", cfg.SSLMode, "pool and SSL settings stay env-driven")
	assert.Equal(t, 25, cfg.MaxOpenConns)

	cfg.ApplyFileConfig(nil)
	assert.Equal(t, "db.internal", cfg.Host)
}
