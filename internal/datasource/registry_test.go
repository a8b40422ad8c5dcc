package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosYCo/test-data-generate/internal/config"
)

func newTestRegistry(t *testing.T) (*Registry, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.LoadConfigFrom(dir)
	require.NoError(t, err)
	return NewRegistry(cfg), cfg
}

func TestRegistryAddGetRemove(t *testing.T) {
	reg, cfg := newTestRegistry(t)

	added, err := reg.Add(DataSource{
		Name: "Shop DB", Type: "postgres", Host: "localhost", Port: 5432,
		Database: "shop", User: "app", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "shop-db", added.Key)

	// Password lives in the dotenv file, never in tdg.toml
	raw, err := os.ReadFile(cfg.ConfigFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[data_sources.shop-db]")
	assert.NotContains(t, string(raw), "secret")
	_, err = os.Stat(filepath.Join(cfg.ConfigDir(), ".env.shop-db"))
	require.NoError(t, err)

	// A fresh load sees the same source with secrets restored
	reloaded, err := config.LoadFile(cfg.ConfigFilePath)
	require.NoError(t, err)
	got, err := NewRegistry(reloaded).Get("shop-db")
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, "Shop DB", got.Name)
	assert.Equal(t, 5432, got.Port)

	require.NoError(t, reg.Remove("shop-db"))
	_, err = reg.Get("shop-db")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(filepath.Join(cfg.ConfigDir(), ".env.shop-db"))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistryDeduplicatesKeys(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Add(DataSource{Name: "local", Type: "sqlite", FilePath: "a.db"})
	require.NoError(t, err)
	second, err := reg.Add(DataSource{Name: "Local", Type: "sqlite", FilePath: "b.db"})
	require.NoError(t, err)

	assert.Equal(t, "local", first.Key)
	assert.Equal(t, "local-2", second.Key)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "local", list[0].Key)
	assert.Equal(t, "local-2", list[1].Key)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	reg, cfg := newTestRegistry(t)

	_, err := reg.Add(DataSource{Name: "nothing", Type: "sqlite"})
	require.Error(t, err)
	assert.Empty(t, cfg.DataSources)
}

func TestRegistryRemoveUnknown(t *testing.T) {
	reg, _ := newTestRegistry(t)
	assert.ErrorIs(t, reg.Remove("ghost"), ErrNotFound)
}
