package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fencecost/adapters/storage"
	"fencecost/internal/config"
	"fencecost/internal/errors"
)

const pricebookCSV = `sku,description,unit,unit_price,category
POST,Post,ea,20.00,post
RAIL,Rail,ea,8.00,rail
`

func TestNewDiscoversPricebook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricebook.csv")
	require.NoError(t, os.WriteFile(path, []byte(pricebookCSV), 0o644))

	cfg := config.Default()
	cfg.Pricebook.SearchPaths = []string{filepath.Join(dir, "missing.csv"), path}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, path, a.Source)
	require.Equal(t, 2, a.Engine.Catalog().Len())
}

func TestMissingExplicitPathFallsBack(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "pricebook.csv")
	require.NoError(t, os.WriteFile(fallback, []byte(pricebookCSV), 0o644))

	cfg := config.Default()
	cfg.Pricebook.Path = filepath.Join(dir, "nope.csv")
	cfg.Pricebook.SearchPaths = []string{fallback}

	_, source, err := LoadCatalog(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, fallback, source)
}

func TestNoPricebookFound(t *testing.T) {
	cfg := config.Default()
	cfg.Pricebook.SearchPaths = []string{filepath.Join(t.TempDir(), "absent.csv")}

	_, _, err := LoadCatalog(context.Background(), cfg)
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.TypeConfig))
	require.Contains(t, err.Error(), "no pricebook found")
}

func TestOpenStore(t *testing.T) {
	cfg := config.Default()
	s, err := OpenStore(cfg)
	require.NoError(t, err)
	require.IsType(t, &storage.MemoryStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Backend = "file"
	cfg.Storage.Path = t.TempDir()
	s, err = OpenStore(cfg)
	require.NoError(t, err)
	require.IsType(t, &storage.FileStore{}, s)
}
