package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fencecost/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPricebookPath, EnvPricebookSource, EnvPricebookDSN, EnvAddr, EnvStore, EnvStorePath, EnvLogLevel, EnvFormat} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, ":8000", c.Server.Addr)
	require.Equal(t, 30*time.Second, c.Server.RequestTimeout())
	require.Equal(t, "memory", c.Storage.Backend)
	require.Equal(t, "0.0833", c.Estimate.DefaultPostsPerFt.String())
	require.Equal(t, []string{"pricebook.csv", filepath.Join("samples", "pricebook.csv")}, c.PricebookCandidates())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fencecost.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"pricebook": {"path": "prices.xlsx", "sheet": "Prices"},
		"estimate": {"ratios": {"min_posts": 3, "pickets_per_ft": "2.5",
			"concrete_bags_per_post": 1, "pickets_per_fastener_box": 150,
			"pickets_per_ft_by_style": {"vinyl": 0.5}}},
		"storage": {"backend": "sqlite", "path": "quotes.db"}
	}`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"prices.xlsx", "pricebook.csv", filepath.Join("samples", "pricebook.csv")}, c.PricebookCandidates())
	require.Equal(t, "Prices", c.Pricebook.Sheet)
	require.Equal(t, int64(3), c.Estimate.Ratios.MinPosts)
	require.Equal(t, "2.5", c.Estimate.Ratios.PicketDensity("wood").String())
	require.Equal(t, "0.5", c.Estimate.Ratios.PicketDensity("vinyl").String())
	require.Equal(t, "sqlite", c.Storage.Backend)
	require.Equal(t, ":8000", c.Server.Addr, "untouched sections keep defaults")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, "text", c.Output.DefaultFormat)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": `), 0644))

	_, err := Load(path)
	require.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPricebookPath: "/srv/pricebook.csv",
		EnvAddr:          "127.0.0.1:9000",
		EnvStore:         "file",
		EnvLogLevel:      "debug",
		EnvFormat:        " ",
	}
	c := Default()
	c.ApplyEnv(func(k string) string { return env[k] })

	require.Equal(t, "/srv/pricebook.csv", c.Pricebook.Path)
	require.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	require.Equal(t, "file", c.Storage.Backend)
	require.Equal(t, "debug", c.Logging.Level)
	require.Equal(t, "text", c.Output.DefaultFormat, "blank values are ignored")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown source", mutate: func(c *Config) { c.Pricebook.Source = "ftp" }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Pricebook.Source = "postgres" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }},
		{name: "zero post spacing", mutate: func(c *Config) { c.Estimate.DefaultPostsPerFt = c.Estimate.DefaultPostsPerFt.Sub(c.Estimate.DefaultPostsPerFt) }},
		{name: "zero min posts", mutate: func(c *Config) { c.Estimate.Ratios.MinPosts = 0 }},
		{name: "zero rails per section", mutate: func(c *Config) { c.Estimate.Ratios.RailsPerSection = 0 }},
		{name: "zero concrete per post", mutate: func(c *Config) { c.Estimate.Ratios.ConcreteBagsPerPost = decimal.Zero }},
		{name: "zero fastener floor", mutate: func(c *Config) { c.Estimate.Ratios.MinFastenerBoxes = 0 }},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			require.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "fencecost.json")
	c := Default()
	c.Server.Addr = ":9100"
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9100", loaded.Server.Addr)
	require.True(t, c.Estimate.Ratios.ConcreteBagsPerPost.Equal(loaded.Estimate.Ratios.ConcreteBagsPerPost))
}
