package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.User = "someone"
	cfg.Series = []Series{
		{Name: "Example", AnilistID: 42, Provider: "mangadex", SiteID: "abc"},
	}
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("missing user", func(t *testing.T) {
		cfg := validConfig()
		cfg.User = ""

		var vErr ErrValidation
		require.ErrorAs(t, cfg.Validate(), &vErr)
		assert.Equal(t, "user", vErr.Field)
	})

	t.Run("missing series name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Series[0].Name = ""

		var vErr ErrValidation
		require.ErrorAs(t, cfg.Validate(), &vErr)
		assert.Equal(t, "series[0].name", vErr.Field)
	})

	t.Run("bad anilist id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Series[0].AnilistID = 0

		var vErr ErrValidation
		require.ErrorAs(t, cfg.Validate(), &vErr)
	})

	t.Run("missing site id", func(t *testing.T) {
		cfg := validConfig()
		cfg.Series[0].SiteID = ""

		var vErr ErrValidation
		require.ErrorAs(t, cfg.Validate(), &vErr)
	})

	t.Run("unrecognized provider passes validation", func(t *testing.T) {
		// Dispatch reports unknown providers; validation only checks
		// for presence.
		cfg := validConfig()
		cfg.Series[0].Provider = "nyaa"
		assert.NoError(t, cfg.Validate())
	})
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := validConfig()
	require.NoError(t, SaveYAML(cfg, path))

	loaded, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMergeConfig(t *testing.T) {
	cfg := validConfig()

	mergeConfig(cfg, Options{
		User:          "override",
		Debug:         true,
		APISpacingMs:  1500,
		APIMaxRetries: 3,
	})

	assert.Equal(t, "override", cfg.User)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 1500, cfg.APISpacingMs)
	assert.Equal(t, 3, cfg.APIMaxRetries)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{APISpacingMs: -5, APIMaxRetries: -1}
	normalizeDefaults(cfg)

	assert.Equal(t, 700, cfg.APISpacingMs)
	assert.Equal(t, 0, cfg.APIMaxRetries)
}

func TestProfileStore(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitDefault()
	require.NoError(t, err)
	assert.FileExists(t, path)

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Default", label)

	_, err = Create("Friend")
	require.NoError(t, err)

	list, err := List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[0].Active)
	assert.Equal(t, "Friend", list[1].Label)

	require.NoError(t, Switch("Friend"))
	active, err := ActivePath()
	require.NoError(t, err)
	assert.Equal(t, PathByLabel("Friend"), active)

	require.NoError(t, Rename("Friend", "Partner"))
	label, err = CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Partner", label)

	require.NoError(t, Remove("Partner"))
	label, err = CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Default", label, "removing the active profile falls back to Default")

	assert.Error(t, Remove("Default"))
	assert.Error(t, Switch("Missing"))
}

func TestAppendSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveYAML(validConfig(), path))

	added := Series{Name: "Another", AnilistID: 7, Provider: "viz", SiteID: "another"}
	require.NoError(t, AppendSeries(path, added))

	loaded, err := loadYAML(path)
	require.NoError(t, err)
	require.Len(t, loaded.Series, 2)
	assert.Equal(t, added, loaded.Series[1])

	err = AppendSeries(path, Series{Name: "Dup", AnilistID: 42, Provider: "viz", SiteID: "dup"})
	assert.Error(t, err, "duplicate anilist_id is rejected")
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := LoadMerged(Options{User: "cli-user"})
	require.NoError(t, err)
	assert.Equal(t, "cli-user", cfg.User)
	assert.Contains(t, used, "default config in memory")
}
