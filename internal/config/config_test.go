package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 38471, cfg.App.Port)
	assert.Equal(t, 1800, cfg.Cache.TTLSeconds)

	assert.Equal(t, 5, cfg.Sources.BOE.BaseScore)
	assert.Equal(t, 4, cfg.Sources.EUFunding.BaseScore)
	assert.Equal(t, 6, cfg.Sources.CDTI.BaseScore)
	assert.Equal(t, 4, cfg.Sources.CDTI.MinScore)
	assert.Equal(t, 7, cfg.Sources.IDAE.BaseScore)
	assert.Equal(t, 5, cfg.Sources.IDAE.MinScore)

	// scraped sites keep their politeness pacing
	assert.GreaterOrEqual(t, cfg.Sources.CDTI.DelaySeconds, 1.0)
	assert.GreaterOrEqual(t, cfg.Sources.IDAE.DelaySeconds, 1.0)

	assert.NotEmpty(t, cfg.Policy.RelevanceAny)
	assert.NotEmpty(t, cfg.Policy.SectorKeywords["Technology"])
	assert.Len(t, cfg.Sources.CDTI.Sections, 3)
}

func TestSourceSettingsDurations(t *testing.T) {
	s := SourceSettings{TimeoutSeconds: 15, DelaySeconds: 0.3}
	assert.Equal(t, 15*time.Second, s.Timeout())
	assert.Equal(t, 300*time.Millisecond, s.Delay())
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9999
cache:
  ttl_seconds: 600
sources:
  idae:
    enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.App.Port)
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
	assert.False(t, cfg.Sources.IDAE.Enabled)
	// untouched knobs keep their defaults, policy tables included
	assert.Equal(t, 5, cfg.Sources.BOE.BaseScore)
	assert.NotEmpty(t, cfg.Policy.RegionKeywords["Madrid"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		_, vr := NormalizeAndValidate(Default())
		assert.True(t, vr.OK())
		assert.Empty(t, vr.Warnings)
	})

	t.Run("rejects impolite scrape delay", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.CDTI.DelaySeconds = 0.2
		_, vr := NormalizeAndValidate(cfg)
		assert.False(t, vr.OK())
	})

	t.Run("disabled source skips checks", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.CDTI.Enabled = false
		cfg.Sources.CDTI.DelaySeconds = 0
		_, vr := NormalizeAndValidate(cfg)
		assert.True(t, vr.OK())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := Default()
		cfg.App.Port = 0
		_, vr := NormalizeAndValidate(cfg)
		assert.False(t, vr.OK())
	})

	t.Run("trims and dedupes keyword lists", func(t *testing.T) {
		cfg := Default()
		cfg.Policy.RelevanceAny = []string{" ayuda ", "ayuda", "", "Subvención"}
		out, vr := NormalizeAndValidate(cfg)
		assert.True(t, vr.OK())
		assert.Equal(t, []string{"ayuda", "Subvención"}, out.Policy.RelevanceAny)
	})

	t.Run("all sources disabled warns", func(t *testing.T) {
		cfg := Default()
		cfg.Sources.BOE.Enabled = false
		cfg.Sources.EUFunding.Enabled = false
		cfg.Sources.CDTI.Enabled = false
		cfg.Sources.IDAE.Enabled = false
		_, vr := NormalizeAndValidate(cfg)
		assert.True(t, vr.OK())
		assert.NotEmpty(t, vr.Warnings)
	})
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.App.Port = 12345

	require.NoError(t, SaveAtomic(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12345, loaded.App.Port)

	// a second save keeps a backup of the previous file
	cfg.App.Port = 23456
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := t.TempDir()

	// no shipped default available: falls back to the built-in config
	path, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "no-such-default.yml"))
	require.NoError(t, err)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 38471, cfg.App.Port)

	// second call leaves the existing file alone
	cfg.App.Port = 5555
	require.NoError(t, SaveAtomic(path, cfg))
	again, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "no-such-default.yml"))
	require.NoError(t, err)
	assert.Equal(t, path, again)
	kept, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5555, kept.App.Port)
}
