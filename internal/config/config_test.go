package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StoreNone, cfg.StoreKind)
	assert.Equal(t, 15, cfg.Rules().MaxRounds)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GITCG_LOG_LEVEL", "debug")
	t.Setenv("GITCG_STORE", "sqlite")
	t.Setenv("GITCG_SEED", "99")
	t.Setenv("GITCG_MAX_ROUNDS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StoreSQLite, cfg.StoreKind)

	rules := cfg.Rules()
	assert.Equal(t, int64(99), rules.RandomSeed)
	assert.Equal(t, 3, rules.MaxRounds)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GITCG_DECK_FILE=decks.yaml\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GITCG_DECK_FILE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "decks.yaml", cfg.DeckFile)
}

func TestLoadMissingDotenv(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("GITCG_STORE", "postgres")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("GITCG_MAX_ROUNDS", "many")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
