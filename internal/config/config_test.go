package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.MaxTries)
	assert.Equal(t, "local", cfg.WordSource)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"PORT":             "8080",
		"MAX_TRIES":        "6",
		"WORD_SOURCE":      "fallback",
		"WORD_API_TIMEOUT": "1500ms",
		"SESSION_IDLE":     "30m",
		"STRICT_GUESSES":   "true",
		"APP_SECRET":       "s3cret",
		"NODE_ENV":         "production",
	}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 6, cfg.MaxTries)
	assert.Equal(t, "fallback", cfg.WordSource)
	assert.Equal(t, 1500*time.Millisecond, cfg.WordAPITimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.True(t, cfg.StrictGuesses)
	assert.True(t, cfg.Production)
	require.NoError(t, cfg.Validate())

	bad := Default()
	assert.Error(t, bad.applyEnv(envMap(map[string]string{"MAX_TRIES": "five"})))
	assert.Error(t, bad.applyEnv(envMap(map[string]string{"SESSION_IDLE": "soon"})))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxTries = 0
	cfg.WordSource = "carrier-pigeon"
	cfg.Production = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max tries")
	assert.Contains(t, err.Error(), "carrier-pigeon")
	assert.Contains(t, err.Error(), "APP_SECRET")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordgame.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\nmax_tries: 7\nword_source: remote\nsession_idle: 45m\n"), 0o644))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 7, cfg.MaxTries)
	assert.Equal(t, "remote", cfg.WordSource)
	assert.Equal(t, 45*time.Minute, cfg.SessionIdle)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Error(t, cfg.loadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestDeriveKey(t *testing.T) {
	cfg := Default()
	a := cfg.DeriveKey(PurposeWordSalt)
	b := cfg.DeriveKey(PurposeShareToken)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cfg.DeriveKey(PurposeWordSalt))

	other := Default()
	other.Secret = "another"
	assert.NotEqual(t, a, other.DeriveKey(PurposeWordSalt))
}
