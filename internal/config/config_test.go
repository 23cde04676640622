package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Assistant.AnalysisWindowDays)
	assert.Equal(t, 14, cfg.Assistant.SlotWindowDays)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}, cfg.Assistant.CandidateTimes)
	assert.Equal(t, "0 8 * * 1-5", cfg.Digest.Cron)
}

func TestLoadFileOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[assistant]
slot_window_days = 7
candidate_times = ["08:00", "12:30"]

[remote]
provider = "openai"

[log]
level = "debug"
`), 0644))

	t.Setenv("KALENDR_DB_PATH", "/tmp/k.db")
	t.Setenv("HF_TOKEN", "hf_x")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Assistant.SlotWindowDays)
	assert.Equal(t, 30, cfg.Assistant.AnalysisWindowDays)
	assert.Equal(t, []string{"08:00", "12:30"}, cfg.Assistant.CandidateTimes)
	assert.Equal(t, "openai", cfg.Remote.Provider)
	assert.Equal(t, "hf_x", cfg.Remote.APIKey)
	assert.Equal(t, "/tmp/k.db", cfg.Store.Path)

	level, err := ParseLevel(cfg.Log.Level)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad time":     "[assistant]\ncandidate_times = [\"9\"]\n",
		"bad provider": "[remote]\nprovider = \"gpt\"\n",
		"bad level":    "[log]\nlevel = \"loud\"\n",
		"bad toml":     "[assistant\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.Assistant, cfg.Assistant)
	assert.Equal(t, def.Server, cfg.Server)
}

func TestSaveCalendarTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("KALENDR_CONFIG", path)
	require.NoError(t, os.WriteFile(path, []byte("[server]\nlisten_addr = \":9000\"\n"), 0644))

	require.NoError(t, SaveCalendarTarget("alice", "g1"))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "alice", cfg.Calendar.UserID)
	assert.Equal(t, "g1", cfg.Calendar.GroupID)
}
