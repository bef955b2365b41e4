package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "database:\n  path: "+filepath.Join(dir, "db", "salon.db")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "appointment_schedule", cfg.Database.Tables.Schedule)
	assert.Equal(t, 15, cfg.Schedule.DefaultInterval)
	assert.Equal(t, 90, cfg.Schedule.LoadWindowDays)
	assert.Equal(t, 30, cfg.Schedule.BlockDefaultMinutes)
	assert.DirExists(t, filepath.Join(dir, "db"))

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SALONSKED_TEST_REDIS", "redis.internal:6379")
	path := writeConfig(t, dir, `
database:
  path: `+filepath.Join(dir, "salon.db")+`
  tables:
    schedule: sked
redis:
  address: ${SALONSKED_TEST_REDIS}
schedule:
  default_interval: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Address)
	assert.Equal(t, "sked", cfg.Database.Tables.Schedule)
	assert.Equal(t, "services", cfg.Database.Tables.Services)
	assert.Equal(t, 30, cfg.Schedule.DefaultInterval)
}

func TestLoad_PathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "database:\n  path: "+filepath.Join(dir, "salon.db")+"\n")
	t.Setenv(EnvPath, path)

	assert.Equal(t, path, Path())
	_, err := Load("")
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad interval", "schedule:\n  default_interval: 10\n"},
		{"bad timezone", "schedule:\n  timezone: Mars/Olympus\n"},
		{"bad table name", "database:\n  tables:\n    schedule: \"a b\"\n"},
		{"negative window", "schedule:\n  load_window_days: -1\n"},
		{"not yaml", "schedule: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestWatchSchedule(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "salon.db")
	path := writeConfig(t, dir, "database:\n  path: "+dbPath+"\n")

	var (
		mu   sync.Mutex
		seen []int
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := WatchSchedule(ctx, path, 10*time.Millisecond, zerolog.Nop(), func(s ScheduleConfig) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.DefaultInterval)
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: "+dbPath+"\nschedule:\n  default_interval: 5\n"), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2 && seen[1] == 5
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 15, seen[0])
}
