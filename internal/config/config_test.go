package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t) // no .env here
	for _, k := range []string{"ADDR", "DATABASE_URL", "ADMIN_PASSWORD", "SESSION_SECRET", "LOG_LEVEL", "TG_ADMIN_CHAT_ID"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "examdesk.db", c.DatabaseURL)
	assert.Equal(t, "admin123", c.AdminPassword)
	assert.NotEmpty(t, c.SessionSecret)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Zero(t, c.TelegramChatID)
}

func TestLoad_FromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADDR", ":9000")
	t.Setenv("DATABASE_URL", "postgres://u@h/db")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TG_ADMIN_CHAT_ID", "-100123")

	c := Load()
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, "postgres://u@h/db", c.DatabaseURL)
	assert.Equal(t, "s3cret", c.SessionSecret)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, int64(-100123), c.TelegramChatID)
}

func TestLoad_SessionSecretIsRandom(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("SESSION_SECRET", "")

	first, second := Load(), Load()
	assert.Len(t, first.SessionSecret, 64)
	assert.NotEqual(t, first.SessionSecret, second.SessionSecret)
	assert.NotContains(t, first.SessionSecret, first.AdminPassword)
	assert.NotEqual(t, "admin123:examdesk", first.SessionSecret)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	orig, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(orig) }) //nolint:errcheck
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func TestParseOffsets(t *testing.T) {
	assert.Equal(t, []time.Duration{24 * time.Hour, 2 * time.Hour}, ParseOffsets(""))
	assert.Equal(t, []time.Duration{48 * time.Hour, 30 * time.Minute}, ParseOffsets("48h, 30m"))
	assert.Equal(t, []time.Duration{time.Hour}, ParseOffsets("bogus,1h,-2h"))
	assert.Equal(t, []time.Duration{24 * time.Hour, 2 * time.Hour}, ParseOffsets("nope"))
}

func TestLocation_Fallback(t *testing.T) {
	c := Config{DisplayTZ: "Nowhere/Atlantis"}
	_, off := time.Date(2026, 1, 1, 0, 0, 0, 0, c.Location()).Zone()
	assert.Equal(t, 7*3600, off)
}
