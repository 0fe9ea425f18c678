package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the binaries read from the environment.
type Config struct {
	Addr          string
	DatabaseURL   string // postgres://... or a sqlite file path
	DatabaseKey   string // password for hosted stores when not embedded in the URL
	AdminPassword string
	SessionSecret string
	LogLevel      slog.Level

	TelegramToken  string
	TelegramChatID int64
	RemindOffsets  []time.Duration // how long before a session the admin digest fires

	DisplayTZ string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug(".env loaded")
	}

	c := Config{
		Addr:          GetEnv("ADDR", ":8080"),
		DatabaseURL:   GetEnv("DATABASE_URL", "examdesk.db"),
		DatabaseKey:   GetEnv("DATABASE_KEY"),
		AdminPassword: GetEnv("ADMIN_PASSWORD", "admin123"), // change in production
		SessionSecret: GetEnv("SESSION_SECRET"),
		LogLevel:      parseLevel(GetEnv("LOG_LEVEL", "info")),
		TelegramToken: GetEnv("TG_BOT_TOKEN"),
		DisplayTZ:     GetEnv("TZ_DISPLAY", "Asia/Ho_Chi_Minh"),
	}
	c.RemindOffsets = ParseOffsets(GetEnv("REMIND_OFFSETS"))
	if id, err := strconv.ParseInt(GetEnv("TG_ADMIN_CHAT_ID"), 10, 64); err == nil {
		c.TelegramChatID = id
	}
	if c.SessionSecret == "" {
		// Tokens stay valid only for the lifetime of the process.
		c.SessionSecret = RandomSecret()
		slog.Warn("SESSION_SECRET not set, using a random key; admin sessions end on restart")
	}
	return c
}

// GetEnv returns the variable or the first default when it is unset.
func GetEnv(key string, def ...string) string {
	v, ok := os.LookupEnv(key)
	if (!ok || v == "") && len(def) > 0 {
		return def[0]
	}
	return v
}

// RandomSecret returns 32 random bytes, hex encoded.
func RandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("config: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// ParseOffsets reads a list like "24h,2h". Defaults to 24h and 2h.
func ParseOffsets(raw string) []time.Duration {
	def := []time.Duration{24 * time.Hour, 2 * time.Hour}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	out := make([]time.Duration, 0, 2)
	for _, p := range strings.Split(raw, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err == nil && d > 0 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location resolves DisplayTZ. Without tzdata it falls back to UTC+7.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTZ)
	if err != nil {
		return time.FixedZone("ICT", 7*3600)
	}
	return loc
}
