package db

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open connects to the store named by dsn and migrates it.
// postgres:// and postgresql:// URLs use the hosted driver; anything else is
// treated as a SQLite file path. key, when set, is used as the password for
// hosted stores whose URL does not carry one.
func Open(dsn, key string, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	cfg := &gorm.Config{
		Logger:         NewLogger(log),
		TranslateError: true,
	}

	var (
		conn   *gorm.DB
		err    error
		driver string
	)
	if IsPostgres(dsn) {
		driver = "postgres"
		conn, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  withPassword(dsn, key),
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		driver = "sqlite"
		conn, err = gorm.Open(sqlite.Open(SQLiteDSN(dsn)), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info("database ready", "driver", driver)
	return conn, nil
}

// Migrate creates the tables and the composite indexes GORM does not
// derive from struct tags.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_ticket_session_room ON exam_tickets(session_id, room_id)",
		"CREATE INDEX IF NOT EXISTS idx_reg_customer_status ON registration_forms(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_ext_ticket_status   ON extension_forms(ticket_id, status)",
	} {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Close releases the underlying pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// SQLiteDSN appends the WAL/foreign-key parameters unless the caller
// already supplied a query string.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteParams
}

func withPassword(dsn, key string) string {
	if key == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, set := u.User.Password(); set {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), key)
	return u.String()
}
