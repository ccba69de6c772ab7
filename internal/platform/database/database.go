package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"taskmanager/internal/config"
	"taskmanager/internal/model"
)

const memoryDSN = ":memory:"

type PoolOptions struct {
	MaxIdleConns int
	MaxOpenConns int
}

// Handle is the opened store plus how it was reached.
type Handle struct {
	DB       *gorm.DB
	Driver   string
	Fallback bool
}

func New(ctx context.Context, driver, dsn string, pool PoolOptions) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get %s sql db failed: %w", driver, err)
	}

	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)
	if dsn != memoryDSN {
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s failed: %w", driver, err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

// Open connects to the configured store and migrates it. If that fails it falls back
// to a local SQLite file under the instance directory instead of aborting startup.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	pool := PoolOptions{
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}

	db, err := openAndMigrate(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), pool)
	if err == nil {
		return &Handle{DB: db, Driver: cfg.Database.Driver}, nil
	}

	fallbackPath := cfg.FallbackDatabasePath()
	logger.Warn("primary database unavailable, using local fallback",
		slog.String("driver", cfg.Database.Driver),
		slog.String("fallback", fallbackPath),
		slog.String("error", err.Error()),
	)

	db, fallbackErr := openAndMigrate(ctx, config.DriverSQLite, fallbackPath, PoolOptions{MaxOpenConns: 1})
	if fallbackErr != nil {
		return nil, fmt.Errorf("open fallback database failed: %w (primary: %v)", fallbackErr, err)
	}
	return &Handle{DB: db, Driver: config.DriverSQLite, Fallback: true}, nil
}

// OpenMemory returns a migrated private in-memory SQLite store.
func OpenMemory(ctx context.Context) (*gorm.DB, error) {
	return openAndMigrate(ctx, config.DriverSQLite, memoryDSN, PoolOptions{MaxOpenConns: 1})
}

func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialised")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openAndMigrate(ctx context.Context, driver, dsn string, pool PoolOptions) (*gorm.DB, error) {
	db, err := New(ctx, driver, dsn, pool)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		if dsn != memoryDSN {
			if err := ensureParentDir(dsn); err != nil {
				return nil, err
			}
			dsn = withSQLitePragmas(dsn)
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func ensureParentDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory failed: %w", err)
	}
	return nil
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
