package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Session  SessionConfig  `toml:"session"`
	Auth     AuthConfig     `toml:"auth"`
}

type AppConfig struct {
	Name        string `toml:"name" validate:"required"`
	Env         string `toml:"env" validate:"required,oneof=development production testing"`
	Host        string `toml:"host"`
	Port        int    `toml:"port" validate:"gt=0,lt=65536"`
	GinMode     string `toml:"gin_mode" validate:"oneof=debug release test"`
	LogLevel    string `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string `toml:"log_format" validate:"oneof=json text"`
	InstanceDir string `toml:"instance_dir" validate:"required"`

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are honoured for the client address. Empty trusts none.
	TrustedProxies []string `toml:"trusted_proxies" validate:"dive,ip|cidr"`
}

type DatabaseConfig struct {
	Driver       string      `toml:"driver" validate:"oneof=sqlite mysql postgres"`
	DSN          string      `toml:"dsn"`
	MySQL        MySQLConfig `toml:"mysql"`
	MaxIdleConns int         `toml:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns int         `toml:"max_open_conns" validate:"gte=0"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr" validate:"required_if=Enabled true"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
}

type SessionConfig struct {
	Secret           string   `toml:"secret" validate:"required,min=16"`
	CookieName       string   `toml:"cookie_name" validate:"required"`
	Lifetime         Duration `toml:"lifetime"`
	RememberLifetime Duration `toml:"remember_lifetime"`
	CookieSecure     bool     `toml:"cookie_secure"`
}

type AuthConfig struct {
	BcryptCost         int `toml:"bcrypt_cost" validate:"gte=4,lte=31"`
	LoginRatePerMinute int `toml:"login_rate_per_minute" validate:"gte=0"`
	LoginBurst         int `toml:"login_burst" validate:"gte=0"`
}

// Duration decodes TOML strings such as "24h" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q failed: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config failed: %w", err)
	}
	if c.Session.Lifetime.Duration <= 0 || c.Session.RememberLifetime.Duration <= 0 {
		return fmt.Errorf("validate config failed: session lifetimes must be positive")
	}
	if c.DatabaseDSN() == "" {
		return fmt.Errorf("validate config failed: database dsn is required for driver %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// DatabaseDSN returns the connection string for the configured driver.
// An explicit dsn wins; the mysql section is only used to build one when it is empty.
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	switch c.Database.Driver {
	case DriverMySQL:
		return c.MySQLDSN()
	case DriverSQLite:
		return filepath.Join(c.App.InstanceDir, "tasks.db")
	default:
		return ""
	}
}

func (c *Config) MySQLDSN() string {
	m := mysql.NewConfig()
	m.User = c.Database.MySQL.User
	m.Passwd = c.Database.MySQL.Password
	m.Net = "tcp"
	m.Addr = fmt.Sprintf("%s:%d", c.Database.MySQL.Host, c.Database.MySQL.Port)
	m.DBName = c.Database.MySQL.DB
	m.ParseTime = true

	dsn := m.FormatDSN()
	if params := strings.TrimSpace(c.Database.MySQL.Params); params != "" {
		dsn += "&" + strings.TrimPrefix(params, "?")
	}
	return dsn
}

// FallbackDatabasePath is the local file store used when the configured one cannot be reached.
func (c *Config) FallbackDatabasePath() string {
	return filepath.Join(c.App.InstanceDir, "backup_tasks.db")
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "taskmanager",
			Env:         "development",
			Host:        "127.0.0.1",
			Port:        8000,
			GinMode:     "debug",
			LogLevel:    "info",
			LogFormat:   "json",
			InstanceDir: "instance",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			MySQL: MySQLConfig{
				Host:   "127.0.0.1",
				Port:   3306,
				User:   "root",
				DB:     "taskmanager",
				Params: "loc=UTC&charset=utf8mb4",
			},
			MaxIdleConns: 10,
			MaxOpenConns: 50,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			DB:      0,
		},
		Session: SessionConfig{
			Secret:           "dev-secret-key-change-in-production",
			CookieName:       "taskmanager_session",
			Lifetime:         Duration{24 * time.Hour},
			RememberLifetime: Duration{365 * 24 * time.Hour},
			CookieSecure:     false,
		},
		Auth: AuthConfig{
			BcryptCost:         12,
			LoginRatePerMinute: 10,
			LoginBurst:         5,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", getEnvAsInt("APP_PORT", cfg.App.Port))
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = getEnv("LOG_FORMAT", cfg.App.LogFormat)
	cfg.App.InstanceDir = getEnv("INSTANCE_DIR", cfg.App.InstanceDir)
	cfg.App.TrustedProxies = getEnvAsList("TRUSTED_PROXIES", cfg.App.TrustedProxies)

	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.MySQL.Host = getEnv("MYSQL_HOST", cfg.Database.MySQL.Host)
	cfg.Database.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.Database.MySQL.Port)
	cfg.Database.MySQL.User = getEnv("MYSQL_USER", cfg.Database.MySQL.User)
	cfg.Database.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Database.MySQL.Password)
	cfg.Database.MySQL.DB = getEnv("MYSQL_DB", cfg.Database.MySQL.DB)
	cfg.Database.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.Database.MySQL.Params)

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.Session.Secret = getEnv("SECRET_KEY", cfg.Session.Secret)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.Lifetime.Duration = getEnvAsDuration("SESSION_LIFETIME", cfg.Session.Lifetime.Duration)
	cfg.Session.RememberLifetime.Duration = getEnvAsDuration("SESSION_REMEMBER_LIFETIME", cfg.Session.RememberLifetime.Duration)
	cfg.Session.CookieSecure = getEnvAsBool("SESSION_COOKIE_SECURE", cfg.Session.CookieSecure)

	cfg.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.LoginRatePerMinute = getEnvAsInt("LOGIN_RATE_PER_MINUTE", cfg.Auth.LoginRatePerMinute)
	cfg.Auth.LoginBurst = getEnvAsInt("LOGIN_BURST", cfg.Auth.LoginBurst)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value. A set but blank variable clears the list.
func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
