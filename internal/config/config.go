// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage kinds accepted by STORAGE_KIND.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Purge     PurgeConfig     `mapstructure:"purge"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Kind           string        `mapstructure:"kind"`
	DataDir        string        `mapstructure:"datadir"`
	LockRetries    int           `mapstructure:"lockretries"`
	LockRetryDelay time.Duration `mapstructure:"lockretrydelay"`
	StaleLockAge   time.Duration `mapstructure:"stalelockage"`
	Watch          bool          `mapstructure:"watch"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"maxopenconns"`
	ConnMaxLifetime time.Duration `mapstructure:"connmaxlifetime"`
	AutoMigrate     bool          `mapstructure:"automigrate"`
}

// DSN returns DB_URL when set, otherwise a postgres URL built from the parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cachettl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedorigins"`
}

type PurgeConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

const devJWTSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.kind", StorageFile)
	v.SetDefault("storage.datadir", "./data")
	v.SetDefault("storage.lockretries", 100)
	v.SetDefault("storage.lockretrydelay", 50*time.Millisecond)
	v.SetDefault("storage.stalelockage", 30*time.Second)
	v.SetDefault("storage.watch", true)

	v.SetDefault("db.driver", "pgx")
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "superlist")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.maxopenconns", 25)
	v.SetDefault("db.connmaxlifetime", 5*time.Minute)
	v.SetDefault("db.automigrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cachettl", 10*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "superlist")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("cors.allowedorigins", []string{"*"})

	v.SetDefault("purge.interval", time.Hour)
	v.SetDefault("purge.retention", 30*24*time.Hour)
}

// Load builds the configuration. configFile may be empty. Environment keys
// are the upper-cased key paths with dots replaced by underscores, e.g.
// STORAGE_KIND, DB_HOST, REDIS_ADDR, JWT_SECRET.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys whose env names are not plain key paths.
	_ = v.BindEnv("storage.datadir", "DATA_DIR", "STORAGE_DATADIR")
	_ = v.BindEnv("storage.lockretries", "STORAGE_LOCK_RETRIES")
	_ = v.BindEnv("storage.lockretrydelay", "STORAGE_LOCK_RETRY_DELAY")
	_ = v.BindEnv("storage.stalelockage", "STORAGE_STALE_LOCK_AGE")
	_ = v.BindEnv("db.maxopenconns", "DB_MAX_OPEN_CONNS")
	_ = v.BindEnv("db.connmaxlifetime", "DB_CONN_MAX_LIFETIME")
	_ = v.BindEnv("db.automigrate", "DB_AUTO_MIGRATE")
	_ = v.BindEnv("db.sslmode", "DB_SSLMODE")
	_ = v.BindEnv("redis.cachettl", "REDIS_CACHE_TTL")
	_ = v.BindEnv("ratelimit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("ratelimit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("cors.allowedorigins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("env", "APP_ENV")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown storage kinds and a missing JWT secret outside
// development, where a fixed insecure secret is substituted.
func (c *Config) Validate() error {
	c.Storage.Kind = strings.ToLower(strings.TrimSpace(c.Storage.Kind))
	switch c.Storage.Kind {
	case StorageFile, StorageMemory, StorageBadger, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("config: unknown STORAGE_KIND %q", c.Storage.Kind)
	}

	switch c.DB.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DB.Driver)
	}

	if c.Storage.LockRetries < 1 {
		return errors.New("config: STORAGE_LOCK_RETRIES must be positive")
	}

	if c.JWT.Secret == "" {
		if c.Env != "development" {
			return errors.New("config: JWT_SECRET is required")
		}
		c.JWT.Secret = devJWTSecret
	}
	return nil
}

// NeedsDataDir reports whether the selected storage kind keeps files on disk.
func (c *Config) NeedsDataDir() bool {
	switch c.Storage.Kind {
	case StorageFile, StorageBadger, StorageSQLite:
		return true
	}
	return false
}
