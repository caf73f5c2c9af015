package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Security     SecurityConfig     `mapstructure:"security"`
	Achievements AchievementsConfig `mapstructure:"achievements"`
	Locale       LocaleConfig       `mapstructure:"locale"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
	// AdminKey may be a plain key or a bcrypt hash ("$2a$..." / "$2b$...").
	AdminKey string `mapstructure:"admin_key"`
	// AdminIPs restricts admin routes to these client IPs. Empty allows any.
	AdminIPs []string `mapstructure:"admin_ips"`
}

type LogConfig struct {
	// File enables rotated file output in addition to stderr.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DatabaseConfig struct {
	Mode        string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath  string        `mapstructure:"sqlite_path"`
	MySQLDSN    string        `mapstructure:"mysql_dsn"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLife     time.Duration `mapstructure:"max_life"`
}

type CacheConfig struct {
	RedisAddr      string `mapstructure:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db"`
	LocalPubSubBuf int    `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type AchievementsConfig struct {
	// Enabled gates CheckForAchievements entirely.
	Enabled bool `mapstructure:"enabled"`
	// NotifyBurst is how many individual notifications a single pass may show.
	NotifyBurst    int           `mapstructure:"notify_burst"`
	NotifyTimeout  time.Duration `mapstructure:"notify_timeout"`
	Workers        int           `mapstructure:"workers"`
	PassLockTTL    time.Duration `mapstructure:"pass_lock_ttl"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	RetryMaxTries  uint          `mapstructure:"retry_max_tries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

type LocaleConfig struct {
	Lang string `mapstructure:"lang"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file values are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.debug", false)
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/hunterlog.db")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_ttl_h", "720h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("achievements.enabled", true)
	v.SetDefault("achievements.notify_burst", 5)
	v.SetDefault("achievements.notify_timeout", "5s")
	v.SetDefault("achievements.workers", 4)
	v.SetDefault("achievements.pass_lock_ttl", "30s")
	v.SetDefault("achievements.retry_interval", "1m")
	v.SetDefault("achievements.retry_max_tries", 3)
	v.SetDefault("achievements.retry_base_delay", "200ms")
	v.SetDefault("locale.lang", "en")
}
