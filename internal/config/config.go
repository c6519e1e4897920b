package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/revise/internal/spacedrep"
)

// Storage drivers accepted by database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var ErrMissingDatabaseURL = errors.New("database.url is required for the postgres driver")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string    `mapstructure:"env"`       // current application environment (local, production etc)
	LogLevel  string    `mapstructure:"log_level"` // zap level name
	DB        DB        `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	HTTP      HTTP      `mapstructure:"http"`
	Scheduler Scheduler `mapstructure:"scheduler"`
}

// DB selects and configures the mastery record store.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // sqlite, postgres or redis
	Path            string        `mapstructure:"path"`              // SQLite file; empty means the default data path
	URL             string        `mapstructure:"url"`               // postgres connection string
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

type Redis struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type HTTP struct {
	Addr              string        `mapstructure:"addr"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	RepositoryTimeout time.Duration `mapstructure:"repository_timeout"`
}

// Scheduler mirrors spacedrep.Params plus the request defaults.
type Scheduler struct {
	DueThreshold       float64 `mapstructure:"due_threshold"`
	OverdueThreshold   float64 `mapstructure:"overdue_threshold"`
	BaseHalfLifeDays   float64 `mapstructure:"base_half_life_days"`
	HalfLifeGrowth     float64 `mapstructure:"half_life_growth"`
	MaxHalfLifeDays    float64 `mapstructure:"max_half_life_days"`
	ElapsedBonusPerDay float64 `mapstructure:"elapsed_bonus_per_day"`
	Timezone           string  `mapstructure:"timezone"`
	DefaultLimit       int     `mapstructure:"default_limit"`
	DefaultHorizonDays int     `mapstructure:"default_horizon_days"`
}

// Load reads configuration from an optional YAML file, a .env file and
// REVISE_* environment variables. An empty path searches ./config/config.yaml.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("REVISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "revise")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.repository_timeout", "5s")

	v.SetDefault("scheduler.due_threshold", spacedrep.DefaultDueThreshold)
	v.SetDefault("scheduler.overdue_threshold", spacedrep.DefaultOverdueThreshold)
	v.SetDefault("scheduler.base_half_life_days", spacedrep.DefaultBaseHalfLifeDays)
	v.SetDefault("scheduler.half_life_growth", spacedrep.DefaultHalfLifeGrowth)
	v.SetDefault("scheduler.max_half_life_days", spacedrep.DefaultMaxHalfLifeDays)
	v.SetDefault("scheduler.elapsed_bonus_per_day", spacedrep.DefaultElapsedBonusPerDay)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.default_limit", 10)
	v.SetDefault("scheduler.default_horizon_days", 14)
}

// Validate checks settings that would otherwise fail late at first use.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverRedis:
	case DriverPostgres:
		if c.DB.URL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.DB.Driver)
	}
	if c.HTTP.RepositoryTimeout <= 0 {
		return fmt.Errorf("http.repository_timeout must be positive, got %s", c.HTTP.RepositoryTimeout)
	}
	if c.Scheduler.DefaultLimit < 1 {
		return fmt.Errorf("scheduler.default_limit must be at least 1, got %d", c.Scheduler.DefaultLimit)
	}
	if c.Scheduler.DefaultHorizonDays < 1 {
		return fmt.Errorf("scheduler.default_horizon_days must be at least 1, got %d", c.Scheduler.DefaultHorizonDays)
	}
	if _, err := c.SchedulerParams(); err != nil {
		return err
	}
	return nil
}

// SchedulerParams builds validated spacedrep.Params.
func (c *Config) SchedulerParams() (spacedrep.Params, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return spacedrep.Params{}, fmt.Errorf("scheduler.timezone: %w", err)
	}
	p := spacedrep.Params{
		DueThreshold:       c.Scheduler.DueThreshold,
		OverdueThreshold:   c.Scheduler.OverdueThreshold,
		BaseHalfLifeDays:   c.Scheduler.BaseHalfLifeDays,
		HalfLifeGrowth:     c.Scheduler.HalfLifeGrowth,
		MaxHalfLifeDays:    c.Scheduler.MaxHalfLifeDays,
		ElapsedBonusPerDay: c.Scheduler.ElapsedBonusPerDay,
		Location:           loc,
	}
	if err := p.Validate(); err != nil {
		return spacedrep.Params{}, fmt.Errorf("scheduler: %w", err)
	}
	return p, nil
}
