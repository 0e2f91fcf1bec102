package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string  `mapstructure:"host"`
	Port              int     `mapstructure:"port"`
	ReadTimeoutSec    int     `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int     `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int     `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int     `mapstructure:"request_timeout_sec"`
	MaxBodyBytes      int64   `mapstructure:"max_body_bytes"`
	RateLimitRPS      float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
	MaxConcurrent     int64   `mapstructure:"max_concurrent"`
}

// Web is the HTML frontend process.
type Web struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	BackendURL        string `mapstructure:"backend_url"`
	BackendTimeoutSec int    `mapstructure:"backend_timeout_sec"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
	Web  Web    `mapstructure:"web"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"` // empty disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Aggregate struct {
	UpdateStrategy string `mapstructure:"update_strategy"` // find_or_create | in_place
}

type Config struct {
	App       App       `mapstructure:"app"`
	Log       Log       `mapstructure:"log"`
	CORS      CORS      `mapstructure:"cors"`
	DB        DB        `mapstructure:"db"`
	Aggregate Aggregate `mapstructure:"aggregate"`
}

const defaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-directory")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.rate_limit_rps", 200)
	v.SetDefault("app.http.rate_limit_burst", 400)
	v.SetDefault("app.http.max_concurrent", 300)
	v.SetDefault("app.web.host", "0.0.0.0")
	v.SetDefault("app.web.port", 5500)
	v.SetDefault("app.web.backend_url", "http://localhost:3000")
	v.SetDefault("app.web.backend_timeout_sec", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", false)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:5500"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.sqlite")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("aggregate.update_strategy", "find_or_create")
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default) and
// applies APP_* env overrides, e.g. APP_DB_DRIVER. A missing default file is
// not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if !explicit {
		path = defaultPath
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
