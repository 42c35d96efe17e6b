package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

type PostgresConfig struct {
	DSN                   string `mapstructure:"dsn"`
	MaxOpenConns          int    `mapstructure:"max_open_conns"`
	MaxIdleConns          int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin    int    `mapstructure:"conn_max_lifetime_minutes"`
	AcquireTimeoutSeconds int    `mapstructure:"acquire_timeout_seconds"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type FilesConfig struct {
	Domain string `mapstructure:"domain"`
}

type CacheConfig struct {
	UserTTLSeconds int `mapstructure:"user_ttl_seconds"`
}

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Files    FilesConfig    `mapstructure:"files"`
	Cache    CacheConfig    `mapstructure:"cache"`

	// derived values
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AcquireTimeout time.Duration
	UserCacheTTL   time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// sensible defaults
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.ConnMaxLifetimeMin == 0 {
		c.Postgres.ConnMaxLifetimeMin = 30
	}
	if c.Postgres.AcquireTimeoutSeconds == 0 {
		c.Postgres.AcquireTimeoutSeconds = 5
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Files.Domain == "" {
		c.Files.Domain = "http://localhost:8081"
	}
	if c.Cache.UserTTLSeconds == 0 {
		c.Cache.UserTTLSeconds = 60
	}
	c.ReadTimeout = time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
	c.WriteTimeout = time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
	c.AcquireTimeout = time.Duration(c.Postgres.AcquireTimeoutSeconds) * time.Second
	c.UserCacheTTL = time.Duration(c.Cache.UserTTLSeconds) * time.Second
}
