package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Store      StoreConfig      `mapstructure:"store"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Lock       LockConfig       `mapstructure:"lock"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Export     ExportConfig     `mapstructure:"export"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Merge      MergeConfig      `mapstructure:"merge"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// StoreConfig selects the wallet store: "clickhouse" or "memory".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type ClickHouseConfig struct {
	Addr     string `mapstructure:"addr"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LockConfig selects the per-wallet locker: "local" or "redis".
type LockConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Wait   time.Duration `mapstructure:"wait"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type IngestConfig struct {
	Path string `mapstructure:"path"`
}

type ExportConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type MergeConfig struct {
	Workers int `mapstructure:"workers"`
}

// Load reads the YAML file at path (skipped when envOnly) and applies
// STAKING_* environment overrides on top of the defaults.
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":3000")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("store.driver", "clickhouse")
	v.SetDefault("clickhouse.addr", "127.0.0.1:9000")
	v.SetDefault("clickhouse.database", "default")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")
	v.SetDefault("lock.driver", "local")
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("lock.wait", "10s")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ingest.path", "transactions.xlsx")
	v.SetDefault("export.path", "wallets_staking_rewards.xlsx")
	v.SetDefault("export.sheet", "Wallet Staking & Rewards")
	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9001")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "staking-exports")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("merge.workers", 4)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
