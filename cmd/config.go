package cmd

import (
	"fmt"
	"strings"
	"time"

	"db-crud/internal/changefeed"
	"db-crud/internal/database"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveDBConfig prefers the --dsn/--driver flags and falls back to the
// active entry of the databases list.
func resolveDBConfig() (*DBConfig, error) {
	if connStr := viper.GetString("database.dsn"); connStr != "" {
		driver := viper.GetString("database.driver")
		if driver == "" {
			driver = sniffDriver(connStr)
		}
		return &DBConfig{
			Name:   "command line",
			Driver: driver,
			DSN:    connStr,
			Schema: viper.GetString("database.schema"),
			Active: true,
		}, nil
	}

	cfg, err := GetActiveDBConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: ensure a config file exists or use --dsn and --driver flags", err)
	}
	if cfg.Driver == "" {
		cfg.Driver = sniffDriver(cfg.DSN)
	}
	return cfg, nil
}

// sniffDriver guesses the driver from the shape of the DSN.
func sniffDriver(connStr string) string {
	lower := strings.ToLower(connStr)
	switch {
	case strings.Contains(lower, "postgres") || strings.Contains(lower, "sslmode"):
		return "postgres"
	case strings.HasPrefix(lower, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(lower, "oracle://"):
		return "oracle"
	case strings.HasPrefix(lower, "file:") || strings.HasSuffix(lower, ".db") || strings.Contains(lower, ":memory:"):
		return "sqlite"
	default:
		return "mysql"
	}
}

func databaseConfig(db *DBConfig) database.Config {
	return database.Config{
		Driver:          db.Driver,
		DSN:             db.DSN,
		Schema:          db.Schema,
		MaxOpenConns:    viper.GetInt("pool.max_open_conns"),
		MaxIdleConns:    viper.GetInt("pool.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("pool.conn_max_lifetime"),
		ConnectTimeout:  viper.GetDuration("pool.connect_timeout"),
	}
}

func changefeedConfig() changefeed.Config {
	return changefeed.Config{
		Type: viper.GetString("changefeed.type"),
		Redis: changefeed.RedisConfig{
			Addr:     viper.GetString("changefeed.redis.addr"),
			Password: viper.GetString("changefeed.redis.password"),
			DB:       viper.GetInt("changefeed.redis.db"),
			Stream:   viper.GetString("changefeed.redis.stream"),
			MaxLen:   viper.GetInt64("changefeed.redis.max_len"),
		},
		Kafka: changefeed.KafkaConfig{
			Brokers:      viper.GetStringSlice("changefeed.kafka.brokers"),
			Topic:        viper.GetString("changefeed.kafka.topic"),
			BatchTimeout: viper.GetDuration("changefeed.kafka.batch_timeout"),
			WriteTimeout: viper.GetDuration("changefeed.kafka.write_timeout"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("pool.max_open_conns", 10)
	viper.SetDefault("pool.max_idle_conns", 5)
	viper.SetDefault("pool.conn_max_lifetime", 30*time.Minute)
	viper.SetDefault("pool.connect_timeout", 5*time.Second)

	viper.SetDefault("server.addr", "127.0.0.1:8000")
	viper.SetDefault("server.rate_limit", 0)
	viper.SetDefault("server.burst", 0)

	viper.SetDefault("changefeed.type", "none")
	viper.SetDefault("changefeed.redis.addr", "127.0.0.1:6379")
	viper.SetDefault("changefeed.redis.stream", "db-crud:changes")
	viper.SetDefault("changefeed.kafka.topic", "db-crud.changes")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("settings.default_count", 100)
}
