package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"db-crud/internal/changefeed"
	"db-crud/internal/database"
	"db-crud/internal/record"
	"db-crud/internal/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	dsn     string
	driver  string
	dbName  string
)

var RootCmd = &cobra.Command{
	Use:   "db-crud",
	Short: "Generic CRUD over any relational schema",
	Long: `db-crud reflects the tables, columns and foreign keys of a database and
serves generic create/read/update/delete over them, as an HTTP API or an
interactive terminal browser.`,
	SilenceUsage: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-crud.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN), bypasses the databases list")
	RootCmd.PersistentFlags().StringVar(&driver, "driver", "", "SQL driver: postgres, mysql, sqlserver, oracle, sqlite")
	RootCmd.PersistentFlags().StringVar(&dbName, "schema", "", "schema to reflect (driver default when empty)")
	RootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("database.schema", RootCmd.PersistentFlags().Lookup("schema"))
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the working directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("db-crud")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DBCRUD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger. logFile overrides log.file; an empty
// result logs to stderr.
func newLogger(logFile string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if logFile == "" {
		logFile = viper.GetString("log.file")
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

// session is everything a command needs once connected: the pool, the
// reflected catalog, the accessor over them and its change feed.
type session struct {
	cfg     *DBConfig
	handle  *database.Handle
	catalog *schema.Catalog
	acc     *record.Accessor
	feed    changefeed.Publisher
	logger  *zap.Logger
}

// connect opens the configured database and reflects it. withFeed controls
// whether writes are published.
func connect(ctx context.Context, logger *zap.Logger, withFeed bool) (*session, error) {
	cfg, err := resolveDBConfig()
	if err != nil {
		return nil, err
	}

	handle, err := database.Open(ctx, databaseConfig(cfg), logger)
	if err != nil {
		return nil, err
	}

	catalog, err := handle.LoadCatalog(ctx)
	if err != nil {
		handle.Close()
		return nil, err
	}
	logger.Info("schema loaded",
		zap.String("schema", handle.Schema),
		zap.Int("tables", len(catalog.Tables())))

	var feed changefeed.Publisher = changefeed.Nop{}
	if withFeed {
		feed, err = changefeed.New(ctx, changefeedConfig(), logger)
		if err != nil {
			handle.Close()
			return nil, err
		}
	}

	return &session{
		cfg:     cfg,
		handle:  handle,
		catalog: catalog,
		acc:     record.NewAccessor(handle.DB, handle.Dialect, catalog, feed, logger),
		feed:    feed,
		logger:  logger,
	}, nil
}

func (s *session) Close() {
	if err := s.feed.Close(); err != nil {
		s.logger.Warn("failed to close changefeed", zap.Error(err))
	}
	if err := s.handle.Close(); err != nil {
		s.logger.Warn("failed to close database", zap.Error(err))
	}
	s.logger.Sync()
}
