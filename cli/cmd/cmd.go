package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/malusev998/currency"
)

type (
	// Config wires the commands to concrete storages and services. The
	// constructors are called lazily, after flags and the config file are
	// read, and only by commands that need them.
	Config struct {
		Ctx        context.Context
		NewStorage func(ctx context.Context, v *viper.Viper) (currency.Storage, error)
		NewService func(ctx context.Context, v *viper.Viper, storage currency.Storage, logger *slog.Logger) (currency.Service, error)
		NewSyncers func(v *viper.Viper, rates currency.RateManager, policy currency.MergePolicy, logger *slog.Logger) ([]currency.Syncer, error)
	}

	app struct {
		config     *Config
		viper      *viper.Viper
		logger     *slog.Logger
		debug      bool
		configFile string
		storage    currency.Storage
		service    currency.Service
	}
)

const envPrefix = "CURRENCY_CONVERTER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage", "mysql")
	v.SetDefault("migrate", false)
	v.SetDefault("databases.mysql.table", "currency")
	v.SetDefault("databases.postgres.table", "currency")
	v.SetDefault("databases.mongodb.collection", "currency")
	v.SetDefault("conversion.quote", "per-unit")
	v.SetDefault("conversion.precision", 6)
	v.SetDefault("conversion.writethrough", false)
	v.SetDefault("fetchers.fetch", []string{"jsonfeed"})
	v.SetDefault("fetchers.merge", "none")
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo

	if a.debug {
		level = slog.LevelDebug
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	absolutePath, err := filepath.Abs(a.configFile)

	if err != nil {
		return err
	}

	a.viper.SetConfigFile(absolutePath)
	a.viper.SetEnvPrefix(envPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.viper.AutomaticEnv()
	setDefaults(a.viper)

	if err := a.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return err
		}

		a.logger.Debug("config file not found, using defaults and environment", "path", absolutePath)
	}

	return nil
}

func (a *app) getStorage() (currency.Storage, error) {
	if a.storage != nil {
		return a.storage, nil
	}

	st, err := a.config.NewStorage(a.config.Ctx, a.viper)

	if err != nil {
		return nil, err
	}

	a.storage = st

	return st, nil
}

func (a *app) getService() (currency.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	st, err := a.getStorage()

	if err != nil {
		return nil, err
	}

	service, err := a.config.NewService(a.config.Ctx, a.viper, st, a.logger)

	if err != nil {
		return nil, err
	}

	a.service = service

	return service, nil
}

func (a *app) close() {
	if a.storage == nil {
		return
	}

	if err := a.storage.Close(); err != nil {
		a.logger.Warn("closing storage failed", "storage", a.storage.GetStorageProviderName(), "error", err)
	}

	a.storage = nil
	a.service = nil
}

// run releases whatever the command opened, on success and on error.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close()
		return fn(cmd, args)
	}
}

func NewRootCommand(config *Config) *cobra.Command {
	if config.Ctx == nil {
		config.Ctx = context.Background()
	}

	a := &app{config: config, viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "currency-converter",
		Short:         "Currency conversion over stored exchange rates",
		Version:       "v2.0.0",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "./config.yml", "Path to config file")

	rootCmd.AddCommand(
		demo(a),
		convert(a),
		rate(a),
		fetch(a),
		migrate(a),
	)

	return rootCmd
}

func Execute(config *Config) error {
	rootCmd := NewRootCommand(config)

	return rootCmd.ExecuteContext(config.Ctx)
}
