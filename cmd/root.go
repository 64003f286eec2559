package cmd

import (
	"context"
	"fmt"
	"os"

	"dynoquery/dal"
	"dynoquery/models"
	"dynoquery/repository"
	"dynoquery/services"
	"dynoquery/store"
	"dynoquery/utils"
	"dynoquery/utils/logger"
	"dynoquery/worker"

	"github.com/spf13/cobra"
)

// app holds everything a command needs. It is built before each command runs.
type app struct {
	config   *models.Config
	logger   logger.Logger
	store    *store.Store
	repos    *repository.Repository
	services *services.Service
}

var (
	configFile string
	current    *app
)

var rootCmd = &cobra.Command{
	Use:           "dynoquery",
	Short:         "Query and scan DynamoDB tables from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		err := current.close()
		current = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.json or the data directory)")

	rootCmd.AddCommand(
		newQueryCmd(),
		newScanCmd(),
		newHistoryCmd(),
		newSavedCmd(),
		newSessionCmd(),
		newGroupCmd(),
		newRetentionCmd(),
	)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if current != nil {
			_ = current.close()
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, configFile string) (*app, error) {
	config, err := utils.Load(configFile)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(config.LogLevel, config.LogFormat)
	log.Debugf("Config loaded: %s", utils.PrintPrettyJSON(config))

	db, err := store.Open(ctx, config.StorePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	repos := repository.NewRepository(db, log)
	runner := worker.NewRunner(1, log)
	svc := services.NewService(repos, dal.NewClientFactory(config, log), runner, log, config)

	return &app{
		config:   config,
		logger:   log,
		store:    db,
		repos:    repos,
		services: svc,
	}, nil
}

func (a *app) close() error {
	a.services.Close()
	return a.store.Close()
}

// currentApp returns the application built for the running command
func currentApp() (*app, error) {
	if current == nil {
		return nil, fmt.Errorf("application is not initialised")
	}
	return current, nil
}
