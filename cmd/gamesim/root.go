package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/config"
	logpkg "github.com/kailas-cloud/gamesim/internal/logger"
)

// app carries what every command needs after PersistentPreRunE.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "gamesim",
		Short:         "Similarity search and re-ranking for games, publishers and developers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.env, "env", "e", "", "config environment (default $ENV or local)")

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newSimilarCmd(a),
		newConceptCmd(a),
		newIndexCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads .env, the YAML config and the logger.
func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if a.env == "" {
		a.env = config.GetEnv()
	}

	cfg, err := config.Load(a.env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	logger, err := logpkg.NewLogger(a.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	return nil
}
