// Package cli implements the flashdeck subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/config"
	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/logging"
)

// LocalLearner is the settings key of terminal sessions.
const LocalLearner = "local"

// AddGlobalFlags registers the flags every subcommand understands.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("env-file", ".env", "Environment file to load before reading variables")
	root.PersistentFlags().String("log-level", "", "Log level: none, normal or debug (overrides LOG_LEVEL)")
	root.PersistentFlags().String("log-file", "", "Write logs to this file (terminal screens log nowhere otherwise)")
}

type cmdEnv struct {
	cfg *config.Config
	log *zap.Logger

	logFile *os.File
	undoLog func()
}

// setup loads configuration, builds the logger and connects the database.
// Screen commands pass console=false so logs do not draw over the UI.
func setup(cmd *cobra.Command, console bool) (*cmdEnv, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	level, _ := cmd.Flags().GetString("log-level")
	logPath, _ := cmd.Flags().GetString("log-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if level != "" {
		cfg.LogLevel = level
	}

	rt := &cmdEnv{cfg: cfg}
	switch {
	case logPath != "":
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		rt.logFile = f
		rt.log, err = logging.NewTo(cfg.LogLevel, f)
		if err != nil {
			f.Close()
			return nil, err
		}
	case console:
		rt.log, err = logging.New(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	default:
		rt.log = zap.NewNop()
	}
	rt.undoLog = zap.RedirectStdLog(rt.log)

	if err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		rt.close()
		return nil, err
	}
	rt.log.Debug("Database connected", zap.String("driver", cfg.DatabaseDriver))
	return rt, nil
}

func (rt *cmdEnv) close() error {
	err := database.Close()
	_ = rt.log.Sync()
	if rt.undoLog != nil {
		rt.undoLog()
	}
	if rt.logFile != nil {
		err = multierr.Append(err, rt.logFile.Close())
	}
	return err
}
