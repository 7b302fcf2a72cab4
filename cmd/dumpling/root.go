package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/internal/config"
	"github.com/aretw0/dumpling/internal/logging"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration from the root command to its children.
type app struct {
	flags   *config.Flags
	envFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.NewNop()}

	root := &cobra.Command{
		Use:   "dumpling",
		Short: "Fold a feeling into a dumpling recipe",
		Long: `Dumpling walks you through a short emotional questionnaire and folds the
answers into a dumpling recipe you can print, save or receive by email.

Settings are read from flags, then DUMPLING_* environment variables, then a .env file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	a.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newSessionCmd(a),
		newCatalogCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = a.flags.Apply(cfg)

	level, err := logging.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout stays usable for frames and JSON-RPC.
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	slog.SetDefault(a.logger)
	a.logger.Debug("configuration loaded", "config", a.cfg)
	return nil
}

// wizard builds a wizard from the resolved configuration. The returned
// function releases the backend.
func (a *app) wizard(printOut io.Writer, extra ...dumpling.Option) (*dumpling.Wizard, func(), error) {
	w, backend, err := a.cfg.NewWizard(a.logger, printOut, extra...)
	if err != nil {
		return nil, nil, err
	}
	return w, func() {
		if err := backend.Close(); err != nil {
			a.logger.Warn("failed to close backend", "err", err)
		}
	}, nil
}
