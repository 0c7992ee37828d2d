package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/preeyankakc037/dufy/internal/config"
	"github.com/preeyankakc037/dufy/internal/logging"
)

var configPath string

// env is what every subcommand needs before doing work.
type env struct {
	cfg    config.Config
	log    *logrus.Logger
	closer io.Closer
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, closer: closer}, nil
}

func (e *env) Close() {
	e.closer.Close()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dufy",
		Short:        "Music recommendation server",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (default ./"+config.DefaultFile+" when present)")

	root.AddCommand(serveCmd(), indexCmd(), searchCmd(), importCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
