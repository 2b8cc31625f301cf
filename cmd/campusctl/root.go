package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/config"
	"campus-qa-api/internal/infrastructure/persistence/postgres"
	einoobs "campus-qa-api/internal/observability/eino"
	"campus-qa-api/internal/wire"
	"campus-qa-api/pkg/logger"
)

// deps 命令依赖的构造函数，测试中替换
type deps struct {
	composer func(ctx context.Context, cfg *config.Config) (*answer.Composer, func(), error)
	postgres func(cfg *config.Config) (*postgres.Client, func(), error)
}

func defaultDeps() deps {
	return deps{
		composer: wire.InitializeComposer,
		postgres: wire.ProvidePostgresClient,
	}
}

type cli struct {
	deps      deps
	cfg       *config.Config
	configDir string
	env       string
	verbose   bool
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{deps: d}

	root := &cobra.Command{
		Use:          "campusctl",
		Short:        "Campus Q&A command line tool",
		Long:         "campusctl answers campus questions and inspects the search pipeline against the configured database.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configDir, "config-dir", "c", config.DefaultDir, "configuration directory")
	root.PersistentFlags().StringVar(&c.env, "env", "", "configuration environment (overrides APP_ENV)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(c.askCmd(), c.searchCmd(), c.schemaCmd())
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	if c.env != "" {
		if err := os.Setenv("APP_ENV", c.env); err != nil {
			return err
		}
	}

	cfg, err := config.LoadFrom(c.configDir)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := "error"
	if c.verbose {
		level = "debug"
	}
	logger.InitWriter(cmd.ErrOrStderr(), level, "text")
	einoobs.Init()
	return nil
}
