package main

import (
	"context"
	"fmt"

	"alcyxob/program-builder/internal/app"
	"alcyxob/program-builder/internal/config"
	"alcyxob/program-builder/internal/logger"
)

// env is the opened backend shared by the subcommands.
type env struct {
	cfg   config.Config
	log   *logger.Logger
	repos *app.Repositories
	close func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	repos, closeRepos, err := app.OpenRepositories(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		log:   log,
		repos: repos,
		close: func() {
			closeRepos()
			log.Sync()
		},
	}, nil
}
