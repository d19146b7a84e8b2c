package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/credential"
	"github.com/atelierppf/fieldsync/internal/gateway"
	"github.com/atelierppf/fieldsync/internal/history"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/normalize"
	"github.com/atelierppf/fieldsync/internal/store"
	"github.com/atelierppf/fieldsync/internal/tasks"
	"github.com/atelierppf/fieldsync/internal/workflow"
)

// app is the composition root: one set of service instances per process,
// wired explicitly and passed to commands.
type app struct {
	cfg      *model.AppConfig
	log      *logrus.Logger
	client   *backend.Client
	tasks    *tasks.Service
	workflow *workflow.Service
	history  *history.Service
}

// newApp loads configuration, resolves the API token, and wires the
// service graph.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf(
			"no backend base_url configured; edit %s", path,
		)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	normalize.SetLogger(log)

	token := tokenFlag
	if token == "" {
		// A missing keyring entry is not fatal here; calls fail fast
		// with an auth-required error instead.
		token, _ = credential.Get(credential.TokenKey)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, token)
	cache := gateway.NewCache(time.Duration(cfg.Cache.TTLSec) * time.Second)
	inv := gateway.NewInvoker(cache, log)

	taskSvc := tasks.NewService(client, inv, log)

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		tasks:    taskSvc,
		workflow: workflow.NewService(client, inv, taskSvc, log),
		history:  history.NewService(client, inv, taskSvc, log),
	}, nil
}

// openStore opens the local offline cache database.
func (a *app) openStore() (store.Store, error) {
	return store.NewSQLiteStore(a.cfg.DatabasePath)
}

// fetchTimeout returns the configured per-fetch timeout.
func (a *app) fetchTimeout() time.Duration {
	return time.Duration(a.cfg.Backend.FetchTimeoutSec) * time.Second
}
