// Command erpauthd runs the credential-session service: an HTTP surface
// over encrypted, browser-fingerprint-keyed ERP credential sessions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/config"
	"github.com/agentreports/erpauth/core/logger"
	"github.com/agentreports/erpauth/core/odoo"
	"github.com/agentreports/erpauth/core/sessionstore"
	"github.com/agentreports/erpauth/httpserver"
)

type appConfig struct {
	Addr          string        `env:"ERPAUTH_ADDR" envDefault:":8080"`
	StorageDir    string        `env:"ERPAUTH_STORAGE_DIR" envDefault:"auth_sessions"`
	SessionTTL    time.Duration `env:"ERPAUTH_SESSION_TTL" envDefault:"720h"`
	SweepInterval time.Duration `env:"ERPAUTH_SWEEP_INTERVAL" envDefault:"1h"`
	RedisURL      string        `env:"ERPAUTH_REDIS_URL"`
	Environment   string        `env:"ERPAUTH_ENV" envDefault:"production"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	config.MustLoad(&cfg)

	var log *slog.Logger
	production := cfg.Environment == "production"
	if production {
		log = logger.New(logger.WithProduction("erpauthd"))
	} else {
		log = logger.New(logger.WithDevelopment("erpauthd"))
	}
	slog.SetDefault(log)

	// The service cannot run without the at-rest key; any failure here is
	// a deployment error.
	key, err := sessionstore.LoadOrCreateKey(cfg.StorageDir)
	if err != nil {
		return err
	}

	store, err := buildStore(cfg, key, log)
	if err != nil {
		return err
	}

	service := authsession.New(store, odoo.NewConnectionValidator(log),
		authsession.WithTTL(cfg.SessionTTL),
		authsession.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		authsession.NewSweeper(store, cfg.SweepInterval, log).Run(ctx)
	}()

	server := httpserver.New(cfg.Addr, httpserver.NewHandler(service, log), log, production)
	err = server.Run(ctx)

	wg.Wait()
	return err
}

func buildStore(cfg appConfig, key []byte, log *slog.Logger) (authsession.Store, error) {
	if cfg.RedisURL == "" {
		return sessionstore.NewFileStore(cfg.StorageDir, key, cfg.SessionTTL, log)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return sessionstore.NewRedisStore(redis.NewClient(opts), key, cfg.SessionTTL, log)
}
