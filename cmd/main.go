package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sessiond/internal/cache"
	"sessiond/internal/config"
	"sessiond/internal/logger"
	"sessiond/internal/repository"
	"sessiond/internal/service"
	"sessiond/internal/token"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		logger.Global().Fatal("Failed to load config", logger.Error(err))
	}

	logger.Initialize(os.Stdout)
	l := logger.Global()
	defer l.Sync()

	key, err := token.LoadSigningKey(cfg.Token.SigningSecret)
	if err != nil {
		l.Fatal("Invalid signing secret", logger.Error(err))
	}

	repo, err := repository.NewTokenRepository(cfg.Database, l)
	if err != nil {
		l.Fatal("Failed to init token repository", logger.Error(err))
	}
	defer repo.Close()

	if cfg.Database.MigrationsPath != "" {
		if err := repo.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			l.Fatal("Failed to run migrations", logger.Error(err))
		}
	}

	var blacklist cache.Blacklist
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis, l)
		if err != nil {
			l.Fatal("Failed to connect to redis", logger.Error(err))
		}
		defer redisCache.Close()
		blacklist = cache.NewTokenBlacklist(redisCache, l)
	} else {
		l.Warn("Redis address not configured, revocation blacklist disabled")
	}

	svc := service.NewService(repo, token.NewCodec(key), directory(), blacklist, cfg.Token, l)
	_ = svc // handed to the HTTP layer, which lives outside this core

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	sweeper := service.NewSweeper(repo, cfg.Token.SweepInterval.Std(), l)
	sweeper.Run(ctx)
}

// directory returns the user-directory collaborator. The real implementation
// is owned by the user-management service; this stub resolves every identity
// to itself so the core can run standalone.
func directory() service.UserDirectory {
	return passthroughDirectory{}
}

type passthroughDirectory struct{}

func (passthroughDirectory) Resolve(_ context.Context, identity string) (*service.User, error) {
	return &service.User{Subject: identity, DisplayName: identity}, nil
}
