package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"leavebot/internal/config"
	redisClient "leavebot/internal/platform/redis"
	"leavebot/internal/search"
)

type App struct {
	Config *config.Config
	Redis  *redis.Client
	Corpus []search.DocChunk

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	// A missing corpus disables the search_policy tool and the policy
	// fallback, but the rest of the assistant still works.
	corpus, err := search.LoadCorpus(cfg.Search.CorpusPath)
	if err != nil {
		log.Printf("load policy corpus failed, semantic search disabled: %v", err)
		corpus = nil
	}

	return &App{
		Config:    cfg,
		Redis:     redisCli,
		Corpus:    corpus,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
