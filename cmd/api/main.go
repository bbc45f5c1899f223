package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/siteloft/front-door-backend/config"
	"github.com/siteloft/front-door-backend/internal/bootstrap"
	"github.com/siteloft/front-door-backend/internal/hostnames"
	"github.com/siteloft/front-door-backend/internal/janitor"
	"github.com/siteloft/front-door-backend/internal/projects/repository"
	"github.com/siteloft/front-door-backend/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()
	pool, err := bootstrap.OpenDB(ctx, cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable, lookup cache disabled: %v", err)
			redisClient = nil
		}
	}

	registryClient := registry.NewClient(cfg.Registry.URL, cfg.Registry.Namespace, cfg.Registry.Token)
	oracle := hostnames.NewClient(cfg.Hostname.APIURL, cfg.Hostname.ZoneID, cfg.Hostname.Token)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "front-door",
		Version:     cfg.App.Version,
		Config:      cfg,
		DB:          pool,
		Redis:       redisClient,
		Registry:    registryClient,
		Oracle:      oracle,
	})

	sweeper := janitor.New(registryClient, repository.NewRepo(pool), cfg.Janitor.Spec)
	sweeper.Start()
	defer sweeper.Stop()

	log.Printf("front door listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
