package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/yourorg/cma-api/internal/archive"
	"github.com/yourorg/cma-api/internal/cache"
	"github.com/yourorg/cma-api/internal/config"
	"github.com/yourorg/cma-api/internal/events"
	"github.com/yourorg/cma-api/internal/logger"
	"github.com/yourorg/cma-api/internal/lookup"
	"github.com/yourorg/cma-api/internal/store"
	"github.com/yourorg/cma-api/internal/teams"
	"github.com/yourorg/cma-api/paragon"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	tokens := config.NewStaticTokenSource(cfg.Paragon.ServerToken)
	client := paragon.NewClient(cfg.Paragon, tokens, cfg.UpstreamTimeout)

	// Redis when configured, else the in-process map with a periodic sweep.
	var c cache.Cache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			log.Printf("[WARN] redis unavailable at %s, using in-memory cache: %v", cfg.RedisAddr, err)
		} else {
			log.Printf("[INFO] using redis cache at %s", cfg.RedisAddr)
			c = rc
		}
	}
	if c == nil {
		mem := cache.NewMemory()
		c = mem
		sched := cron.New()
		spec := fmt.Sprintf("@every %s", cfg.SweepInterval)
		if _, err := sched.AddFunc(spec, func() {
			if removed := mem.Sweep(); removed > 0 {
				log.Printf("[INFO] cache sweep removed %d entries (%d left)", removed, mem.Len())
			}
		}); err != nil {
			log.Fatalf("cache sweep schedule: %v", err)
		}
		sched.Start()
	}

	bus := events.NewInMemory(256)
	if cfg.PostgresDSN != "" {
		st, err := store.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres open: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("postgres ping: %v", err)
		}
		if err := st.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("postgres migrate: %v", err)
		}
		cancel()
		worker := &archive.Worker{Store: st, Bus: bus}
		go worker.Run(context.Background())
		log.Printf("[INFO] snapshot archive enabled")
	}

	router := BuildRouter(RouterDeps{
		Cfg:       cfg,
		Paragon:   client,
		Cache:     c,
		Teams:     teams.NewMemoryRepository(),
		Tables:    lookup.Load(),
		Bus:       bus,
		Sanitizer: paragon.DefaultPriceSanitizer(),
		Started:   time.Now(),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("cma-api listening on %s", addr)
	if err := http.ListenAndServe(addr, logger.Middleware(router)); err != nil {
		log.Fatal(err)
	}
}
