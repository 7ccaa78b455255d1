package main

import (
	"context"
	"flag"
	"log"
	"time"

	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/infra/db/postgres"
	"yakmarket-admin-bot/internal/infra/redis"
)

// Resets the moderation state (message registry and audit trail) so a manual
// end-to-end run starts from a predictable place. The CMS itself is never
// touched.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Dev mode so a bot token is not required here.
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/2] Wiping message registry...")
	if cfg.Redis.URL == "" {
		log.Println("      no redis configured; the memory registry resets on restart")
	} else {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisClient.Close()
		if err := redis.NewMessageRegistry(redisClient, cfg.Registry.TTL).Clear(ctx); err != nil {
			log.Fatalf("failed to clear registry: %v", err)
		}
	}

	log.Println("[2/2] Wiping audit trail...")
	if cfg.Database.URL == "" {
		log.Println("      no database configured; skipping")
	} else {
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres connection failed: %v", err)
		}
		defer pool.Close()
		if err := postgres.NewAuditLogRepo(pool).EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		if _, err := pool.Exec(ctx, `TRUNCATE moderation_audit`); err != nil {
			log.Fatalf("failed to truncate audit trail: %v", err)
		}
	}

	log.Println("--- ✅ E2E Environment Setup Complete ---")
}
