package main

import (
	"context"
	"flag"
	"os"

	"eventease/internal/auth"
	"eventease/internal/cache"
	"eventease/internal/config"
	"eventease/internal/db"
	"eventease/internal/logging"
	"eventease/internal/repository"
	"eventease/internal/seed"
)

func main() {
	source := flag.String("source", getenv("SEED_SOURCE", "seed.json"), "seed document: a file path or an http(s) URL")
	flag.Parse()

	logging.Init(logging.ConfigFromEnv())
	logging.Info().Str("source", *source).Msg("starting seed")

	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(gormDB)

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB, false); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	doc, err := seed.Load(ctx, *source)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load seed document")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	store := repository.NewStore(gormDB)
	idp := auth.NewLocalIdentityProvider(store.Credentials(), auth.NewJWTService(cfg.JWTSecret), auth.NewTokenStore(cacheClient), cfg.IDTokenTTL)

	res, err := seed.Apply(ctx, idp, store, doc)
	if err != nil {
		logging.Fatal().Err(err).Msg("seed failed")
	}

	logging.Info().
		Int("users_created", res.UsersCreated).
		Int("users_skipped", res.UsersSkipped).
		Int("events_created", res.EventsCreated).
		Int("events_skipped", res.EventsSkipped).
		Msg("seed completed")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
