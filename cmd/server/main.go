package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"

	"eventease/docs"
	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/cache"
	"eventease/internal/config"
	"eventease/internal/db"
	"eventease/internal/handler"
	"eventease/internal/logging"
	"eventease/internal/notify"
	"eventease/internal/repository"
	"eventease/internal/router"
	"eventease/internal/service"
	"eventease/internal/supervisor"
)

// @title EventEase API
// @version 1.0
// @description Event listings, RSVPs, moderation and user administration.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
func main() {
	logging.Init(logging.ConfigFromEnv())
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("database init")
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logging.Warn().Err(err).Msg("database close")
		}
	}()

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logging.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, revocation and stats cache degraded")
	}

	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	idp := auth.NewLocalIdentityProvider(store.Credentials(), jwtService, tokenStore, cfg.IDTokenTTL)
	resolver := auth.NewSessionResolver(idp, store.Users())

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("authorization policy")
	}

	// Initialize services
	authService := service.NewAuthService(idp, store.Users(), enforcer, cfg)
	eventService := service.NewEventService(store, enforcer)
	rsvpService := service.NewRSVPService(store, enforcer)
	commentService := service.NewCommentService(store)
	moderationService := service.NewModerationService(store, enforcer)
	adminService := service.NewAdminService(store, idp, enforcer, cacheClient)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, resolver, enforcer, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, resolver, cfg),
		Events:   handler.NewEventHandler(eventService, resolver),
		RSVPs:    handler.NewRSVPHandler(rsvpService, resolver),
		Comments: handler.NewCommentHandler(commentService, resolver),
		Staff:    handler.NewStaffHandler(moderationService, resolver),
		Admin:    handler.NewAdminHandler(adminService, resolver),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	sender, closeSender, err := notify.NewSender(cfg.Notify)
	if err != nil {
		logging.Fatal().Err(err).Msg("notification sender")
	}
	defer func() {
		if err := closeSender(); err != nil {
			logging.Warn().Err(err).Msg("notification sender close")
		}
	}()

	relayer := notify.NewRelayer(store.Outbox(), sender, cfg.Notify.BatchSize, cfg.Notify.Interval, cfg.Notify.MaxRetries)

	sup := supervisor.New("eventease")
	sup.Add(supervisor.NewHTTPService(e, ":"+cfg.ServerPort, 0))
	sup.Add(relayer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", ":"+cfg.ServerPort).
		Str("db", cfg.DBDriver).
		Str("notify", cfg.Notify.Transport).
		Msg("server starting")

	if err := sup.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("server stopped")
}
