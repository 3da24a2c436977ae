package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "civicreport/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"civicreport/internal/auth"
	"civicreport/internal/cache"
	"civicreport/internal/config"
	"civicreport/internal/db"
	"civicreport/internal/handler"
	"civicreport/internal/hashpool"
	"civicreport/internal/logger"
	"civicreport/internal/repository"
	"civicreport/internal/router"
	"civicreport/internal/service"
	"civicreport/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Civic Report API
// @version 1.0
// @description Citizen incident reporting API with cookie and bearer token sessions.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Web clients send the access_token cookie instead.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		fallback := logger.New(logger.Options{Service: "civicreport"})
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "civicreport",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, incident cache disabled until it recovers")
	}

	argon, err := hashpool.NewArgon2(hashpool.Argon2Config{
		Memory:      uint32(cfg.Argon2MemoryKB),
		Time:        uint32(cfg.Argon2Time),
		Parallelism: uint8(cfg.Argon2Parallelism),
		SaltLength:  hashpool.DefaultArgon2Config().SaltLength,
		KeyLength:   hashpool.DefaultArgon2Config().KeyLength,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("argon2 config")
	}
	pool := hashpool.New(argon, hashpool.WithWorkers(cfg.HashWorkers), hashpool.WithLogger(log))
	defer pool.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	blobs, err := storage.NewS3(ctx, storage.S3Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	incidentRepo := repository.NewIncidentRepository(gormDB)

	// Initialize services
	authService := service.NewAuthService(userRepo, pool, tokens, log)
	userService := service.NewUserService(userRepo, incidentRepo, pool)
	incidentService := service.NewIncidentService(incidentRepo, blobs, cacheClient, log)

	sessions := auth.NewSessionAdapter("", cfg.IsProduction())
	guard := auth.NewGuard(auth.NewCredentialExtractor(""), tokens, userRepo, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, log, guard, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, sessions),
		User:     handler.NewUserHandler(userService),
		Incident: handler.NewIncidentHandler(incidentService),
	})

	log.Info().Str("url", swaggerURL(cfg.SwaggerHost)).Msg("swagger documentation available")

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info().Str("addr", addr).Int("hash_workers", pool.Workers()).Str("env", cfg.Environment).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

func swaggerURL(host string) string {
	switch {
	case host == "":
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
