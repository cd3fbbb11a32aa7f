package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studentportal/portal-server-go/internal/config"
	"github.com/studentportal/portal-server-go/internal/credential"
	"github.com/studentportal/portal-server-go/internal/handler"
	"github.com/studentportal/portal-server-go/internal/jobs"
	"github.com/studentportal/portal-server-go/internal/middleware"
	"github.com/studentportal/portal-server-go/internal/repository"
	"github.com/studentportal/portal-server-go/internal/service"
	"github.com/studentportal/portal-server-go/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("PORTAL_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	userRepo := repository.NewUserRepository(cfg.DataDir)
	contactRepo := repository.NewContactRepository(cfg.DataDir)

	hasher := credential.NewHasher(cfg.BcryptCost)
	sessions := session.NewManager(cfg.SessionTTL())

	accountService := service.NewAccountService(userRepo, hasher, sessions)
	contactService := service.NewContactService(contactRepo)

	sessionMiddleware := middleware.NewSessionMiddleware(sessions, accountService, cfg.SessionTTL())
	loginLimiter := middleware.NewLoginRateLimiter()
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(accountService, sessions, cfg.SessionTTL())
	profileHandler := handler.NewProfileHandler(sessions)
	contactHandler := handler.NewContactHandler(contactService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	authHandler.Mount(r, loginLimiter)

	r.Route("/profile", func(r chi.Router) {
		r.Use(sessionMiddleware.Require)
		r.Mount("/", profileHandler.Routes())
	})

	r.Route("/contact", func(r chi.Router) {
		r.Use(sessionMiddleware.Require)
		r.Mount("/", contactHandler.Routes())
	})

	r.NotFound(handler.NewStaticHandler(cfg.StaticDir).ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(sessions, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("dataDir", cfg.DataDir).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
