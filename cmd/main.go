// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/communitysquad/eventhub/internal/auth"
	"github.com/communitysquad/eventhub/internal/config"
	"github.com/communitysquad/eventhub/internal/database"
	"github.com/communitysquad/eventhub/internal/handler"
	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/repository"
	"github.com/communitysquad/eventhub/internal/service"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := database.MigrateUp(cfg.DB.URL()); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}
	logger.Info().Msg("connected to postgres, schema up to date")

	// Wire up layers.
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, "eventhub")

	authSvc := service.NewAuthService(userRepo, roleRepo, tokens, cfg.AuthSecret, logger)
	userSvc := service.NewUserService(userRepo, roleRepo, logger)
	categorySvc := service.NewCategoryService(categoryRepo)
	eventSvc := service.NewEventService(eventRepo, categoryRepo, enrollmentRepo, documentRepo,
		cfg.DefaultLimit, cfg.BaseURL, logger)

	uploads := handler.NewUploadStore(cfg.UploadDir)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	eventHandler := handler.NewEventHandler(eventSvc, uploads)

	authenticator := handler.NewAuthenticator(tokens, userRepo, roleRepo)
	adminOnly := handler.RequireRoles(model.RoleAdmin)

	// Build the router.
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/check", authHandler.Check)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)

		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Get("/", userHandler.List)
			r.With(adminOnly).Patch("/update-role", userHandler.UpdateRole)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Get("/{id}", categoryHandler.Get)
			r.With(adminOnly).Post("/", categoryHandler.Create)
			r.With(adminOnly).Patch("/{id}", categoryHandler.Update)
			r.With(adminOnly).Delete("/{id}", categoryHandler.Remove)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/hours", eventHandler.AccruedHours)
			r.Post("/enroll", eventHandler.Enroll)
			r.Patch("/enroll/{id}", eventHandler.UpdateEnrollment)
			r.Get("/{id}", eventHandler.Get)
			r.With(adminOnly).Post("/", eventHandler.Create)
			r.With(adminOnly).Patch("/{id}", eventHandler.Update)
			r.With(adminOnly).Delete("/{id}", eventHandler.Remove)
			r.With(adminOnly).Patch("/{id}/publish", eventHandler.Publish)
			r.With(adminOnly).Patch("/{id}/attendance", eventHandler.MarkAttendance)
			r.With(adminOnly).Get("/{id}/users", eventHandler.EnrolledUsers)
		})
	})

	// Serve uploaded images.
	r.Handle("/img/*", http.StripPrefix("/img/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Start server with graceful shutdown.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
