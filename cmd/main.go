package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/autostudio/internal/api"
	"github.com/bilgisen/autostudio/internal/app"
	"github.com/bilgisen/autostudio/internal/config"
	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting AutoStudio...")

	if cfg.AIApiKey == "" {
		log.Warn().Msg("AI_API_KEY is not set, requests need a personal Gemini key")
	}

	studioApp, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize studio")
	}
	defer func() {
		log.Info().Msg("Closing studio...")
		if err := studioApp.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing studio")
		}
	}()
	studioApp.Scheduler.Start()

	server := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(server, api.NewHandlers(studioApp.Studio, studioApp.Scheduler), api.RouteConfig{
		AdminAPIKey: cfg.AdminAPIKey,
	})

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
