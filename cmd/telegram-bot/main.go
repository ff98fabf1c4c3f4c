package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookdna/internal/app"
	"cookdna/internal/config"
	"cookdna/internal/database"
	"cookdna/internal/ghost"
	"cookdna/internal/logging"
	"cookdna/internal/telegram"

	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load policy")
	}

	// 2. Initialize the SQLite database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 3. Initialize Services
	application, err := app.NewApp(db, ghost.NewClient(cfg), policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, telegram.NewSessionRepository(db.SQL))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram Bot")
	}

	// 5. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("Telegram Bot Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
