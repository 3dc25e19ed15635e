package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"taskdeck/config"
	"taskdeck/handlers"
	"taskdeck/logger"
	"taskdeck/middleware"
	"taskdeck/utils"
)

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.WithField("environment", os.Getenv("APP_ENV")).Info("starting taskdeck")

	// Initialize the database connection pool
	dbPool, err := utils.OpenDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer dbPool.Close()

	if err := utils.Migrate(context.Background(), dbPool); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	tokens, err := utils.NewTokenService(cfg.Token)
	if err != nil {
		log.WithError(err).Fatal("failed to configure token service")
	}

	users := utils.NewUserStore(dbPool)
	tasks := utils.NewTaskStore(dbPool)

	authHandler := handlers.NewAuthHandler(users, tokens, log)
	taskHandler := handlers.NewTaskHandler(tasks, log)
	requireUser := middleware.RequireUser(tokens, users, log)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /login", authHandler.Login)

	mux.Handle("POST /tasks", requireUser(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("GET /tasks", requireUser(http.HandlerFunc(taskHandler.List)))
	mux.Handle("PUT /tasks/{id}", requireUser(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("DELETE /tasks/{id}", requireUser(http.HandlerFunc(taskHandler.Delete)))

	// Open listing across all owners, admin/debug use; see DESIGN.md.
	mux.HandleFunc("GET /tasks/all", taskHandler.ListAll)

	mux.Handle("GET /metrics", middleware.MetricsHandler())

	handler := middleware.RequestID(middleware.Logging(log)(middleware.Metrics(mux)))

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
