package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/databases"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/engine"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/scheduler"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/secrets"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/server"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedAdmin(ctx context.Context, store database.DB) {
	username := getEnv("ADMIN_USERNAME", "admin")
	password := getEnv("ADMIN_PASSWORD", "admin123")
	email := getEnv("ADMIN_EMAIL", "admin@example.com")

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("failed seeding admin:", err)
		return
	}
	user := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := store.UpsertUser(ctx, &user); err != nil {
		log.Println("failed seeding admin:", err)
		return
	}
	log.Println("admin seeded OK")
}

func main() {
	// LOAD ENV
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		log.Fatal("invalid PORT:", err)
	}

	sec, err := secrets.New(getEnv("ENCRYPTION_KEY", "change-this-in-production"))
	if err != nil {
		log.Fatal("invalid ENCRYPTION_KEY:", err)
	}
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	// INIT DB
	store := database.New()

	// ADMIN SEED
	seedAdmin(context.Background(), store)

	// SERVICES
	eng := engine.New(store, engine.NewClientFactory(sec), logger)
	sched := scheduler.New(store, eng, logger)
	sched.Start()
	if err := sched.RescheduleAll(context.Background()); err != nil {
		logger.Error("failed to restore sync jobs", "error", err)
	}
	pools := databases.NewPoolManager(sec)

	srv := server.NewServer(&server.Server{
		Port:      port,
		DB:        store,
		Secrets:   sec,
		Engine:    eng,
		Scheduler: sched,
		Pools:     pools,
		JWTSecret: []byte(jwtSecret),
	})

	// START SERVER
	go func() {
		logger.Info("server running", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error:", err)
		}
	}()

	// GRACEFUL SHUTDOWN
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	// Wait for in-flight sync runs before closing pools.
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
	}
	pools.Close()
}
