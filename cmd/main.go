package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accmanager-api/internal/logger"
	"accmanager-api/internal/models"
	"accmanager-api/internal/tokenissuer"
	"accmanager-api/internal/user"
	"accmanager-api/pkg/config"
	"accmanager-api/pkg/db"
	"accmanager-api/pkg/redis"
	"accmanager-api/router"
)

func main() {
	createUser := flag.String("create-user", "", "create a user with this email (password read from CREATE_USER_PASSWORD) and exit")
	flag.Parse()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupGracefulShutdown(cancel)

	log.Println("Loading configuration...")
	appConfig := config.LoadConfig()

	appLogger, err := logger.Setup(logger.Options{
		SentryDSN:   appConfig.Sentry.DSN,
		Environment: appConfig.Environment,
		Release:     appConfig.Sentry.Release,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Flush(2 * time.Second)

	log.Println("Initializing database connection...")
	if err := db.Initialize(appConfig.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if appConfig.Database.MigrateOnBoot {
		log.Println("Running database migrations...")
		migrationCfg := db.NewMigrationConfig(appConfig.Database.MigrationsPath)

		if appConfig.IsDevelopment() {
			// Auto-migrate models instead of SQL migrations in development
			migrationCfg.AutoMigrateModels = true
			err = db.RunMigrations(migrationCfg, &models.User{})
		} else {
			err = db.RunMigrations(migrationCfg)
		}
		if err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
	}

	log.Println("Initializing Redis connection...")
	redis.InitDefault(appConfig.Redis)
	redisClient := redis.GetDefault()

	if err := redisClient.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis successfully")

	userService := user.NewService(user.NewRepository(db.GetDB()), redisClient)

	if *createUser != "" {
		u, err := userService.CreateUser(ctx, *createUser, os.Getenv("CREATE_USER_PASSWORD"))
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.Printf("Created user %s (%s)", u.Email, u.ID)
		gracefulShutdown(time.Duration(appConfig.ShutdownTimeout) * time.Second)
		return
	}

	issuer, err := tokenissuer.NewClient(appConfig.TokenIssuer)
	if err != nil {
		log.Fatalf("Failed to configure token issuer: %v", err)
	}
	log.Printf("Token issuer endpoint: %s (timeout %s)", issuer.URL(), appConfig.TokenIssuer.Timeout)

	log.Println("Setting up router...")
	ginEngine := router.SetupRouter(appConfig, router.Dependencies{
		Users:  userService,
		Issuer: issuer,
		Logger: appLogger,
		Health: map[string]router.HealthCheck{
			"database": db.Health,
			"redis":    redisClient.Ping,
		},
	})

	srv := &http.Server{
		Addr:              appConfig.Host + ":" + appConfig.Port,
		Handler:           ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server started on %s:%s", appConfig.Host, appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownTimeout := time.Duration(appConfig.ShutdownTimeout) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	gracefulShutdown(shutdownTimeout)
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Received shutdown signal")
		cancel()
	}()
}

// gracefulShutdown closes backing connections
func gracefulShutdown(timeout time.Duration) {
	log.Println("Closing database connections...")
	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Closing Redis connections...")
	redis.CloseAll()

	log.Printf("Shutdown complete (timeout %s)", timeout)
}
