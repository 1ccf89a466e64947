package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	config "accmanager-api/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// DB is the global database connection
	DB *gorm.DB

	// once ensures the database is initialized only once
	once sync.Once
)

// Initialize sets up the database connection with connection pooling
func Initialize(cfg *config.DatabaseConfig) error {
	var err error

	once.Do(func() {
		DB, err = connect(cfg)
	})

	return err
}

// connect creates a new database connection with pool settings applied
func connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	// Configure GORM logger based on environment
	logLevel := logger.Info
	if cfg.MigrateOnBoot {
		// Use higher log level during migrations
		logLevel = logger.Warn
	}

	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second, // Log queries slower than 1 second
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			// Query parameters carry emails and hashes
			ParameterizedQueries: true,
			Colorful:             false,
		},
	)

	// Connection URL
	dsn := cfg.GetDatabaseURL()

	gormConfig := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true, // Improves performance
		PrepareStmt:            cfg.PrepareCached,
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(cfg.PoolMinSize)
	sqlDB.SetMaxOpenConns(cfg.PoolMaxSize)
	sqlDB.SetConnMaxIdleTime(cfg.MaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to database %s on %s:%s (pool: %d-%d)",
		cfg.Name, cfg.Host, cfg.Port, cfg.PoolMinSize, cfg.PoolMaxSize)

	return db, nil
}

// GetDB returns the database connection
// Panics if database is not initialized
func GetDB() *gorm.DB {
	if DB == nil {
		panic("Database not initialized. Call Initialize() first")
	}

	return DB
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	log.Println("Database connection closed")
	return nil
}

// Health checks database connection health
func Health(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
