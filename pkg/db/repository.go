package db

import (
	"context"

	"gorm.io/gorm"
)

// Repository defines a generic repository interface
type Repository[T any] interface {
	// Basic CRUD operations
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id any) (*T, error)

	// Additional helper methods
	FindOneWhere(ctx context.Context, condition string, args ...any) (*T, error)

	// Get the underlying DB connection
	DB() *gorm.DB
}

// BaseRepository implements the Repository interface on top of gorm
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewRepositoryWithDB creates a repository with a specific DB connection
func NewRepositoryWithDB[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{
		db: db,
	}
}

// DB returns the underlying DB connection
func (r *BaseRepository[T]) DB() *gorm.DB {
	return r.db
}

// Create saves a new entity inside a transaction
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	// For creation, we use a transaction to ensure atomicity
	return withTransactionDB(r.db, ctx, func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
}

// FindByID finds an entity by ID
func (r *BaseRepository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindOneWhere finds a single entity matching the condition
func (r *BaseRepository[T]) FindOneWhere(ctx context.Context, condition string, args ...any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(condition, args...).First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}
