package user

import (
	"accmanager-api/internal/models"
	"accmanager-api/pkg/db"
	"context"

	"gorm.io/gorm"
)

// Repository is the persistence boundary for user records
type Repository interface {
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// NewRepository creates a new user repository
func NewRepository(database *gorm.DB) Repository {
	return &repo{
		userRepo: db.NewRepositoryWithDB[models.User](database),
	}
}

// repo is the concrete implementation of Repository
type repo struct {
	userRepo db.Repository[models.User]
}

// SaveUser creates a new user
func (r *repo) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.userRepo.Create(ctx, user)
	return user, err
}

// FindUserByID finds a user by ID
func (r *repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.userRepo.FindByID(ctx, id)
}

// FindUserByEmail finds a user by an already normalized email
func (r *repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userRepo.FindOneWhere(ctx, "email = ?", email)
}
