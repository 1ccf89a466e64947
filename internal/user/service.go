package user

import (
	"accmanager-api/internal/models"
	"accmanager-api/pkg/redis"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// emailCachePrefix keys the email -> user ID index. Only the ID is cached,
// the record itself is always read from the store.
const emailCachePrefix = "user:email:"

// lookupTimeout bounds a shared store query once it is detached from callers
const lookupTimeout = 10 * time.Second

// Service looks up and creates users, caching the email -> ID index in Redis
type Service struct {
	repo   Repository
	cache  redis.RedisClient
	lookup singleflight.Group
}

// NewService creates a new user service. cache may be nil to disable caching
func NewService(repo Repository, cache redis.RedisClient) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetUserByEmail retrieves a user by email, normalizing it first
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}

	// Concurrent lookups for the same email share one store query. The query
	// runs detached so one caller going away does not fail the others.
	ch := s.lookup.DoChan(email, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return s.findUser(qctx, email)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		found := *res.Val.(*models.User)
		return &found, nil
	}
}

// findUser resolves the cached ID first and falls back to the email query
func (s *Service) findUser(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.findByCachedID(ctx, email); ok {
		return user, nil
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	s.cacheEmail(ctx, user)
	return user, nil
}

// findByCachedID reads the record for a cached ID. A stale index entry is
// dropped and reported as a miss.
func (s *Service) findByCachedID(ctx context.Context, email string) (*models.User, bool) {
	if s.cache == nil {
		return nil, false
	}

	userID, err := s.cache.Get(ctx, emailCachePrefix+email)
	if err != nil || userID == "" {
		return nil, false
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil || user.Email != email {
		s.invalidateEmail(ctx, email)
		return nil, false
	}

	return user, true
}

// CreateUser hashes the password and stores a new user
func (s *Service) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	user := &models.User{Email: email, Active: true}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	s.invalidateEmail(ctx, email)
	return saved, nil
}

// cacheEmail stores the email -> ID index
func (s *Service) cacheEmail(ctx context.Context, user *models.User) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, emailCachePrefix+user.Email, user.ID, s.cache.CacheTTL())
}

// invalidateEmail drops the cached email index
func (s *Service) invalidateEmail(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	_, _ = s.cache.DeleteMany(ctx, emailCachePrefix+email)
}
