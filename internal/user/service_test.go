package user

import (
	"accmanager-api/internal/models"
	"accmanager-api/pkg/redis"
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	lookups   int32
	idLookups int32
	delay     time.Duration
	err       error
}

func newFakeRepo(users ...*models.User) *fakeRepo {
	r := &fakeRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *fakeRepo) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = "user-" + strconv.Itoa(len(r.users)+1)
	}
	r.users[user.Email] = user
	return user, nil
}

func (r *fakeRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	atomic.AddInt32(&r.idLookups, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	atomic.AddInt32(&r.lookups, 1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) delete(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
}

// replace swaps the stored record, as an out-of-band update would
func (r *fakeRepo) replace(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email] = u
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	host, portStr, _ := strings.Cut(mr.Addr(), ":")
	port, _ := strconv.Atoi(portStr)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	client := redis.New(cfg)

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func storedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	u := &models.User{ID: "user-1", Email: email, Active: true}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return u
}

func TestGetUserByEmailNormalizes(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	svc := NewService(repo, nil)

	u, err := svc.GetUserByEmail(context.Background(), "  A@B.com ")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.Email != "a@b.com" {
		t.Fatalf("Email = %q", u.Email)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.GetUserByEmail(context.Background(), "missing@b.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestGetUserByEmailDatabaseError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, nil)

	_, err := svc.GetUserByEmail(context.Background(), "a@b.com")
	if !errors.Is(err, ErrDatabaseError) {
		t.Fatalf("err = %v, want ErrDatabaseError", err)
	}
}

func TestGetUserByEmailEmpty(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	if _, err := svc.GetUserByEmail(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetUserByEmailUsesCachedID(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	_, cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := svc.GetUserByEmail(ctx, "a@b.com")
		if err != nil {
			t.Fatalf("GetUserByEmail #%d: %v", i, err)
		}
		if !u.CheckPassword("secret") {
			t.Fatal("user lost its password hash")
		}
	}

	if n := atomic.LoadInt32(&repo.lookups); n != 1 {
		t.Fatalf("email queried %d times, want 1", n)
	}
	if n := atomic.LoadInt32(&repo.idLookups); n != 2 {
		t.Fatalf("ID queried %d times, want 2", n)
	}
}

func TestCacheHoldsNoCredentials(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	mr, cache := newTestCache(t)
	svc := NewService(repo, cache)

	if _, err := svc.GetUserByEmail(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != emailCachePrefix+"a@b.com" {
		t.Fatalf("cache keys = %v, want only the email index", keys)
	}
	if got, _ := mr.Get(keys[0]); got != "user-1" {
		t.Fatalf("email index = %q, want user-1", got)
	}
}

func TestPasswordChangeInStoreIsSeen(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "old"))
	_, cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	if _, err := svc.GetUserByEmail(ctx, "a@b.com"); err != nil {
		t.Fatalf("warm lookup: %v", err)
	}

	repo.replace(storedUser(t, "a@b.com", "new"))

	u, err := svc.GetUserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.CheckPassword("old") {
		t.Fatal("old password still accepted after change")
	}
	if !u.CheckPassword("new") {
		t.Fatal("new password rejected after change")
	}
}

func TestDeletedUserIsNotFound(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	mr, cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	if _, err := svc.GetUserByEmail(ctx, "a@b.com"); err != nil {
		t.Fatalf("warm lookup: %v", err)
	}

	repo.delete("a@b.com")

	if _, err := svc.GetUserByEmail(ctx, "a@b.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if mr.Exists(emailCachePrefix + "a@b.com") {
		t.Fatal("stale email index was not dropped")
	}
}

func TestCanceledCallerDoesNotFailSharedLookup(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	repo.delay = 100 * time.Millisecond
	svc := NewService(repo, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetUserByEmail(firstCtx, "a@b.com")
		firstErr <- err
	}()

	// Let the first caller start the shared query before joining it
	time.Sleep(10 * time.Millisecond)
	secondDone := make(chan error, 1)
	go func() {
		u, err := svc.GetUserByEmail(context.Background(), "a@b.com")
		if err == nil && u.Email != "a@b.com" {
			err = errors.New("unexpected user " + u.Email)
		}
		secondDone <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v, want context.Canceled", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("second caller err = %v, want success", err)
	}
}

func TestGetUserByEmailCollapsesConcurrentMisses(t *testing.T) {
	repo := newFakeRepo(storedUser(t, "a@b.com", "secret"))
	repo.delay = 50 * time.Millisecond
	svc := NewService(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetUserByEmail(context.Background(), "a@b.com"); err != nil {
				t.Errorf("GetUserByEmail: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&repo.lookups); n >= 8 {
		t.Fatalf("expected concurrent lookups to be shared, got %d queries", n)
	}
}

func TestCreateUser(t *testing.T) {
	repo := newFakeRepo()
	_, cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, " New@B.com", "hunter2")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "new@b.com" || !u.CheckPassword("hunter2") {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := svc.CreateUser(ctx, "new@b.com", "other"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("duplicate create err = %v", err)
	}

	found, err := svc.GetUserByEmail(ctx, "NEW@b.com")
	if err != nil || found.ID != u.ID {
		t.Fatalf("GetUserByEmail after create = %+v, %v", found, err)
	}
}

func TestCreateUserRejectsEmptyInput(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	if _, err := svc.CreateUser(context.Background(), "a@b.com", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
