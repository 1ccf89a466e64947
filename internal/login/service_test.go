package login

import (
	"accmanager-api/internal/logger"
	"accmanager-api/internal/models"
	"accmanager-api/internal/tokenissuer"
	"accmanager-api/internal/user"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

type fakeStore struct {
	users  map[string]*models.User
	err    error
	calls  int
	lookup []string
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.calls++
	f.lookup = append(f.lookup, email)
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[models.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

type fakeIssuer struct {
	pair   tokenissuer.TokenPair
	err    error
	emails []string
}

func (f *fakeIssuer) IssueTokens(ctx context.Context, email string) (tokenissuer.TokenPair, error) {
	f.emails = append(f.emails, email)
	return f.pair, f.err
}

type fixture struct {
	store  *fakeStore
	issuer *fakeIssuer
	hook   *test.Hook
	svc    *Service
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	u := &models.User{ID: "user-1", Email: "a@b.com", Active: true}
	if err := u.SetPassword("secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	base, hook := test.NewNullLogger()
	f := &fixture{
		store:  &fakeStore{users: map[string]*models.User{"a@b.com": u}},
		issuer: &fakeIssuer{pair: tokenissuer.TokenPair{AccessToken: "acc", RefreshToken: "ref"}},
		hook:   hook,
	}
	f.svc = NewService(f.store, f.issuer, logger.New(base), opts)
	return f
}

func TestLoginValidationFailures(t *testing.T) {
	cases := []Credentials{
		{Email: "", Password: "secret"},
		{Email: "a@b.com", Password: ""},
		{Email: "not-an-email", Password: "secret"},
		{Email: "a@", Password: "secret"},
		{},
	}

	for _, creds := range cases {
		t.Run(fmt.Sprintf("%q/%q", creds.Email, creds.Password), func(t *testing.T) {
			f := newFixture(t, Options{})

			_, err := f.svc.Login(context.Background(), creds)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if f.store.calls != 0 || len(f.issuer.emails) != 0 {
				t.Fatalf("validation failure touched store (%d) or issuer (%d)", f.store.calls, len(f.issuer.emails))
			}
		})
	}
}

func TestLoginUserNotFound(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Login(context.Background(), Credentials{Email: "nobody@b.com", Password: "secret"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if len(f.issuer.emails) != 0 {
		t.Fatal("issuer called for unknown user")
	}
}

func TestLoginUserNotFoundUnified(t *testing.T) {
	f := newFixture(t, Options{UnifyAuthFailures: true})

	_, err := f.svc.Login(context.Background(), Credentials{Email: "nobody@b.com", Password: "secret"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
}

func TestLoginStoreFailure(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.err = fmt.Errorf("%w: connection refused", user.ErrDatabaseError)

	_, err := f.svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret"})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("err = %v, want ErrStore", err)
	}
	if len(f.issuer.emails) != 0 {
		t.Fatal("issuer called after store failure")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if len(f.issuer.emails) != 0 {
		t.Fatal("issuer called after wrong password")
	}
}

func TestLoginSuccessPassesTokensThrough(t *testing.T) {
	f := newFixture(t, Options{})

	pair, err := f.svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Fatalf("unexpected pair %+v", pair)
	}
	if len(f.issuer.emails) != 1 {
		t.Fatalf("issuer called %d times, want 1", len(f.issuer.emails))
	}
}

func TestLoginSendsRawEmailToIssuer(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Login(context.Background(), Credentials{Email: "A@B.com ", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(f.issuer.emails) != 1 || f.issuer.emails[0] != "A@B.com " {
		t.Fatalf("issuer emails = %q, want the raw request value", f.issuer.emails)
	}
}

func TestLoginUpstreamFailure(t *testing.T) {
	f := newFixture(t, Options{})
	f.issuer.err = &tokenissuer.Error{
		Code:       tokenissuer.CodeBadResponse,
		StatusCode: 502,
		Message:    "Request failed with status code 502",
	}

	_, err := f.svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secret"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.Message != "Request failed with status code 502" {
		t.Fatalf("Message = %q", upstream.Message)
	}
	if upstream.Code != tokenissuer.CodeBadResponse {
		t.Fatalf("Code = %q", upstream.Code)
	}
	if len(f.issuer.emails) != 1 {
		t.Fatalf("issuer called %d times, want exactly one attempt", len(f.issuer.emails))
	}
}

func TestLoginNeverLogsPassword(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, _ = f.svc.Login(ctx, Credentials{Email: "a@b.com", Password: "wrong-pass-xyz"})
	_, _ = f.svc.Login(ctx, Credentials{Email: "bad", Password: "wrong-pass-xyz"})

	for _, entry := range f.hook.AllEntries() {
		line, _ := entry.String()
		if strings.Contains(line, "wrong-pass-xyz") {
			t.Fatalf("password leaked into log: %s", line)
		}
	}
}

func TestLoginLogsStageAndEmail(t *testing.T) {
	f := newFixture(t, Options{})

	_, _ = f.svc.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})

	entry := f.hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry")
	}
	if entry.Data["stage"] != StagePassword || entry.Data["email"] != "a@b.com" || entry.Data["prefix"] != LogPrefix {
		t.Fatalf("unexpected fields %v", entry.Data)
	}
}
