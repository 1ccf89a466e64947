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

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// LogPrefix tags every entry written by the login pipeline
const LogPrefix = "[ACC-LOGIN-MANAGER]"

// Pipeline stages, used as the "stage" log field
const (
	StageSchema   = "schema"
	StageLookup   = "lookup"
	StagePassword = "password"
	StageIssuer   = "issuer"
)

// Credentials is the transient login input
type Credentials struct {
	Email    string
	Password string
}

// UserStore finds users by email
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Options tune the pipeline
type Options struct {
	// UnifyAuthFailures reports unknown users as ErrWrongPassword
	UnifyAuthFailures bool
}

// Service runs the login pipeline: validate, lookup, verify, issue
type Service struct {
	users    UserStore
	issuer   tokenissuer.Issuer
	validate *validator.Validate
	logger   *logger.Logger
	opts     Options
}

type credentialShape struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// NewService creates a login service
func NewService(users UserStore, issuer tokenissuer.Issuer, log *logger.Logger, opts Options) *Service {
	return &Service{
		users:    users,
		issuer:   issuer,
		validate: validator.New(),
		logger:   log,
		opts:     opts,
	}
}

// Login authenticates creds and returns a freshly issued token pair.
// Each stage is terminal on failure and the issuer is only called after
// the password check succeeds.
func (s *Service) Login(ctx context.Context, creds Credentials) (tokenissuer.TokenPair, error) {
	entry := s.logger.WithFields(logrus.Fields{
		"prefix": LogPrefix,
		"email":  creds.Email,
	})
	entry.Info("Trying login")

	if err := s.validate.Struct(credentialShape{
		Email:    strings.TrimSpace(creds.Email),
		Password: creds.Password,
	}); err != nil {
		entry.WithFields(logrus.Fields{"stage": StageSchema, "reason": "ERROR_MESSAGE"}).
			Warn(validationMessage(err))
		return tokenissuer.TokenPair{}, fmt.Errorf("%w: %s", ErrValidation, validationMessage(err))
	}

	found, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			entry.WithFields(logrus.Fields{"stage": StageLookup, "reason": "USER_NOT_FOUND"}).
				Warn("User not found")
			if s.opts.UnifyAuthFailures {
				return tokenissuer.TokenPair{}, ErrWrongPassword
			}
			return tokenissuer.TokenPair{}, ErrUserNotFound
		}
		entry.WithFields(logrus.Fields{"stage": StageLookup, "reason": "STORE_ERROR"}).
			Error(err.Error())
		return tokenissuer.TokenPair{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	entry.Info("User found. Checking password")

	if !found.CheckPassword(creds.Password) {
		entry.WithFields(logrus.Fields{"stage": StagePassword, "reason": "WRONG_PASSWORD"}).
			Warn("Wrong password")
		return tokenissuer.TokenPair{}, ErrWrongPassword
	}

	entry.Info("User logged. Requesting tokens")

	// The issuer receives the email exactly as supplied
	pair, err := s.issuer.IssueTokens(ctx, creds.Email)
	if err != nil {
		upstream := &UpstreamError{Message: err.Error(), Err: err}
		var issuerErr *tokenissuer.Error
		if errors.As(err, &issuerErr) {
			upstream.Code = issuerErr.Code
		}
		entry.WithFields(logrus.Fields{
			"stage":      StageIssuer,
			"reason":     "ERROR_MESSAGE",
			"error_code": upstream.Code,
		}).Error(upstream.Message)
		return tokenissuer.TokenPair{}, upstream
	}

	entry.Info("Tokens issued")
	return pair, nil
}

// validationMessage condenses validator errors to "Field: tag" pairs
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
