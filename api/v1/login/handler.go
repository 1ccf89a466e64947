package login

import (
	"context"
	"errors"
	"net/http"

	internalLogin "accmanager-api/internal/login"
	"accmanager-api/internal/logger"
	"accmanager-api/internal/tokenissuer"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Authenticator runs the login pipeline
type Authenticator interface {
	Login(ctx context.Context, creds internalLogin.Credentials) (tokenissuer.TokenPair, error)
}

// Handler manages login HTTP requests
type Handler struct {
	service Authenticator
	logger  *logger.Logger
}

// NewHandler creates a new login handler
func NewHandler(service Authenticator, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// HandleLogin verifies credentials and returns a fresh token pair
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The decode error may quote the body, so only the parsed email is logged
		h.logger.WithFields(logrus.Fields{
			"prefix": internalLogin.LogPrefix,
			"email":  req.Email,
			"stage":  internalLogin.StageSchema,
			"reason": "MALFORMED_BODY",
		}).Warn("Invalid request format")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	pair, err := h.service.Login(c.Request.Context(), internalLogin.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var upstream *internalLogin.UpstreamError
		switch {
		case errors.Is(err, internalLogin.ErrValidation):
			c.AbortWithStatus(http.StatusBadRequest)
		case errors.Is(err, internalLogin.ErrUserNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, internalLogin.ErrWrongPassword):
			c.AbortWithStatus(http.StatusUnauthorized)
		case errors.As(err, &upstream):
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: upstream.Message})
		default:
			h.logger.SecureLog(err, "Login failed", "login")
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, NewLoginResponse(pair))
}
