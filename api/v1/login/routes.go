package login

import (
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes registers the unauthenticated login route
func RegisterPublicRoutes(r gin.IRouter, h *Handler) {
	r.POST("/login", h.HandleLogin)
}
