package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	ip := c.ClientIP()
	if h.rateLimiter.Blocked(ip) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if utils.ErrorKind(err) == utils.ErrUnauthenticated {
			h.rateLimiter.Allow(ip)
		}
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Logged out", nil)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, 200, "Principal retrieved", models.Describe(middleware.GetPrincipal(c)))
}
