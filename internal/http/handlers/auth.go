package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/premsagarmanikyala/mantrix-ai/internal/http/response"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email)
	if err != nil {
		response.RespondServiceError(c, ah.log, "login_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": res.AccessToken,
		"token_type":   res.TokenType,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"expires_at":   res.ExpiresAt,
		"user":         res.User,
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	u, err := ah.authService.CurrentUser(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, ah.log, "me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
