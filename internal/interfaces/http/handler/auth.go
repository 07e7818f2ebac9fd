package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/auth"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/bizconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler issues and revokes console access tokens
type AuthHandler struct {
	BaseHandler
	users     *auth.UserStore
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler. A nil blacklist makes logout a no-op.
func NewAuthHandler(users *auth.UserStore, tokens *auth.JWTService, blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, blacklist: blacklist}
}

// LoginRequest carries console credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// LoginResponse is the issued token and the user it belongs to
type LoginResponse struct {
	Token *auth.Token `json:"token"`
	User  auth.User   `json:"user"`
}

// Login checks credentials and returns an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, h, &req) {
		return
	}
	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.L(c.Request.Context()).Info("login rejected", zap.String("username", req.Username))
			h.Unauthorized(c, "Invalid username or password")
			return
		}
		h.HandleError(c, err)
		return
	}
	token, err := h.tokens.Generate(user.Username, user.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{Token: token, User: *user})
}

// Logout revokes the presented token until it would have expired
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}
	if h.blacklist != nil && claims.ID != "" {
		if ttl := claims.Remaining(time.Now()); ttl > 0 {
			if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
				h.HandleError(c, err)
				return
			}
		}
	}
	h.NoContent(c)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Not authenticated")
		return
	}
	h.Success(c, auth.User{Username: claims.Username, Role: claims.Role})
}
