package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/dto"
	authsvc "vidaview/internal/app/services/auth"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// available answers 503 when the server was built without identity.
func (h AuthHandler) available(c *gin.Context) bool {
	if h.Service != nil {
		return true
	}
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
	return false
}

func (h AuthHandler) session(c *gin.Context, status int, result *authsvc.AuthResult, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(status, dto.NewSession(result.User, result.Token, result.ExpiresAt))
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.available(c) || !bindJSON(c, &req) {
		return
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams(req))
	h.session(c, http.StatusCreated, result, err)
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.available(c) || !bindJSON(c, &req) {
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams(req))
	h.session(c, http.StatusOK, result, err)
}

func (h AuthHandler) Logout(c *gin.Context) {
	if !h.available(c) {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), bearerTokenFromContext(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok || p.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(p.User))
}

func bearerTokenFromContext(c *gin.Context) string {
	if p, ok := currentPrincipal(c); ok && p.Token != "" {
		return p.Token
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

var _ AuthHTTP = (*AuthHandler)(nil)
