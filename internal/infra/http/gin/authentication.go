package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/access"
	"vidaview/internal/app/services/auth"
	domainauth "vidaview/internal/domain/auth"
	domainuser "vidaview/internal/domain/user"
)

const principalContextKey = "vidaview.principal"

type principal struct {
	Actor access.Actor
	User  *domainuser.User
	Token string
}

type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

// Handle resolves the bearer token when one is present. Anonymous requests
// pass through; handlers decide whether they need an actor.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	p := principal{Actor: resolved.Actor(), User: resolved.User, Token: token}
	c.Set(principalContextKey, p)
	c.Set("user_id", string(p.Actor.UserID))
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireActor answers 401 when the request carries no valid session.
func requireActor(c *gin.Context) (access.Actor, bool) {
	p, ok := currentPrincipal(c)
	if !ok || p.Actor.IsZero() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return access.Actor{}, false
	}
	return p.Actor, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
