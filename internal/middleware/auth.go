package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"confrarias/internal/pkg"
	"confrarias/internal/repository/redis"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserIDKey = "user_id"
	contextCallerKey = "caller"
)

// CallerResolver loads role and status for an authenticated subject.
type CallerResolver interface {
	Caller(ctx context.Context, userID string) (service.Caller, error)
}

type Authenticator struct {
	tokens   *pkg.TokenManager
	sessions *redis.SessionRepository
	users    CallerResolver
	log      *zap.Logger
}

func NewAuthenticator(tokens *pkg.TokenManager, sessions *redis.SessionRepository, users CallerResolver, log *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, users: users, log: log}
}

// CallerFrom returns the request's caller, or the zero Caller when anonymous.
func CallerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(contextCallerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
}

// Required rejects requests without a live session.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			unauthorized(c, "É necessário iniciar sessão.")
			return
		}
		if !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

// Optional resolves the caller when a token is present and lets anonymous
// requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" && !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) bool {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		unauthorized(c, "Formato de autorização inválido.")
		return false
	}
	tokenStr := parts[1]
	ctx := c.Request.Context()

	claims, err := a.tokens.ParseAccess(tokenStr)
	if err != nil {
		unauthorized(c, "Sessão inválida ou expirada.")
		return false
	}

	// only the latest login's token is live
	current, err := a.sessions.GetUserToken(ctx, claims.UserID)
	if err != nil || current != tokenStr {
		if err != nil && !errors.Is(err, redis.ErrTokenNotFound) {
			a.log.Warn("session lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		unauthorized(c, "A sessão terminou ou foi iniciada noutro dispositivo.")
		return false
	}
	if err = a.sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
		a.log.Warn("session extend failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}

	caller, err := a.users.Caller(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			unauthorized(c, "É necessário iniciar sessão.")
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return false
	}

	c.Set(ContextUserIDKey, caller.ID)
	c.Set(contextCallerKey, caller)
	return true
}
