package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/domain/identity"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// JWTClaimsKey is the gin context key of the validated claims
	JWTClaimsKey = "jwt_claims"
	// PrincipalKey is the gin context key of the resolved principal
	PrincipalKey = "principal"

	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthConfig configures Authenticate
type AuthConfig struct {
	Tokens    TokenValidator
	Directory identity.PrincipalDirectory
	// SkipPaths are served without authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate validates the bearer token, resolves the principal's organization and
// role from memberships and attaches the principal to the request context. Every
// repository call downstream is scoped by that principal.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(authHeaderKey)
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			abortUnauthenticated(c, dto.ErrCodeUnauthenticated, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.Tokens.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthenticated(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			logger.WithLogger(c.Request.Context(), log).Debug("Token rejected", zap.Error(err))
			abortUnauthenticated(c, dto.ErrCodeUnauthenticated, "Invalid token")
			return
		}
		principalID, err := claims.PrincipalID()
		if err != nil {
			abortUnauthenticated(c, dto.ErrCodeUnauthenticated, "Invalid token subject")
			return
		}

		p, err := cfg.Directory.Resolve(c.Request.Context(), principalID)
		if err != nil {
			logger.WithLogger(c.Request.Context(), log).Error("Failed to resolve principal",
				zap.String("principal_id", principalID.String()),
				zap.Error(err))
			status, code, msg := dto.ErrorInfoFor(err)
			c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(PrincipalKey, p)
		ctx := access.WithPrincipal(c.Request.Context(), p)
		ctx = logger.WithActor(ctx, p.ID.String(), orgString(p.OrgID), string(p.EffectiveRole()))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func orgString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func abortUnauthenticated(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetPrincipal returns the principal attached by Authenticate
func GetPrincipal(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}
