package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stocktrack/backend/internal/infrastructure/auth"
	"github.com/stocktrack/backend/internal/infrastructure/logger"
	"github.com/stocktrack/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ClaimsKey     = "auth_claims"
	TenantIDKey   = "auth_tenant_id"
	ActorIDKey    = "auth_actor_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticate validates the bearer token and injects the tenant and actor
// identity into the request. Handlers never read tenant ids from request
// bodies or plain headers.
func Authenticate(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		tenantID, err := claims.GetTenantUUID()
		if err != nil {
			abortUnauthorized(c, log, auth.ErrInvalidClaims, "Malformed tenant claim")
			return
		}
		actorID, err := claims.GetActorUUID()
		if err != nil {
			abortUnauthorized(c, log, auth.ErrInvalidClaims, "Malformed actor claim")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(TenantIDKey, tenantID)
		c.Set(ActorIDKey, actorID)

		// Propagate identity to the request context for downstream logging
		ctx := c.Request.Context()
		contextLogger := logger.FromContext(ctx)
		ctx, contextLogger = logger.WithTenantID(ctx, contextLogger, tenantID.String())
		ctx, _ = logger.WithActorID(ctx, contextLogger, actorID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// abortUnauthorized rejects the request with 401 and a code matching the
// validation failure
func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	if log != nil {
		log.Warn("authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	responseMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		code = "TOKEN_EXPIRED"
		responseMessage = "Token has expired"
	case auth.ErrInvalidToken:
		responseMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		responseMessage = "Token is not yet valid"
	case auth.ErrInvalidClaims:
		responseMessage = message
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, responseMessage))
}

// GetClaims retrieves the validated claims from gin.Context
func GetClaims(c *gin.Context) *auth.Claims {
	if value, exists := c.Get(ClaimsKey); exists {
		if claims, ok := value.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetTenantID retrieves the authenticated tenant ID from gin.Context
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(TenantIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetActorID retrieves the authenticated actor ID from gin.Context
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(ActorIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
