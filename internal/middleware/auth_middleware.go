package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	authz "github.com/yigit/uniconsult/internal/app/auth"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/app/models/dto"
	"github.com/yigit/uniconsult/internal/app/services"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/auth"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "session"

// Context keys set by JWTAuth
const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextRoleType  = "roleType"
	ContextSessionID = "sessionID"
	ContextUser      = "user"
)

// Authenticator resolves a token into a verified session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Session, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
	logger        zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// tokenFrom reads the bearer header first, then the session cookie
func tokenFrom(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(header)
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", apperrors.ErrTokenNotFound
}

// Resolve verifies the request's token. Any failure means the caller is unauthenticated.
func (m *AuthMiddleware) Resolve(c *gin.Context) (*services.Session, error) {
	token, err := tokenFrom(c)
	if err != nil {
		return nil, err
	}
	return m.authenticator.Authenticate(c.Request.Context(), token)
}

func unauthorized(c *gin.Context, err error) {
	code := dto.ErrorCodeInvalidToken
	message := "Authentication failed"
	switch {
	case errors.Is(err, apperrors.ErrTokenNotFound):
		code = dto.ErrorCodeUnauthorized
		message = "Authentication required"
	case errors.Is(err, apperrors.ErrTokenExpired):
		code = dto.ErrorCodeExpiredToken
		message = "Session has expired"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		code = dto.ErrorCodeSessionRevoked
		message = "Session has been revoked"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// JWTAuth rejects requests without a verified session and stores the caller in the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.Resolve(c)
		if err != nil {
			if !isAuthFailure(err) {
				m.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Session verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
				return
			}
			unauthorized(c, err)
			return
		}

		c.Set(ContextUserID, session.User.ID)
		c.Set(ContextEmail, session.User.Email)
		c.Set(ContextRoleType, session.User.RoleType)
		c.Set(ContextSessionID, session.ID)
		c.Set(ContextUser, session.User)
		c.Next()
	}
}

// RoleRequired lets the request through only for the given roles. JWTAuth must run first.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			unauthorized(c, apperrors.ErrTokenNotFound)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
	}
}

// Principal returns the verified caller stored by JWTAuth
func Principal(c *gin.Context) (authz.Principal, bool) {
	id := c.GetInt64(ContextUserID)
	role, ok := c.Get(ContextRoleType)
	if id == 0 || !ok {
		return authz.Principal{}, false
	}
	rt, ok := role.(models.RoleType)
	if !ok {
		return authz.Principal{}, false
	}
	return authz.Principal{UserID: id, Role: rt}, true
}

func isAuthFailure(err error) bool {
	return apperrors.Is(err, apperrors.ErrTokenNotFound,
		apperrors.ErrTokenInvalid,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenRevoked,
		apperrors.ErrUnauthenticated,
		apperrors.ErrUserNotFound,
	)
}
