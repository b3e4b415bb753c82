package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minsu-dev/board-api/internal/service"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
	"github.com/minsu-dev/board-api/pkg/response"
)

// Context keys for the authenticated user and the raw bearer token. The raw
// token is kept so logout can blacklist exactly the credential in use.
const (
	ContextUserKey  = "currentUser"
	ContextTokenKey = "currentToken"
)

// JWT protects routes by requiring a valid, non-revoked access token. The
// specific rejection reason is logged but never returned: every auth failure
// surfaces as the same generic 401. Store failures surface as 503 rather
// than letting an unreachable blacklist grant access.
func JWT(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := authService.Authorize(c.Request.Context(), token)
		if err != nil {
			appErr := appErrors.FromError(err)
			logger.Info("access denied",
				zap.String("reason", appErr.Code),
				zap.String("path", c.Request.URL.Path),
			)
			if appErr.Code == appErrors.ErrStoreUnavailable.Code {
				response.Error(c, appErr)
			} else {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication failed"))
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}
