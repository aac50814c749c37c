package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/requestdata"
	"github.com/polyia/polyia-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "No se pudo validar el token.", "code": "token_faltante"},
			})
			return
		}
		user, err := am.authService.CurrentUser(c.Request.Context(), tokenString)
		if err != nil {
			status := http.StatusInternalServerError
			code := "error_interno"
			if apiErr, ok := apierr.From(err); ok {
				status = apiErr.Status
				code = apiErr.Code
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error": gin.H{"message": err.Error(), "code": code},
			})
			return
		}
		rd := &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      user.ID,
			User:        user,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
