package middleware

import (
	"strings"

	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// SessionAuth accepts only the token issued for the session named in
// the route. A valid token for some other session is rejected outright:
// a participant can never read or toggle another participant's session,
// which is exactly the cross-user leak this service exists to prevent.
func SessionAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseSessionJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if claims.SessionID != c.Param("id") {
			util.Forbidden(c)
			c.Abort()
			return
		}

		c.Set("sessionID", claims.SessionID)
		c.Next()
	}
}

// AdminAuth guards the study administration routes.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseAdminJWT(tokenString, cfg.JWT.Secret)
		if err != nil || claims.Role != "admin" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("admin", claims.Username)
		c.Next()
	}
}
