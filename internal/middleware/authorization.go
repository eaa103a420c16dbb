package middleware

import (
	"net/http"

	"onboarding_portal/internal/model"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const HomePath = "/app"

// RequireRoles admits sessions whose role is one of roles. Anonymous requests
// get the login redirect; other roles are sent back to the home route.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		session := SessionFrom(c)
		if !session.Authenticated() {
			log.Info("unauthenticated request", zap.String("path", c.Request.URL.Path))
			LoginRedirect(c)
			return
		}

		role := session.Role()
		if !role.In(roles...) {
			log.Info("role not allowed",
				zap.String("path", c.Request.URL.Path),
				zap.String("role", string(role)),
				zap.String("session_id", session.ID))
			Redirect(c, http.StatusForbidden, HomePath)
			return
		}

		c.Next()
	}
}

// Confirmed admits every role except unconfirmed.
func Confirmed() gin.HandlerFunc {
	return RequireRoles(model.RoleEmployee, model.RoleMentor, model.RoleHR, model.RoleAdmin)
}
