package middleware

import (
	"errors"
	"net/http"
	"strings"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	DefaultCookieName = "portal_session"
	LoginPath         = "/login"

	sessionKey = "session"
	authKey    = "session_auth"
)

type CookieConfig struct {
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
	Domain   string `mapstructure:"domain"`
	Secure   bool   `mapstructure:"secure"`
	MaxAge   int    `mapstructure:"maxAge"`
	SameSite string `mapstructure:"sameSite"`
}

type SessionAuth struct {
	sessions service.SessionServiceI
	cookie   CookieConfig
}

func NewSessionAuth(sessions service.SessionServiceI, cookie CookieConfig) *SessionAuth {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &SessionAuth{sessions: sessions, cookie: cookie}
}

// SessionMiddleware resolves the session cookie, if any, and makes the session
// available to handlers and to the portal client through the request context.
// Requests without a valid session pass through anonymous.
func (a *SessionAuth) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(authKey, a)

		id, err := c.Cookie(a.cookie.Name)
		if err != nil || id == "" {
			c.Next()
			return
		}

		session, err := a.sessions.LoadSession(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, service.ErrSessionNotFound) {
				logger.Logger().Error("failed to load session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
				return
			}
			a.ClearCookie(c)
			c.Next()
			return
		}

		SetSession(c, session)
		c.Next()
	}
}

// RequireSession rejects anonymous requests with the login redirect.
func (a *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			logger.Logger().Info("unauthenticated request", zap.String("path", c.Request.URL.Path))
			LoginRedirect(c)
			return
		}
		c.Next()
	}
}

func (a *SessionAuth) SetCookie(c *gin.Context, session *model.Session) {
	c.SetSameSite(sameSite(a.cookie.SameSite))
	c.SetCookie(a.cookie.Name, session.ID, a.cookie.MaxAge, a.cookie.Path, a.cookie.Domain, a.cookie.Secure, true)
}

func (a *SessionAuth) ClearCookie(c *gin.Context) {
	c.SetSameSite(sameSite(a.cookie.SameSite))
	c.SetCookie(a.cookie.Name, "", -1, a.cookie.Path, a.cookie.Domain, a.cookie.Secure, true)
}

// ClearSessionCookie expires the cookie set by the request's SessionAuth.
func ClearSessionCookie(c *gin.Context) {
	if a, ok := c.Get(authKey); ok {
		a.(*SessionAuth).ClearCookie(c)
	}
}

// SetSession attaches session to the gin context and to the request context
// the portal client reads its credential from.
func SetSession(c *gin.Context, session *model.Session) {
	c.Set(sessionKey, session)
	c.Request = c.Request.WithContext(portal.WithSession(c.Request.Context(), session))
}

// SessionFrom returns the request's session, or nil for anonymous requests.
func SessionFrom(c *gin.Context) *model.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*model.Session)
	return session
}

// LoginRedirect sends a page navigation to the login screen with a redirect
// and answers script requests with 401 naming where to go.
func LoginRedirect(c *gin.Context) {
	Redirect(c, http.StatusUnauthorized, LoginPath)
}

func Redirect(c *gin.Context, status int, location string) {
	if WantsHTML(c.Request) {
		c.Redirect(http.StatusSeeOther, location)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status), "redirect": location})
}

func WantsHTML(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
