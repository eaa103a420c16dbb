package api

import (
	"net/http"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type authRoutes struct {
	ss service.SessionServiceI
	a  *middleware.SessionAuth
}

func NewAuthRoutes(handler *gin.RouterGroup, ss service.SessionServiceI, a *middleware.SessionAuth) {
	r := &authRoutes{ss: ss, a: a}
	h := handler.Group("/auth")
	{
		h.POST("/login", r.Login)
		h.POST("/register", r.Register)
		h.POST("/logout", r.Logout)
		h.GET("/me", a.RequireSession(), r.Me)
		h.GET("/home", a.RequireSession(), r.Home)
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User model.User `json:"user"`
	Home string     `json:"home"`
}

func (r *authRoutes) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := r.ss.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to log in")
		return
	}

	r.a.SetCookie(c, s)
	c.JSON(http.StatusOK, SessionResponse{User: *s.User, Home: s.Role().HomePath()})
}

func (r *authRoutes) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s, err := r.ss.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to register")
		return
	}

	r.a.SetCookie(c, s)
	c.JSON(http.StatusCreated, SessionResponse{User: *s.User, Home: s.Role().HomePath()})
}

func (r *authRoutes) Logout(c *gin.Context) {
	if s := session(c); s != nil {
		if err := r.ss.Logout(c.Request.Context(), s.ID); err != nil {
			logger.Logger().Error("failed to log out", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	r.a.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"redirect": middleware.LoginPath})
}

func (r *authRoutes) Me(c *gin.Context) {
	s := session(c)
	user, err := r.ss.Refresh(c.Request.Context(), s)
	if err != nil {
		respondError(c, err, "failed to load identity")
		return
	}
	c.JSON(http.StatusOK, SessionResponse{User: *user, Home: user.Role.HomePath()})
}

// Home answers where the index route sends the current user.
func (r *authRoutes) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"home": session(c).Role().HomePath()})
}

type profileRoutes struct {
	ss *service.SessionService
}

func NewProfileRoutes(handler *gin.RouterGroup, ss *service.SessionService) {
	r := &profileRoutes{ss: ss}
	h := handler.Group("/profile")
	h.Use(middleware.Confirmed())
	{
		h.GET("", r.GetProfile)
	}
}

func (r *profileRoutes) GetProfile(c *gin.Context) {
	profile, err := r.ss.Profile(c.Request.Context(), session(c))
	if err != nil {
		respondError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
