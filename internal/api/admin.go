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

type adminRoutes struct {
	ds service.DashboardServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, ds service.DashboardServiceI) {
	r := &adminRoutes{ds: ds}
	h := handler.Group("/admin")
	h.Use(middleware.RequireRoles(model.RoleAdmin))
	{
		h.GET("/dashboard", r.Dashboard)
		h.POST("/users", r.CreateUser)
		h.POST("/users/:id/approve", r.ApproveUser)
		h.POST("/requests/:id/reject", r.RejectRequest)
	}
}

func (r *adminRoutes) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, r.ds.AdminDashboard(c.Request.Context()))
}

func (r *adminRoutes) CreateUser(c *gin.Context) {
	var req service.NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := r.ds.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to create user")
		return
	}
	logger.Logger().Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

type ApproveRequest struct {
	Role model.Role `json:"role"`
}

func (r *adminRoutes) ApproveUser(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := r.ds.ApproveUser(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err, "failed to approve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (r *adminRoutes) RejectRequest(c *gin.Context) {
	if err := r.ds.RejectRequest(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "failed to reject request")
		return
	}
	c.Status(http.StatusNoContent)
}
