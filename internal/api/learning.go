package api

import (
	"net/http"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service"

	"github.com/gin-gonic/gin"
)

type learningRoutes struct {
	ls service.LearningServiceI
}

func NewLearningRoutes(handler *gin.RouterGroup, ls service.LearningServiceI) {
	r := &learningRoutes{ls: ls}

	track := handler.Group("/track")
	track.Use(middleware.RequireRoles(model.RoleEmployee, model.RoleMentor, model.RoleHR))
	{
		track.GET("", r.TrackMap)
		track.GET("/stages/:id", r.StageDetail)
		track.POST("/tasks/:id/open", r.OpenTask)
	}

	handler.GET("/tasks", middleware.RequireRoles(model.RoleEmployee), r.TaskList)
}

func (r *learningRoutes) TrackMap(c *gin.Context) {
	m, err := r.ls.TrackMap(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to load track")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (r *learningRoutes) StageDetail(c *gin.Context) {
	detail, err := r.ls.StageDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to load stage")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (r *learningRoutes) OpenTask(c *gin.Context) {
	outcome, err := r.ls.OpenTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to open task")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (r *learningRoutes) TaskList(c *gin.Context) {
	c.JSON(http.StatusOK, r.ls.TaskList(c.Request.Context()))
}
