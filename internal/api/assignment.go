package api

import (
	"net/http"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service"

	"github.com/gin-gonic/gin"
)

type assignmentRoutes struct {
	as service.AssignmentServiceI
	ws *service.WorkspaceService
}

func NewAssignmentRoutes(handler *gin.RouterGroup, as service.AssignmentServiceI, ws *service.WorkspaceService) {
	r := &assignmentRoutes{as: as, ws: ws}

	hr := handler.Group("/hr")
	hr.Use(middleware.RequireRoles(model.RoleHR))
	{
		hr.GET("/mentors", r.MentorBoard)
		hr.POST("/mentors", r.AssignMentor)
		hr.GET("/tracks", r.TrackBoard)
		hr.POST("/tracks", r.AssignTrack)
	}

	mentor := handler.Group("/mentor/mentees")
	mentor.Use(middleware.RequireRoles(model.RoleMentor))
	{
		mentor.GET("", r.Mentees)
		mentor.POST("/:user/assign", r.BeginAssign)
		mentor.PUT("/assign/track", r.ChooseTrack)
		mentor.DELETE("/assign", r.CancelAssign)
		mentor.POST("/assign/confirm", r.ConfirmAssign)
	}
}

func (r *assignmentRoutes) MentorBoard(c *gin.Context) {
	c.JSON(http.StatusOK, r.as.MentorBoard(c.Request.Context(), c.Query("search")))
}

type AssignMentorRequest struct {
	MenteeID string `json:"mentee_id"`
	MentorID string `json:"mentor_id"`
}

func (r *assignmentRoutes) AssignMentor(c *gin.Context) {
	var req AssignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	board, err := r.as.AssignMentor(c.Request.Context(), req.MenteeID, req.MentorID)
	if err != nil {
		respondError(c, err, "failed to assign mentor")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (r *assignmentRoutes) TrackBoard(c *gin.Context) {
	c.JSON(http.StatusOK, r.as.TrackBoard(c.Request.Context(), c.Query("search")))
}

type AssignTrackRequest struct {
	UserID  string `json:"user_id"`
	TrackID string `json:"track_id"`
}

func (r *assignmentRoutes) AssignTrack(c *gin.Context) {
	var req AssignTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	board, err := r.as.AssignTrack(c.Request.Context(), req.UserID, req.TrackID)
	if err != nil {
		respondError(c, err, "failed to assign track")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (r *assignmentRoutes) mentees(c *gin.Context) *service.MenteeAssignment {
	return r.ws.For(session(c).ID).Mentees(r.as.NewMenteeAssignment)
}

// Mentees reloads the mentor's mentees and the track catalog.
func (r *assignmentRoutes) Mentees(c *gin.Context) {
	m := r.mentees(c)
	m.Load(c.Request.Context())
	c.JSON(http.StatusOK, m.View())
}

func (r *assignmentRoutes) BeginAssign(c *gin.Context) {
	m := r.mentees(c)
	if err := m.Begin(c.Param("user")); err != nil {
		respondError(c, err, "failed to start assignment")
		return
	}
	c.JSON(http.StatusOK, m.View())
}

type ChooseTrackRequest struct {
	TrackID string `json:"track_id"`
}

func (r *assignmentRoutes) ChooseTrack(c *gin.Context) {
	var req ChooseTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m := r.mentees(c)
	if err := m.Choose(req.TrackID); err != nil {
		respondError(c, err, "failed to choose track")
		return
	}
	c.JSON(http.StatusOK, m.View())
}

func (r *assignmentRoutes) CancelAssign(c *gin.Context) {
	m := r.mentees(c)
	m.Cancel()
	c.JSON(http.StatusOK, m.View())
}

func (r *assignmentRoutes) ConfirmAssign(c *gin.Context) {
	m := r.mentees(c)
	assigned, err := m.Confirm(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to assign track")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": assigned, "view": m.View()})
}
