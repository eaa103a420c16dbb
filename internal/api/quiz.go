package api

import (
	"net/http"
	"strconv"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service"

	"github.com/gin-gonic/gin"
)

type quizRoutes struct {
	qs service.QuizServiceI
	ws *service.WorkspaceService
}

func NewQuizRoutes(handler *gin.RouterGroup, qs service.QuizServiceI, ws *service.WorkspaceService) {
	r := &quizRoutes{qs: qs, ws: ws}
	h := handler.Group("/quiz")
	h.Use(middleware.RequireRoles(model.RoleEmployee, model.RoleMentor, model.RoleHR))
	{
		h.POST("/:id", r.StartQuiz)
		h.GET("/runs/:handle", r.GetRun)
		h.PUT("/runs/:handle/selection", r.Select)
		h.POST("/runs/:handle/next", r.Next)
		h.DELETE("/runs/:handle", r.CloseRun)
	}
}

type QuizResponse struct {
	Handle string           `json:"handle"`
	Quiz   service.QuizView `json:"quiz"`
}

func (r *quizRoutes) StartQuiz(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	runner, err := r.qs.StartQuiz(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to load quiz")
		return
	}

	handle := r.ws.For(session(c).ID).AddRunner(runner)
	c.JSON(http.StatusCreated, QuizResponse{Handle: handle, Quiz: runner.View()})
}

func (r *quizRoutes) runner(c *gin.Context) (*service.QuizRunner, bool) {
	runner, err := r.ws.For(session(c).ID).Runner(c.Param("handle"))
	if err != nil {
		respondError(c, err, "quiz not found")
		return nil, false
	}
	return runner, true
}

func (r *quizRoutes) GetRun(c *gin.Context) {
	runner, ok := r.runner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, QuizResponse{Handle: c.Param("handle"), Quiz: runner.View()})
}

type SelectRequest struct {
	OptionID int `json:"option_id"`
}

func (r *quizRoutes) Select(c *gin.Context) {
	runner, ok := r.runner(c)
	if !ok {
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := runner.Select(req.OptionID); err != nil {
		respondError(c, err, "failed to select option")
		return
	}
	c.JSON(http.StatusOK, QuizResponse{Handle: c.Param("handle"), Quiz: runner.View()})
}

// Next moves to the following question, or submits every answer after the
// last one. A failed submission leaves the run on the last question.
func (r *quizRoutes) Next(c *gin.Context) {
	runner, ok := r.runner(c)
	if !ok {
		return
	}
	view, err := runner.Next(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to submit quiz")
		return
	}
	c.JSON(http.StatusOK, QuizResponse{Handle: c.Param("handle"), Quiz: view})
}

func (r *quizRoutes) CloseRun(c *gin.Context) {
	r.ws.For(session(c).ID).CloseRunner(c.Param("handle"))
	c.Status(http.StatusNoContent)
}
