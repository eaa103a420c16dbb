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

type trackRoutes struct {
	ts service.TrackServiceI
	ws *service.WorkspaceService
}

func NewTrackRoutes(handler *gin.RouterGroup, ts service.TrackServiceI, ws *service.WorkspaceService) {
	r := &trackRoutes{ts: ts, ws: ws}

	tracks := handler.Group("/tracks")
	tracks.Use(middleware.RequireRoles(model.RoleMentor))
	{
		tracks.GET("", r.ListTracks)
		tracks.DELETE("/:id", r.DeleteTrack)
	}

	editor := handler.Group("/editor")
	editor.Use(middleware.RequireRoles(model.RoleMentor))
	{
		editor.POST("", r.OpenEditor)
		editor.GET("/:handle", r.GetEditor)
		editor.DELETE("/:handle", r.CloseEditor)
		editor.PATCH("/:handle", r.UpdateTrack)
		editor.POST("/:handle/save", r.Save)

		editor.POST("/:handle/stages", r.AddStage)
		editor.PATCH("/:handle/stages/:stage", r.UpdateStage)
		editor.DELETE("/:handle/stages/:stage", r.RemoveStage)
		editor.POST("/:handle/stages/:stage/toggle", r.ToggleStage)

		editor.POST("/:handle/stages/:stage/tasks", r.AddTask)
		editor.PATCH("/:handle/stages/:stage/tasks/:task", r.UpdateTask)
		editor.DELETE("/:handle/stages/:stage/tasks/:task", r.RemoveTask)

		editor.GET("/:handle/picker", r.GetPicker)
		editor.POST("/:handle/picker/open", r.OpenPicker)
		editor.POST("/:handle/picker/close", r.ClosePicker)
		editor.PUT("/:handle/picker/filter", r.FilterPicker)
		editor.POST("/:handle/picker/files/:file", r.ToggleFile)
	}
}

func (r *trackRoutes) ListTracks(c *gin.Context) {
	c.JSON(http.StatusOK, r.ts.ListTracks(c.Request.Context()))
}

func (r *trackRoutes) DeleteTrack(c *gin.Context) {
	id := c.Param("id")
	if err := r.ts.DeleteTrack(c.Request.Context(), id, confirmed(c)); err != nil {
		respondError(c, err, "failed to delete track")
		return
	}
	c.JSON(http.StatusOK, r.ts.ListTracks(c.Request.Context()))
}

type OpenEditorRequest struct {
	TrackID string `json:"track_id"`
}

type EditorResponse struct {
	Handle string              `json:"handle"`
	State  service.EditorState `json:"state"`
}

func (r *trackRoutes) OpenEditor(c *gin.Context) {
	var req OpenEditorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	e, err := r.ts.NewTrackEditor(c.Request.Context(), req.TrackID)
	if err != nil {
		respondError(c, err, "failed to open editor")
		return
	}

	handle := r.ws.For(session(c).ID).AddEditor(e)
	logger.Logger().Debug("editor opened", zap.String("handle", handle), zap.String("track_id", req.TrackID))
	c.JSON(http.StatusCreated, EditorResponse{Handle: handle, State: e.State()})
}

func (r *trackRoutes) editor(c *gin.Context) (*service.Editor, bool) {
	e, err := r.ws.For(session(c).ID).Editor(c.Param("handle"))
	if err != nil {
		respondError(c, err, "editor not found")
		return nil, false
	}
	return e, true
}

func (r *trackRoutes) state(c *gin.Context, e *service.Editor, status int) {
	c.JSON(status, EditorResponse{Handle: c.Param("handle"), State: e.State()})
}

func (r *trackRoutes) GetEditor(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) CloseEditor(c *gin.Context) {
	r.ws.For(session(c).ID).CloseEditor(c.Param("handle"))
	c.Status(http.StatusNoContent)
}

type FieldUpdate struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

func (r *trackRoutes) UpdateTrack(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	var req FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := e.UpdateTrack(req.Field, req.Value); err != nil {
		respondError(c, err, "failed to update track")
		return
	}
	r.state(c, e, http.StatusOK)
}

// Save sends the whole tree in one call. A successful save replaces the
// editor state with the server's track.
func (r *trackRoutes) Save(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	track, err := e.Save(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to save track")
		return
	}
	logger.Logger().Info("track saved", zap.String("track_id", track.ID))
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) AddStage(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	e.AddStage()
	r.state(c, e, http.StatusCreated)
}

func (r *trackRoutes) UpdateStage(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	var req FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := e.UpdateStage(stage, req.Field, req.Value); err != nil {
		respondError(c, err, "failed to update stage")
		return
	}
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) RemoveStage(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	if err := e.RemoveStage(stage, confirmed(c)); err != nil {
		respondError(c, err, "failed to remove stage")
		return
	}
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) ToggleStage(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	if err := e.ToggleStage(stage); err != nil {
		respondError(c, err, "failed to toggle stage")
		return
	}
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) AddTask(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	if _, err := e.AddTask(stage); err != nil {
		respondError(c, err, "failed to add task")
		return
	}
	r.state(c, e, http.StatusCreated)
}

func (r *trackRoutes) UpdateTask(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	task, ok := indexParam(c, "task")
	if !ok {
		return
	}
	var req FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := e.UpdateTask(stage, task, req.Field, req.Value); err != nil {
		respondError(c, err, "failed to update task")
		return
	}
	r.state(c, e, http.StatusOK)
}

func (r *trackRoutes) RemoveTask(c *gin.Context) {
	e, ok := r.editor(c)
	if !ok {
		return
	}
	stage, ok := indexParam(c, "stage")
	if !ok {
		return
	}
	task, ok := indexParam(c, "task")
	if !ok {
		return
	}
	if err := e.RemoveTask(stage, task); err != nil {
		respondError(c, err, "failed to remove task")
		return
	}
	r.state(c, e, http.StatusOK)
}

// picker resolves the picker addressed by the optional stage and task query
// parameters; without them it is the track's own picker.
func (r *trackRoutes) picker(c *gin.Context) (*service.Picker, bool) {
	e, ok := r.editor(c)
	if !ok {
		return nil, false
	}

	stageQ, taskQ := c.Query("stage"), c.Query("task")
	if stageQ == "" {
		return e.TrackPicker(), true
	}

	var stage, task int
	if err := bindIndex(stageQ, &stage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage"})
		return nil, false
	}

	var (
		p   *service.Picker
		err error
	)
	if taskQ == "" {
		p, err = e.StagePicker(stage)
	} else {
		if err := bindIndex(taskQ, &task); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task"})
			return nil, false
		}
		p, err = e.TaskPicker(stage, task)
	}
	if err != nil {
		respondError(c, err, "picker not found")
		return nil, false
	}
	return p, true
}

func (r *trackRoutes) GetPicker(c *gin.Context) {
	p, ok := r.picker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.View())
}

func (r *trackRoutes) OpenPicker(c *gin.Context) {
	p, ok := r.picker(c)
	if !ok {
		return
	}
	p.Expand(c.Request.Context())
	c.JSON(http.StatusOK, p.View())
}

func (r *trackRoutes) ClosePicker(c *gin.Context) {
	p, ok := r.picker(c)
	if !ok {
		return
	}
	p.Collapse()
	c.JSON(http.StatusOK, p.View())
}

type FilterRequest struct {
	Filter string `json:"filter"`
}

func (r *trackRoutes) FilterPicker(c *gin.Context) {
	p, ok := r.picker(c)
	if !ok {
		return
	}
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p.SetFilter(req.Filter)
	c.JSON(http.StatusOK, p.View())
}

func (r *trackRoutes) ToggleFile(c *gin.Context) {
	p, ok := r.picker(c)
	if !ok {
		return
	}
	p.ToggleFile(c.Param("file"))
	c.JSON(http.StatusOK, p.View())
}
