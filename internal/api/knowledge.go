package api

import (
	"mime"
	"net/http"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type knowledgeRoutes struct {
	ks service.KnowledgeServiceI
}

func NewKnowledgeRoutes(handler *gin.RouterGroup, ks service.KnowledgeServiceI) {
	r := &knowledgeRoutes{ks: ks}
	h := handler.Group("/knowledge")
	h.Use(middleware.Confirmed())
	{
		h.GET("", r.ListFiles)
		h.POST("", r.UploadFile)
		h.DELETE("/:id", r.DeleteFile)
		h.GET("/:id/download", r.DownloadFile)
	}
}

func (r *knowledgeRoutes) ListFiles(c *gin.Context) {
	c.JSON(http.StatusOK, r.ks.ListFiles(c.Request.Context(), c.Query("search")))
}

func (r *knowledgeRoutes) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		logger.Logger().Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()

	file, err := r.ks.UploadFile(c.Request.Context(), session(c).Role(), header.Filename, f)
	if err != nil {
		respondError(c, err, "failed to upload file")
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (r *knowledgeRoutes) DeleteFile(c *gin.Context) {
	if err := r.ks.DeleteFile(c.Request.Context(), session(c).Role(), c.Param("id"), confirmed(c)); err != nil {
		respondError(c, err, "failed to delete file")
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *knowledgeRoutes) DownloadFile(c *gin.Context) {
	d, err := r.ks.DownloadFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to download file")
		return
	}
	defer d.Body.Close()

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extra := map[string]string{}
	if d.Filename != "" {
		extra["Content-Disposition"] = mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename})
	}
	c.DataFromReader(http.StatusOK, d.ContentLength, contentType, d.Body, extra)
}
