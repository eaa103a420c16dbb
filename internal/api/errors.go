package api

import (
	"errors"
	"net/http"
	"strconv"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/service"
	"onboarding_portal/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// respondError maps a service or portal failure onto the browser response.
// Portal errors keep their status and message so the user sees the server's
// own wording.
func respondError(c *gin.Context, err error, msg string) {
	log := logger.Logger()

	var apiErr *portal.APIError
	switch {
	case errors.Is(err, portal.ErrUnauthorized):
		log.Info("portal rejected session credential", zap.String("path", c.Request.URL.Path))
		middleware.ClearSessionCookie(c)
		middleware.LoginRedirect(c)
	case errors.Is(err, service.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "confirm_required": true})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSaveInProgress),
		errors.Is(err, service.ErrSubmitPending),
		errors.Is(err, service.ErrTrackAlreadySet):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrHandleNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrTrackNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNoTrackAssigned),
		errors.Is(err, service.ErrStageNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskLocked),
		errors.Is(err, service.ErrReviewRequired),
		errors.Is(err, service.ErrQuizFinished):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		log.Warn(msg, zap.Int("status", apiErr.Status), zap.String("detail", apiErr.Message))
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	}
}

func badRequest(c *gin.Context, err error) {
	logger.Logger().Info("failed to bind request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func session(c *gin.Context) *model.Session {
	return middleware.SessionFrom(c)
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func indexParam(c *gin.Context, name string) (int, bool) {
	var i int
	if err := bindIndex(c.Param(name), &i); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return i, true
}

func bindIndex(s string, dst *int) error {
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = i
	return nil
}
