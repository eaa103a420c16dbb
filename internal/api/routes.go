package api

import (
	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// Register mounts every browser-facing route group under handler. The session
// middleware runs first so each group sees the request's session.
func Register(handler *gin.RouterGroup, svc *service.Service, a *middleware.SessionAuth) {
	handler.Use(a.SessionMiddleware())

	NewAuthRoutes(handler, svc.SessionService, a)
	NewProfileRoutes(handler, svc.SessionService)
	NewTrackRoutes(handler, svc.TrackService, svc.Workspaces)
	NewAssignmentRoutes(handler, svc.AssignmentService, svc.Workspaces)
	NewQuizRoutes(handler, svc.QuizService, svc.Workspaces)
	NewLearningRoutes(handler, svc.LearningService)
	NewKnowledgeRoutes(handler, svc.KnowledgeService)
	NewAdminRoutes(handler, svc.DashboardService)
	NewChatRoutes(handler, svc.ChatService, svc.Workspaces)
}
