package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskpilot/backend/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Task       *apiHandler.TaskHandler
	User       *apiHandler.UserHandler
	Attachment *apiHandler.AttachmentHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Tasks
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.PUT("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.UpdateStatus))
	r.PUT("/api/v1/tasks/{id}/checklist", authMiddleware(handlers.Task.UpdateChecklist))
	r.PUT("/api/v1/tasks/{id}/verify", authMiddleware(handlers.Task.VerifyTask))

	// Dashboards
	r.GET("/api/v1/dashboard", authMiddleware(handlers.Task.Dashboard))
	r.GET("/api/v1/dashboard/me", authMiddleware(handlers.Task.UserDashboard))

	// Users
	r.GET("/api/v1/users", authMiddleware(handlers.User.GetUsers))
	r.GET("/api/v1/users/{id}", authMiddleware(handlers.User.GetUser))
	r.DELETE("/api/v1/users/{id}", authMiddleware(handlers.User.DeleteUser))
	r.PUT("/api/v1/profile", authMiddleware(handlers.User.UpdateProfile))

	// Attachments
	r.POST("/api/v1/tasks/{id}/attachments", authMiddleware(handlers.Attachment.Upload))
	r.GET("/api/v1/tasks/{id}/attachments", authMiddleware(handlers.Attachment.List))
	r.GET("/api/v1/attachments/{id}/download", authMiddleware(handlers.Attachment.Download))

	return r
}
