package handlers

import (
	"editdesk-backend/internal/access"
	"editdesk-backend/internal/config"
	"editdesk-backend/internal/metrics"
	"editdesk-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on r. opener may be nil when the store
// serves its own signed URLs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, layer *access.Layer, opener ObjectOpener) {
	authHandler := NewAuthHandler(layer)
	profileHandler := NewProfileHandler(layer)
	projectsHandler := NewProjectsHandler(layer)
	filesHandler := NewFilesHandler(layer)
	commentsHandler := NewCommentsHandler(layer)
	adminHandler := NewAdminHandler(layer)

	r.GET("/health", HealthHandler(layer))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	public := api.Group("/auth")
	public.Use(middleware.AuthRateLimitMiddleware(cfg.AuthRatePerMinute))
	{
		public.POST("/signup", authHandler.SignUp)
		public.POST("/signin", authHandler.SignIn)
		public.POST("/resend", authHandler.ResendConfirmation)
		public.POST("/reset-password", authHandler.ResetPassword)
	}

	if opener != nil {
		api.GET("/objects/*path", NewObjectsHandler(opener).ServeObject)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/auth/signout", authHandler.SignOut)
		protected.GET("/auth/session", authHandler.Session)
		protected.PATCH("/profile", profileHandler.UpdateProfile)

		protected.GET("/projects", projectsHandler.ListProjects)
		protected.POST("/projects", projectsHandler.CreateProject)
		protected.GET("/projects/:project_id", projectsHandler.GetProject)
		protected.POST("/projects/:project_id/claim", projectsHandler.ClaimProject)
		protected.POST("/projects/:project_id/status", projectsHandler.UpdateStatus)
		protected.GET("/projects/:project_id/files", filesHandler.ListFiles)
		protected.POST("/projects/:project_id/files", filesHandler.UploadFile)
		protected.GET("/projects/:project_id/comments", commentsHandler.ListComments)
		protected.POST("/projects/:project_id/comments", commentsHandler.AddComment)

		protected.GET("/editors", adminHandler.ListEditors)
		protected.GET("/admin/stats", adminHandler.Stats)
		protected.GET("/admin/users", adminHandler.ListUsers)
		protected.PATCH("/admin/users/:user_id/role", adminHandler.UpdateRole)
		protected.PUT("/admin/projects/:project_id/editor", adminHandler.AssignEditor)
		protected.DELETE("/admin/projects/:project_id/editor", adminHandler.UnassignEditor)
	}
}
