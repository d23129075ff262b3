package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nutqapp/nutq-backend/internal/handlers"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type RouterConfig struct {
	AllowOrigins      []string
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	ChildHandler      *handlers.ChildHandler
	ExerciseHandler   *handlers.ExerciseHandler
	SpecialistHandler *handlers.SpecialistHandler
	AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("nutq-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.POST("/auth/forgot-password", cfg.AuthHandler.ForgotPassword)
		api.POST("/auth/verify-reset-token", cfg.AuthHandler.VerifyResetToken)
		api.PUT("/auth/reset-password", cfg.AuthHandler.ResetPassword)
		api.POST("/auth/verify-email", cfg.AuthHandler.VerifyEmail)
		api.GET("/exercises/letters/default", cfg.ExerciseHandler.DefaultLetters)
		api.GET("/exercises/words/default", cfg.ExerciseHandler.DefaultWords)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.GET("/auth/me", cfg.AuthHandler.Me)
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.PUT("/auth/profile", cfg.AuthHandler.UpdateProfile)
	protected.PUT("/auth/change-password", cfg.AuthHandler.ChangePassword)
	protected.POST("/auth/resend-verification", cfg.AuthHandler.ResendVerification)

	// Parent
	parent := protected.Group("/")
	parent.Use(cfg.AuthMiddleware.Authorize(types.RoleParent))
	parent.POST("/children", cfg.ChildHandler.Create)
	parent.GET("/children", cfg.ChildHandler.ListMine)
	parent.GET("/auth/my-specialist", cfg.AuthHandler.MySpecialist)

	// Shared child access; the service layer decides per actor kind.
	protected.GET("/children/:id", cfg.ChildHandler.Get)
	protected.GET("/exercises/child/:childId", cfg.ExerciseHandler.ListByChild)
	protected.GET("/exercises/child/:childId/content", cfg.ExerciseHandler.Content)

	// Specialist
	specialist := protected.Group("/specialist")
	specialist.Use(cfg.AuthMiddleware.Authorize(types.RoleSpecialist), cfg.AuthMiddleware.RequireVerifiedEmail())
	specialist.GET("/parents/search", cfg.SpecialistHandler.SearchParents)
	specialist.GET("/parents", cfg.SpecialistHandler.MyParents)
	specialist.POST("/link-parent", cfg.SpecialistHandler.LinkParent)
	specialist.DELETE("/link-parent/:parentId", cfg.SpecialistHandler.UnlinkParent)
	specialist.GET("/children", cfg.SpecialistHandler.MyChildren)
	specialist.POST("/assign-child", cfg.SpecialistHandler.AssignChild)
	specialist.DELETE("/assign-child/:childId", cfg.SpecialistHandler.UnassignChild)

	// Exercise authoring
	authoring := protected.Group("/exercises")
	authoring.Use(cfg.AuthMiddleware.Authorize(types.RoleSpecialist), cfg.AuthMiddleware.RequireVerifiedEmail())
	authoring.POST("", cfg.ExerciseHandler.CreatePlan)
	authoring.PUT("/:id", cfg.ExerciseHandler.UpdatePlan)
	authoring.DELETE("/:id", cfg.ExerciseHandler.Deactivate)
	authoring.PUT("/child/:childId/content", cfg.ExerciseHandler.UpsertContent)

	// Admin
	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.Authorize(types.RoleAdmin, types.RoleSuperadmin), cfg.AuthMiddleware.RequireCenterAccess())
	admin.GET("/center", cfg.AdminHandler.GetCenter)
	admin.PUT("/center", cfg.AdminHandler.UpdateCenter)
	admin.POST("/specialists", cfg.AdminHandler.CreateSpecialist)
	admin.GET("/specialists", cfg.AdminHandler.ListSpecialists)
	admin.GET("/specialists/:id", cfg.AdminHandler.GetSpecialist)
	admin.PUT("/specialists/:id", cfg.AdminHandler.UpdateSpecialist)
	admin.DELETE("/specialists/:id", cfg.AdminHandler.DeleteSpecialist)
	admin.GET("/specialists/:id/search-parents", cfg.AdminHandler.SearchParents)
	admin.POST("/specialists/:id/link-parent", cfg.AdminHandler.LinkParent)
	admin.POST("/specialists/:id/unlink-parent/:parentId", cfg.AdminHandler.UnlinkParent)
	admin.POST("/specialists/:id/link-child", cfg.AdminHandler.AssignChild)
	admin.POST("/specialists/:id/unlink-child/:childId", cfg.AdminHandler.UnassignChild)
	admin.GET("/stats", cfg.AdminHandler.Stats)
	admin.GET("/parents", cfg.AdminHandler.Parents)
	admin.GET("/my-children", cfg.AdminHandler.Children)

	return router
}
