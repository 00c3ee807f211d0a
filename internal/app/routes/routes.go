package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/uniconsult/internal/app/controllers"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/middleware"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
	"github.com/yigit/uniconsult/internal/pkg/websocket"
)

// Handlers groups everything the API routes dispatch to
type Handlers struct {
	Auth          *controllers.AuthController
	Consultations *controllers.ConsultationController
	FacultyStatus *controllers.FacultyStatusController
	Admin         *controllers.AdminController
	Health        *controllers.HealthController
	StatusFeed    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.IPRateLimiter,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// --- Public user routes ---
	users := v1.Group("/users")
	{
		users.POST("/register", h.Auth.Register)
		users.POST("/login", loginLimiter.Middleware(), h.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	me := authenticated.Group("/users")
	{
		me.POST("/logout", h.Auth.Logout)
		me.GET("/me", h.Auth.Me)
	}

	consultations := authenticated.Group("/consultations")
	{
		consultations.GET("", h.Consultations.ListConsultations)
		consultations.POST("", authMiddleware.RoleRequired(models.RoleStudent), h.Consultations.BookConsultation)
		consultations.PATCH("/:id/cancel", authMiddleware.RoleRequired(models.RoleStudent, models.RoleFaculty), h.Consultations.CancelConsultation)
		consultations.PATCH("/:id/complete", authMiddleware.RoleRequired(models.RoleFaculty), h.Consultations.CompleteConsultation)
	}

	faculty := authenticated.Group("/faculty")
	{
		faculty.GET("/status", h.FacultyStatus.ListStatuses)
		faculty.POST("/status", authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin), h.FacultyStatus.SetStatus)
		faculty.GET("/status/ws", h.StatusFeed.HandleConnection)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/faculty", h.Admin.ListFaculty)
		admin.POST("/faculty", h.Admin.CreateFaculty)
		admin.DELETE("/faculty/:id", h.Admin.DeleteFaculty)
		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/reports/consultations", h.Admin.ConsultationReport)
	}
}
