package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/student-management-api/internal/handler"
	"github.com/noah-isme/student-management-api/internal/middleware"
	"github.com/noah-isme/student-management-api/internal/service"
	"github.com/noah-isme/student-management-api/pkg/config"
	"github.com/noah-isme/student-management-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-management-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-management-api/pkg/middleware/requestid"
)

// Dependencies carries the handlers and collaborators the router mounts.
// Auth, Metrics and Validator may be nil.
type Dependencies struct {
	Students  *handler.StudentHandler
	Courses   *handler.CourseHandler
	Auth      *handler.AuthHandler
	Probes    *handler.MetricsHandler
	Metrics   *service.MetricsService
	Validator *service.AuthService
	Logger    *zap.Logger
}

// New builds the gin engine with middleware and every API route.
func New(cfg *config.Config, deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.GET("/health", deps.Probes.Health)
	r.GET("/ready", deps.Probes.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", deps.Probes.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	audit := deps.Logger.Named("audit")

	// Writes require an admin token only when auth is on.
	var guard gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Auth.Enabled && deps.Validator != nil {
		guard = middleware.JWT(deps.Validator)
		if deps.Auth != nil {
			api.POST("/auth/login", deps.Auth.Login)
		}
	}

	students := api.Group("/students")
	students.GET("", deps.Students.List)
	if cfg.Exports.Enabled {
		students.GET("/export", deps.Students.Export)
	}
	students.GET("/:id", deps.Students.Get)
	students.POST("", guard, middleware.Audit(audit, "register", "student"), deps.Students.Register)
	students.PUT("/:id", guard, middleware.Audit(audit, "update", "student"), deps.Students.Update)

	courses := api.Group("/courses")
	courses.GET("", deps.Courses.List)
	courses.GET("/:id", deps.Courses.Get)
	courses.PUT("/:id/status", guard, middleware.Audit(audit, "update_status", "course"), deps.Courses.UpdateStatus)

	return r
}
