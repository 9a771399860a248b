package routes

import (
	"context"
	"os"

	"JanSamadhan/internal/auth"
	"JanSamadhan/internal/complaint"
	"JanSamadhan/internal/config"
	"JanSamadhan/internal/project"
	"JanSamadhan/internal/reminder"
	appmw "JanSamadhan/pkg/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the whole portal: config, repositories, services, handlers
// and the HTTP server.
var Module = fx.Module("portal",
	fx.Provide(
		config.NewLogger,
		config.NewMongoDBConfig,
		config.NewMongoDBClient,
		config.NewS3Config,
		config.NewObjectStore,
		config.NewResendConfig,
		config.NewEmailService,

		auth.NewConfig,
		auth.NewDepartmentRepository,
		auth.NewAuthService,
		auth.NewAuthHandler,

		complaint.NewComplaintRepository,
		complaint.NewComplaintService,
		complaint.NewComplaintHandler,

		project.NewProjectRepository,
		project.NewProjectService,
		project.NewProjectHandler,

		reminder.NewReminderRepository,
		reminder.NewReminderService,
		reminder.NewReminderScheduler,

		NewEchoServer,

		// Interface bindings for the service layer.
		func(r *auth.DepartmentRepository) auth.DepartmentStore { return r },
		func(e *config.EmailService) auth.EmailSender { return e },
		func(r *complaint.ComplaintRepository) complaint.Store { return r },
		func(r *auth.DepartmentRepository) complaint.DepartmentChecker { return r },
		func(s *config.ObjectStore) complaint.Uploader { return s },
		func(r *project.ProjectRepository) project.Store { return r },
		func(s *config.ObjectStore) project.Uploader { return s },
		func(r *reminder.ReminderRepository) reminder.Store { return r },
		func(e *config.EmailService) reminder.EmailSender { return e },
	),
	fx.Invoke(config.EnsureIndexes),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(s *reminder.ReminderScheduler, lc fx.Lifecycle) { s.StartScheduler(lc) }),
)

func NewEchoServer(lc fx.Lifecycle, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{allowedOrigin()},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Server starting", zap.String("port", port))
			go func() {
				if err := e.Start(":" + port); err != nil {
					logger.Error("Server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func allowedOrigin() string {
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		return origin
	}
	return "http://localhost:5173"
}

// RegisterRoutes lays out the API: public tracking and auth endpoints at the
// root, everything department- or admin-scoped behind the JWT middleware.
func RegisterRoutes(e *echo.Echo, authHandler *auth.AuthHandler, complaintHandler *complaint.ComplaintHandler, projectHandler *project.ProjectHandler) {
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)
	e.POST("/admin/login", authHandler.AdminLogin)
	e.POST("/forgot-password", authHandler.ForgotPassword)
	e.POST("/reset-password", authHandler.ResetPassword)

	// Public complaint tracking by id, no session required.
	e.GET("/complaint-status/:complaintId", complaintHandler.GetStatus)

	protected := e.Group("/api")
	protected.Use(appmw.JWTMiddleware)

	protected.POST("/register", complaintHandler.Register)
	protected.GET("/department-complaints", complaintHandler.ListByDepartment)
	protected.PUT("/update-status/:complaintId", complaintHandler.UpdateStatus)

	protected.POST("/project", projectHandler.Create)
	protected.GET("/projects", projectHandler.ListAll, appmw.RequireAdmin)
	protected.GET("/department-projects", projectHandler.ListByDepartment)
	protected.GET("/project/:id", projectHandler.Get)
	protected.PUT("/update-project/:id", projectHandler.UpdateProgress)
	protected.DELETE("/project/:id", projectHandler.Delete)
}
