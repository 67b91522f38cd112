package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/student-management-api/api/swagger"
	"github.com/noah-isme/student-management-api/internal/handler"
	"github.com/noah-isme/student-management-api/internal/repository"
	"github.com/noah-isme/student-management-api/internal/router"
	"github.com/noah-isme/student-management-api/internal/service"
	"github.com/noah-isme/student-management-api/pkg/config"
	"github.com/noah-isme/student-management-api/pkg/database"
	"github.com/noah-isme/student-management-api/pkg/export"
	"github.com/noah-isme/student-management-api/pkg/logger"
)

// @title Student Management API
// @version 1.0.0
// @description Student, course and enrollment status records
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	r, err := buildRouter(cfg, db, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build router", "error", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Sugar().Errorw("server stopped with error", "error", err)
		return
	}
	logr.Info("server stopped")
}

func buildRouter(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (*gin.Engine, error) {
	validate := validator.New()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var observer repository.QueryObserver
	if metrics != nil {
		observer = metrics
	}
	repo := repository.NewStudentRepository(db, observer)

	params := service.StudentServiceParams{
		Store:     repo,
		Validator: validate,
		Logger:    logr.Named("students"),
	}
	if metrics != nil {
		params.Metrics = metrics
	}
	students := service.NewStudentService(params)

	studentHandler := handler.NewStudentHandler(students, nil)
	if cfg.Exports.Enabled {
		pdf, err := pdfExporter(cfg.Exports, logr)
		if err != nil {
			return nil, err
		}
		exports := service.NewExportService(students, service.ExportConfig{Title: cfg.Exports.Title}, logr.Named("exports"), nil, pdf)
		studentHandler = handler.NewStudentHandler(students, exports)
	}

	deps := router.Dependencies{
		Students: studentHandler,
		Courses:  handler.NewCourseHandler(students),
		Probes: handler.NewMetricsHandler(metrics, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		Metrics: metrics,
		Logger:  logr,
	}

	if cfg.Auth.Enabled {
		auth := service.NewAuthService(validate, logr.Named("auth"), service.AuthConfig{
			AccessTokenSecret: cfg.Auth.Secret,
			AccessTokenExpiry: cfg.Auth.Expiration,
			Issuer:            cfg.Auth.Issuer,
			AdminEmail:        cfg.Auth.AdminEmail,
			AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		})
		deps.Auth = handler.NewAuthHandler(auth)
		deps.Validator = auth
	}

	return router.New(cfg, deps), nil
}

func pdfExporter(cfg config.ExportsConfig, logr *zap.Logger) (*export.PDFExporter, error) {
	if cfg.PDFFont == "" {
		logr.Warn("EXPORT_PDF_FONT not set; pdf exports reject non-Latin text")
		return export.NewPDFExporter(), nil
	}
	ttf, err := os.ReadFile(cfg.PDFFont)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	return export.NewPDFExporter(export.WithUTF8Font("roster", ttf)), nil
}
