package main

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/handler"
	"github.com/sravanmaichrla/campus-placement-hub/internal/middleware"
	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/internal/service"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/config"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/logger"
	corsmiddleware "github.com/sravanmaichrla/campus-placement-hub/pkg/middleware/cors"
	reqidmiddleware "github.com/sravanmaichrla/campus-placement-hub/pkg/middleware/requestid"
)

type routerServices struct {
	tokens       *service.TokenService
	jobs         *service.JobService
	applications *service.ApplicationService
	placements   *service.PlacementService
	companies    *service.CompanyService
	reports      *service.ReportService
	files        *service.FileService
	metrics      *service.MetricsService
	db           pinger
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func newRouter(cfg *config.Config, logr *zap.Logger, s routerServices) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(s.metrics))

	metricsHandler := handler.NewMetricsHandler(s.metrics, s.db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jobHandler := handler.NewJobHandler(s.jobs)
	applicationHandler := handler.NewApplicationHandler(s.applications)
	studentHandler := handler.NewStudentHandler(s.jobs, s.applications, s.placements)
	placementHandler := handler.NewPlacementHandler(s.placements)
	companyHandler := handler.NewCompanyHandler(s.companies)
	reportHandler := handler.NewReportHandler(s.reports)
	fileHandler := handler.NewFileHandler(s.files)

	authn := middleware.JWT(s.tokens)
	admin := middleware.RequireRoles(models.RoleAdmin)
	student := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(cfg.APIPrefix)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", jobHandler.Get)
	api.GET("/files/:token", fileHandler.Download)

	secured := api.Group("", authn)
	secured.POST("/jobs", admin, jobHandler.Create)
	secured.PUT("/jobs/:id", admin, jobHandler.Update)
	secured.DELETE("/jobs/:id", admin, jobHandler.Delete)
	secured.GET("/jobs/:id/eligibility", student, jobHandler.Eligibility)
	secured.POST("/jobs/:id/apply", student, applicationHandler.Apply)
	secured.GET("/jobs/:id/applications", admin, applicationHandler.Applicants)
	secured.PATCH("/applications/:id/status", admin, applicationHandler.UpdateStatus)

	secured.GET("/admin/jobs", admin, jobHandler.ListMine)
	secured.GET("/admin/metrics", admin, metricsHandler.Snapshot)

	secured.GET("/students/me/eligible-jobs", student, studentHandler.EligibleJobs)
	secured.GET("/students/me/applications", student, studentHandler.Applications)
	secured.GET("/students/:id/placements", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), studentHandler.Placements)

	secured.POST("/placements", admin, placementHandler.Create)
	secured.GET("/placements", admin, placementHandler.List)
	secured.GET("/placements/:id", admin, placementHandler.Get)
	secured.PUT("/placements/:id", admin, placementHandler.Update)
	secured.DELETE("/placements/:id", admin, placementHandler.Delete)
	secured.POST("/placements/:id/offer-letter", student, placementHandler.UploadOfferLetter)

	secured.GET("/companies", companyHandler.List)
	secured.GET("/companies/:id/jobs", companyHandler.Jobs)
	secured.GET("/companies/:id/students", companyHandler.Students)

	reports := secured.Group("/reports", admin)
	reports.GET("/placed-students", reportHandler.PlacedStudents)
	reports.GET("/eligible-students/:jobId", reportHandler.EligibleStudents)
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/breakdown", reportHandler.Breakdown)

	return r
}
