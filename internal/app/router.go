package app

import (
	"hilfo_survey_backend/docs"
	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/middleware"
	"hilfo_survey_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/sessions", c.survey.StartSession)
		public.POST("/admin/login", c.admin.Login)
	}

	// Session routes carry the participant token whose session claim
	// must match the path id.
	sessions := router.Group("/api/sessions/:id")
	sessions.Use(middleware.SessionAuth(cfg))
	{
		sessions.GET("/page", c.survey.GetPage)
		sessions.POST("/submit", c.survey.Submit)
		sessions.POST("/locale", c.survey.SetLocale)
		sessions.GET("/results", c.survey.Results)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg))
	{
		admin.GET("/responses", c.admin.ListResponses)
		admin.GET("/export", c.admin.ExportCSV)
		admin.POST("/catalog/reload", c.admin.ReloadCatalog)
	}
}
