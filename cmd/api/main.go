package main

import (
	"log"

	"magazine-catalog-api/config"
	"magazine-catalog-api/controllers"
	"magazine-catalog-api/middleware"
	"magazine-catalog-api/monitor"
	"magazine-catalog-api/routes"
	"magazine-catalog-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	settings := config.LoadSettings()

	logFile, logWriter := config.InitLogging(settings.IsProduction())
	if logFile != nil {
		defer logFile.Close()
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	// Initialize database
	config.InitDB(settings)

	if settings.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
	router.Use(middleware.CORSMiddleware(settings.CORSAllowedOrigins))

	registry := services.NewDefaultOcrRegistry(settings)
	notifier := services.NewMailImportNotifier(settings)
	controllers.Configure(controllers.Dependencies{
		OcrRegistry: registry,
		OcrTimeout:  settings.OcrTimeout,
		Notifier:    notifier,
	})

	monitor.RegisterMonitorPage(router, config.DB)
	routes.SetupRoutes(router, settings)

	logger := config.Logger
	logger.Infof("Server starting on port %s", settings.ServerPort)
	logger.Infof("OCR providers available: %v", registry.Available())
	if notifier.Enabled() {
		logger.Infof("Import summaries mailed to %v", settings.ImportNotifyEmails)
	}
	if settings.IsProduction() {
		logger.Info("Running in production mode")
	}

	if err := router.Run(":" + settings.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
