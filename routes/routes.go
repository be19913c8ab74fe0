package routes

import (
	"net/http"

	"magazine-catalog-api/config"
	"magazine-catalog-api/controllers"
	"magazine-catalog-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, s config.Settings) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"status":  "ok",
					"message": "Magazine Catalog API is running",
				})
			})

			public.GET("/magazines", controllers.ListMagazines)
			public.GET("/magazines/:id", controllers.GetMagazine)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(s.JWTSecret, s.JWTIssuer))
		{
			editors := middleware.RequireRole(middleware.RoleEditor, middleware.RoleAdmin)

			imports := protected.Group("/import")
			{
				imports.POST("/magazines/preview", editors, controllers.PreviewMagazineImport)
				imports.POST("/magazines", editors, controllers.ImportMagazines)
				imports.GET("/runs", middleware.RequireRole(middleware.RoleAdmin), controllers.ListImportRuns)
			}

			protected.GET("/export/magazines", editors, controllers.ExportCatalog)

			ocr := protected.Group("/ocr")
			{
				ocr.GET("", controllers.GetOcrProviders)
				ocr.POST("", editors, controllers.RecognizeTableOfContents)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
