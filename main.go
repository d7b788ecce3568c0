package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"inspection-service/config"
	"inspection-service/email"
	"inspection-service/handlers"
	"inspection-service/middleware"
	"inspection-service/report"
	"inspection-service/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Create inspection service (connects to DB, ensures schema)
	inspections, err := service.NewInspectionService(cfg)
	if err != nil {
		log.Fatal("Failed to create inspection service:", err)
	}
	defer inspections.Close()

	// Report generator and delivery
	opts := report.DefaultOptions()
	if cfg.ReportJpegQuality > 0 {
		opts.JpegQuality = cfg.ReportJpegQuality
	}
	generator := report.NewGenerator(opts, cfg.ReportLogoURL)
	sender := email.NewSender(cfg)

	// Setup Gin router
	router := setupRouter(inspections, generator, sender, cfg)

	// Start server
	log.Printf("Inspection service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func setupRouter(inspections *service.InspectionService, generator *report.Generator, sender *email.Sender, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	if cfg.TrustedProxies != "" {
		proxies := strings.Split(cfg.TrustedProxies, ",")
		for i := range proxies {
			proxies[i] = strings.TrimSpace(proxies[i])
		}
		router.SetTrustedProxies(proxies)
	}

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())

	h := handlers.NewInspectionHandler(inspections, generator, sender)

	router.GET("/health", h.HandleHealth)

	api := router.Group("/api/v3")
	{
		api.POST("/inspections", h.HandleCreateInspection)
		api.GET("/inspections", h.HandleListInspections)
		api.GET("/inspections/:id", h.HandleGetInspection)
		api.PUT("/inspections/:id", h.HandleUpdateInspection)
		api.DELETE("/inspections/:id", h.HandleDeleteInspection)
		api.POST("/inspections/:id/vehicles/:vehicleId/photos", h.HandleAttachPhoto)
		api.GET("/inspections/:id/report", h.HandleDownloadReport)
		api.POST("/inspections/:id/send", h.HandleSendReport)

		api.GET("/health", h.HandleHealth)
	}

	return router
}
