package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/financesaathi/expense-engine/client"
	"github.com/financesaathi/expense-engine/config"
	"github.com/financesaathi/expense-engine/handler"
	"github.com/financesaathi/expense-engine/service"
	"github.com/financesaathi/expense-engine/store"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Open the record store
	recordStore, err := store.Open(cfg.DataFilePath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}

	// Initialize external clients
	visionClient := client.NewVisionClient(cfg.VisionAPIURL, cfg.VisionAPIKey, cfg.VisionTimeout)
	if !visionClient.Enabled() {
		log.Println("Vision API not configured, relying on local OCR only")
	}
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)

	// Initialize service layer
	pdfProcessor := service.NewPDFProcessor()
	acquisition := service.NewTextAcquisition(visionClient, tesseractClient, pdfProcessor)
	pipeline := service.NewPipelineService(acquisition, recordStore, cfg.MaxFileSize)
	analytics := service.NewAnalyticsService(recordStore)

	// Initialize handler layer
	expenseHandler := handler.NewExpenseHandler(pipeline, analytics, recordStore)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "FinanceSaathi Expense Engine",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/invoices/upload", expenseHandler.UploadInvoice)

		expenses := api.Group("/expenses")
		{
			expenses.GET("", expenseHandler.ListExpenses)
			expenses.GET("/summary", expenseHandler.GetSummary)
			expenses.GET("/breakdown", expenseHandler.GetBreakdown)
			expenses.GET("/recent", expenseHandler.GetRecent)
		}

		api.GET("/documents", expenseHandler.ListDocuments)
	}

	// Start server
	log.Printf("Starting FinanceSaathi Expense Engine on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
