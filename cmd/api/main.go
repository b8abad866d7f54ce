package main

import (
	"log"
	"os"

	"trainingforms/internal/database"
	"trainingforms/internal/handler"
	"trainingforms/internal/middleware"
	"trainingforms/internal/repository"
	"trainingforms/internal/service"
	"trainingforms/internal/storage"
	"trainingforms/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Training Claim Forms API
// @version         1.0
// @description     API for submitting, approving and exporting training-cost claim forms.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	var logger *zap.Logger
	var err error
	if os.Getenv("GIN_MODE") == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer logger.Sync()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	if err := database.SeedInitialAdmin(db, os.Getenv("INITIAL_ADMIN_EMAIL")); err != nil {
		logger.Warn("Failed to seed initial admin", zap.Error(err))
	}

	uploadRoot := os.Getenv("UPLOAD_DIR")
	if uploadRoot == "" {
		uploadRoot = "uploads"
	}
	store, err := storage.NewAttachmentStore(uploadRoot, logger)
	if err != nil {
		logger.Fatal("Attachment store init failed", zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	formRepo := repository.NewFormRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	formService := service.NewFormService(formRepo, attachmentRepo, auditRepo, txManager, store, wsHub, logger)
	approvalService := service.NewApprovalService(formRepo, auditRepo, txManager, wsHub, logger)
	exportService := service.NewExportService(formRepo, auditRepo, logger)
	adminService := service.NewAdminService(adminRepo, auditRepo, txManager, logger)
	auditService := service.NewAuditService(auditRepo)
	lookupService := service.NewLookupService(employeeRepo, catalogRepo, logger)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	formHandler := handler.NewFormHandler(formService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	exportHandler := handler.NewExportHandler(exportService)
	adminHandler := handler.NewAdminHandler(adminService, auditService)
	lookupHandler := handler.NewLookupHandler(lookupService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint: the live admin feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), adminService.IsAdmin)
	})

	// All API routes require an authenticated identity; admin rights are
	// resolved once per request from the admins table.
	api := router.Group("", middleware.RequireAuth(), middleware.ResolveAdmin(adminService.IsAdmin))
	formHandler.RegisterRoutes(api)
	approvalHandler.RegisterRoutes(api)
	exportHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)
	lookupHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
