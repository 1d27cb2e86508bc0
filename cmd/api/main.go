package main

import (
	"log"
	"os"

	_ "github.com/smartplatefoodredistribution-art/smartplate/api/swagger" // swagger docs
	"github.com/smartplatefoodredistribution-art/smartplate/internal/database"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/handler"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/service"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           SmartPlate API
// @version         1.0
// @description     Food redistribution marketplace: NGOs request food, donors fulfill, volunteers deliver.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

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
		dbName = "smartplate"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewFoodRequestRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	ngoRepo := repository.NewNGOVerificationRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	verificationService := service.NewVerificationService(ngoRepo, volunteerRepo)
	userService := service.NewUserService(userRepo, verificationService)
	requestService := service.NewRequestService(requestRepo, ngoRepo, deliveryRepo, analyticsRepo, auditRepo, wsHub)
	fulfillmentService := service.NewFulfillmentService(fulfillmentRepo, requestRepo, deliveryRepo, auditRepo, txManager, wsHub)
	deliveryService := service.NewDeliveryService(deliveryRepo, volunteerRepo, auditRepo, wsHub)
	consensusService := service.NewConsensusService(approvalRepo, ngoRepo, volunteerRepo, userRepo, auditRepo, txManager)
	analyticsService := service.NewAnalyticsService(analyticsRepo, requestRepo, fulfillmentRepo, deliveryRepo, ngoRepo, volunteerRepo, userRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService, fulfillmentService)
	donorHandler := handler.NewDonorHandler(fulfillmentService, userService)
	volunteerHandler := handler.NewVolunteerHandler(deliveryService, verificationService)
	ngoHandler := handler.NewNGOHandler(verificationService)
	adminHandler := handler.NewAdminHandler(consensusService, verificationService, requestService, deliveryService, analyticsService, userService, auditRepo)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	donorHandler.RegisterRoutes(router.Group(""))
	volunteerHandler.RegisterRoutes(router.Group(""))
	ngoHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	analyticsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
