package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/export"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/services"
	"moneta/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           Moneta API
// @version         1.0
// @description     Moneta is a personal finance ledger that tracks expenses, debts, cashback arrangements, billing cycles, and refund chains.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Export is optional: without a spreadsheet id the ledger runs with the
	// side-channel disabled.
	var syncer export.Syncer
	if appConfig.SheetsSpreadsheetID != "" {
		sheetsSyncer, err := export.NewSheetsSyncer(context.Background(), appConfig.SheetsSpreadsheetID, appConfig.GoogleCredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to create sheets syncer: %w", err)
		}
		syncer = sheetsSyncer
		log.Infof("Spreadsheet export enabled for %s", appConfig.SheetsSpreadsheetID)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	directoryService := services.NewDirectoryService(db)
	exporterService := services.NewExporterService(db, syncer)
	transactionService := services.NewTransactionService(db, accountService, categoryService, exporterService)
	refundService := services.NewRefundService(db, accountService, categoryService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, refundService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/me", authHandler.Me)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id/statement-day", accountHandler.UpdateStatementDay)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)

	// Directory routes
	people := protected.Group("/people")
	people.POST("", directoryHandler.CreatePerson)
	people.GET("", directoryHandler.GetUserPeople)

	shops := protected.Group("/shops")
	shops.POST("", directoryHandler.CreateShop)
	shops.GET("", directoryHandler.GetUserShops)

	// Transaction and refund routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.POST("/:id/void", transactionHandler.VoidTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)
	transactions.POST("/:id/refund", transactionHandler.RequestRefund)
	transactions.POST("/:id/refund/confirm", transactionHandler.ConfirmRefund)

	log.Infof("Starting Moneta backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
