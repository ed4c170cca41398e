// Package router assembles the HTTP surface of the finance API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"academy/internal/config"
	_ "academy/internal/docs" // registers the swagger docs
	"academy/internal/handlers"
	"academy/internal/middleware"
	"academy/internal/services"
	"academy/internal/validator"
)

// New wires every service and handler against db and returns the engine.
func New(db *gorm.DB, cfg *config.Config) *gin.Engine {
	validator.Register()

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, cfg.DefaultCurrency)
	bookService := services.NewBookService(db)
	bookSaleService := services.NewBookSaleService(db, bookService, categoryService, transactionService, cfg.DefaultCurrency)
	payrollService := services.NewPayrollService(db, userService, categoryService, transactionService, cfg.DefaultCurrency)
	reportService := services.NewReportService(db, cfg.ReportLocation)

	// Handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	bookHandler := handlers.NewBookHandler(bookService, auditService)
	bookSaleHandler := handlers.NewBookSaleHandler(bookSaleService, auditService)
	payrollHandler := handlers.NewPayrollHandler(payrollService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	schedulerHandler := handlers.NewSchedulerHandler(payrollService, auditService, cfg.ReportLocation)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Cron routes authenticate with the scheduler key, not a user token.
	scheduler := v1.Group("/scheduler")
	scheduler.Use(middleware.SchedulerAuthMiddleware(cfg.SchedulerAPIKey))
	scheduler.POST("/payrolls/generate", schedulerHandler.GeneratePayrolls)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	books := protected.Group("/books")
	books.POST("", bookHandler.CreateBook)
	books.GET("", bookHandler.ListBooks)
	books.PUT("/:id", bookHandler.UpdateBook)

	bookSales := protected.Group("/book-sales")
	bookSales.POST("", bookSaleHandler.CreateBookSale)
	bookSales.GET("", bookSaleHandler.ListBookSales)
	bookSales.GET("/:id", bookSaleHandler.GetBookSaleByID)
	bookSales.PUT("/:id", bookSaleHandler.UpdateBookSale)

	payrolls := protected.Group("/payrolls")
	payrolls.POST("/generate", payrollHandler.GeneratePayrolls)
	payrolls.GET("", payrollHandler.ListPayrolls)
	payrolls.GET("/:id", payrollHandler.GetPayrollByID)
	payrolls.PUT("/:id", payrollHandler.UpdatePayroll)
	payrolls.POST("/:id/pay", payrollHandler.PayPayroll)

	reports := protected.Group("/reports")
	reports.GET("/all", reportHandler.AllReport)
	reports.GET("/yearly", reportHandler.YearReport)
	reports.GET("/monthly", reportHandler.MonthReport)
	reports.GET("/daily", reportHandler.DayReport)
	reports.GET("/range", reportHandler.RangeReport)
	reports.GET("/export", reportHandler.ExportReport)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
