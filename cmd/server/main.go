package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/ecobat/backend/internal/application/billing"
	appintake "github.com/ecobat/backend/internal/application/intake"
	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	appvaluation "github.com/ecobat/backend/internal/application/valuation"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/ecobat/backend/internal/infrastructure/auth"
	"github.com/ecobat/backend/internal/infrastructure/config"
	"github.com/ecobat/backend/internal/infrastructure/logger"
	"github.com/ecobat/backend/internal/infrastructure/pdf"
	"github.com/ecobat/backend/internal/infrastructure/persistence"
	"github.com/ecobat/backend/internal/interfaces/http/handler"
	"github.com/ecobat/backend/internal/interfaces/http/middleware"
	"github.com/ecobat/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/ecobat/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Ecobat Portal API
//	@version		1.0
//	@description	Waste battery intake, valuation and invoice issuance portal

//	@contact.name	API Support
//	@contact.email	support@ecobat.example

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Ecobat Portal API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	profileRepo := persistence.NewGormBillingProfileRepository(db.DB)
	settingsRepo := persistence.NewGormInvoiceSettingsRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Valuation engine with the built-in rate table
	rateTable := valuation.DefaultRateTable()
	engine := valuation.NewEngine(rateTable)

	// Initialize application services
	validationScope := persistence.NewGormValidationScope(db.DB, cfg.Database.LockTimeout)

	batchService := appintake.NewBatchService(batchRepo, auditRepo, engine)
	importService := appintake.NewManifestImportService(batchService)
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo)
	billingService := appbilling.NewBillingService(profileRepo, settingsRepo, auditRepo, validationScope)
	previewService := appvaluation.NewPreviewService(engine)

	validationService := appinvoicing.NewValidationService(
		validationScope,
		engine,
		invoicing.NewAssembler(rateTable),
		billing.NewReadinessGate(),
		log,
	)

	// Wire the Chrome PDF renderer when enabled. Without it invoices are
	// still issued and numbered; the download endpoint reports not ready.
	if cfg.PDF.Enabled {
		printer := pdf.NewChromePrinter(&pdf.ChromeConfig{
			Timeout:    cfg.PDF.RenderTimeout,
			ChromePath: cfg.PDF.ChromePath,
			NoSandbox:  os.Getuid() == 0,
			Logger:     log,
		})
		defer printer.Close()

		renderer, err := pdf.NewRenderer(printer, cfg.PDF.StorageDir, log)
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		validationService.SetRenderer(renderer)
		log.Info("PDF rendering enabled", zap.String("storage_dir", cfg.PDF.StorageDir))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	ginEngine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first: request ID, panic recovery,
	// request logging, security headers, CORS, body size limit, JWT auth.
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.Secure())
	ginEngine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
			"/api/v1/system/health",
		},
		// Swagger applies its own protection, including optional auth
		SkipPathPrefixes: []string{"/swagger/"},
		Logger:           log,
	}
	ginEngine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Health check endpoint (outside API versioning)
	ginEngine.GET("/health", healthHandler(db))

	// API documentation endpoint
	swaggerAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})
	ginEngine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, swaggerAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Register API routes
	router.NewRouter(ginEngine, router.WithAPIVersion("v1")).
		Register(handler.NewBatchHandler(batchService, importService, validationService, invoiceService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewBillingHandler(billingService)).
		Register(handler.NewValuationHandler(previewService)).
		Register(handler.NewSystemHandler(db)).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for the unversioned health endpoint
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
