package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/infrastructure/database"
	"github.com/sangkips/pos-api/internal/infrastructure/jobs"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/storage"
	"github.com/sangkips/pos-api/internal/logging"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/internal/presentation/http/routes"
	"github.com/sangkips/pos-api/pkg/email"
	"github.com/sangkips/pos-api/pkg/oauth"
	"github.com/sangkips/pos-api/pkg/printer"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.Init(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc := cfg.Store.Location()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	if err := database.SeedDefaultData(db); err != nil {
		log.Warnw("failed to seed default data", "error", err)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txManager := repository.NewTransactionManager(db)

	store, err := storage.NewFileStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalw("failed to open storage", "path", cfg.Storage.Path, "error", err)
	}

	// Thermal printer; a misconfigured printer must not stop the till
	var spooler *printer.Spooler
	thermal, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warnw("printer disabled", "error", err)
	} else if printer.IsConfigured(thermal) {
		spooler, err = printer.NewSpooler(thermal, cfg.Printer.Workers)
		if err != nil {
			log.Warnw("printer spooler disabled", "error", err)
			spooler = nil
		}
	}

	// Initialize services
	billService := service.NewBillService(store, cfg.Store, cfg.Storage.BillsURL)
	var submitter service.JobSubmitter
	if spooler != nil {
		submitter = spooler
	}
	printerService := service.NewPrinterService(submitter, orderRepo, billService, cfg.Store, cfg.Printer)

	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(txManager, productRepo, orderRepo, reportRepo, loc)
	customerService := service.NewCustomerService(txManager, customerRepo, orderRepo)
	orderService := service.NewOrderService(txManager, orderRepo, billService, printerService, loc)
	transactionService := service.NewTransactionService(transactionRepo, reportRepo, store, cfg.Storage.UploadMaxSize, loc)

	var mailer service.ReportMailer
	if cfg.Email.EmailEnabled() {
		mailer = email.NewEmailService(email.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromName:     cfg.Email.FromName,
			FromEmail:    cfg.Email.FromEmail,
		})
	}
	reportService := service.NewReportService(reportRepo, customerRepo, productRepo, transactionService, mailer, cfg.Jobs.ReportEmailTo, cfg.Store)

	google := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Background jobs
	var reports jobs.ReportSender
	if mailer != nil {
		reports = reportService
	}
	scheduler, err := jobs.New(cfg.Jobs, loc, idempotencyRepo, orderService, reports)
	if err != nil {
		log.Fatalw("failed to schedule jobs", "error", err)
	}
	scheduler.Start()

	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService, jwtManager, google, cfg.Cookie),
		Product:     handler.NewProductHandler(productService),
		Customer:    handler.NewCustomerHandler(customerService),
		Order:       handler.NewOrderHandler(orderService, billService),
		Transaction: handler.NewTransactionHandler(transactionService, cfg.Storage.UploadMaxSize),
		User:        handler.NewUserHandler(userService),
		Report:      handler.NewReportHandler(reportService),
		Printer:     handler.NewPrinterHandler(printerService),
		Files:       handler.NewFileHandler(store),
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     limiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("starting server", "app", cfg.App.Name, "port", port, "env", cfg.App.Env, "jobs", scheduler.Jobs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("server shutdown", "error", err)
	}
	scheduler.Stop(ctx)
	limiter.Stop()
	if spooler != nil {
		if err := spooler.Close(5 * time.Second); err != nil {
			log.Warnw("printer spooler close", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		log.Warnw("storage close", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zap.L().Info("stopped")
}
