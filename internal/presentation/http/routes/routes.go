package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sangkips/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Product     *handler.ProductHandler
	Customer    *handler.CustomerHandler
	Order       *handler.OrderHandler
	Transaction *handler.TransactionHandler
	User        *handler.UserHandler
	Report      *handler.ReportHandler
	Printer     *handler.PrinterHandler
	Files       *handler.FileHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit))
	}

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(limiter.Middleware())
		registerPublicRoutes(public, h, deps)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(limiter.Middleware())
		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerPublicRoutes(public *gin.RouterGroup, h *Handlers, deps *Deps) {
	public.POST("/login", h.Auth.Login)
	public.GET("/refresh", h.Auth.RefreshToken)
	public.POST("/refresh", h.Auth.RefreshToken)
	public.GET("/logout", middleware.OptionalAuthMiddleware(deps.JWTManager), h.Auth.Logout)

	auth := public.Group("/auth")
	{
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}

	// Bill links are printed as QR codes, so they open without a session.
	public.GET("/bills/*key", h.Files.Bill)
	public.GET("/uploads/*key", h.Files.Upload)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/me", h.Auth.Me)
	protected.PUT("/change-password", h.Auth.ChangePassword)
	protected.GET("/dashboard", h.Report.Dashboard)

	registerProductRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerOrderRoutes(protected, h, deps)
	registerTransactionRoutes(protected, h)
	registerUserRoutes(protected, h)

	protected.GET("/printer/status", h.Printer.GetStatus)
	protected.POST("/print-bill/:orderId", h.Printer.PrintBill)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/get-products", h.Product.List)
	protected.GET("/get-product/:id", h.Product.Get)
	protected.GET("/get-categories", h.Product.Categories)
	protected.GET("/get-low-stock", h.Product.LowStock)
	protected.POST("/add-product", h.Product.Create)
	protected.PUT("/edit-product/:id", h.Product.Update)
	protected.DELETE("/delete-product/:id", h.Product.Delete)
	protected.PUT("/restock-product/:id", h.Product.Restock)
	protected.POST("/get-product-sales", h.Product.Sales)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/get-customers", h.Customer.List)
	protected.GET("/get-customer/:id", h.Customer.Get)
	protected.POST("/add-customer", h.Customer.Create)
	protected.PUT("/edit-customer/:id", h.Customer.Update)
	protected.DELETE("/delete-customer/:id", h.Customer.Delete)
	protected.PUT("/returnUdhar/:customerId", h.Customer.ReturnUdhar)
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Retried cart and checkout calls replay the first response instead of moving stock twice
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	protected.POST("/fill-cart/:customerId", idempotent, h.Order.FillCart)
	protected.GET("/get-order/:id", h.Order.Get)
	protected.DELETE("/delete-cart/:orderId/:index", h.Order.DeleteCartItem)
	protected.POST("/add-order/:orderId", idempotent, h.Order.Checkout)
	protected.GET("/get-orders", h.Order.List)
	protected.DELETE("/delete-order/:id", h.Order.Delete)
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.POST("/create-transaction", h.Transaction.Create)
	protected.POST("/get-sales", h.Transaction.GetSales)
	protected.GET("/get-today-transactions", h.Transaction.Today)
	protected.GET("/get-transactions", h.Transaction.List)
	protected.GET("/sales-summary", h.Transaction.SalesSummary)
	protected.GET("/export-transactions", h.Transaction.Export)
	protected.DELETE("/delete-transaction/:id", middleware.RequireRole(enum.RoleAdmin), h.Transaction.Delete)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/get-all-users-admin", h.User.List)

	admin := protected.Group("")
	admin.Use(middleware.RequireRole(enum.RoleAdmin))
	{
		admin.POST("/add-user-admin", h.User.Create)
		admin.PUT("/edit-user-admin/:id", h.User.Update)
		admin.DELETE("/delete-user-admin/:id", h.User.Delete)
	}
}
