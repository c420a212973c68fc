package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/workmatch/marketplace-backend/internal/config"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/http/middleware"
	"github.com/workmatch/marketplace-backend/internal/interface/http/handler"
	"github.com/workmatch/marketplace-backend/internal/service"
)

// Handlers все HTTP обработчики приложения.
type Handlers struct {
	Auth         *handler.AuthHandler
	Services     *handler.ServiceHandler
	Proposals    *handler.ProposalHandler
	Payments     *handler.PaymentHandler
	Categories   *handler.CategoryHandler
	Notification *handler.NotificationHandler
	Verification *handler.VerificationHandler
	Reviews      *handler.ReviewHandler
	Admin        *handler.AdminHandler
	WS           *handler.WSHandler
	Health       *handler.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", h.WS.Handle)
	api.GET("/services", h.Services.Search)
	api.GET("/services/:id", middleware.UUIDValidator("id"), h.Services.Get)
	api.GET("/categories", h.Categories.List)
	api.GET("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Get)
	api.GET("/providers/:id", middleware.UUIDValidator("id"), h.Auth.GetProvider)
	api.GET("/reviews/service/:id", middleware.UUIDValidator("id"), h.Reviews.ByService)
	api.GET("/reviews/user/:id", middleware.UUIDValidator("id"), h.Reviews.ByUser)

	clientOnly := middleware.RequireRoles(valueobject.RoleClient)
	providerOnly := middleware.RequireRoles(valueobject.RoleProvider)
	participants := middleware.RequireRoles(valueobject.RoleClient, valueobject.RoleProvider)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", h.Auth.Me)
		protected.PUT("/providers/me", providerOnly, h.Auth.UpdateProviderProfile)

		protected.POST("/services", clientOnly, h.Services.Create)
		protected.PUT("/services/:id", clientOnly, middleware.UUIDValidator("id"), h.Services.Update)
		protected.PUT("/services/:id/cancel", participants, middleware.UUIDValidator("id"), h.Services.Cancel)

		protected.POST("/proposals", providerOnly, h.Proposals.Submit)
		protected.GET("/proposals", clientOnly, h.Proposals.ListByService)
		protected.GET("/proposals/mine", providerOnly, h.Proposals.Mine)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), h.Proposals.Get)
		protected.PUT("/proposals/:id/accept", clientOnly, middleware.UUIDValidator("id"), h.Proposals.Accept)
		protected.PUT("/proposals/:id/reject", clientOnly, middleware.UUIDValidator("id"), h.Proposals.Reject)
		protected.PUT("/proposals/:id/cancel", providerOnly, middleware.UUIDValidator("id"), h.Proposals.Cancel)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread-count", h.Notification.UnreadCount)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkRead)

		protected.POST("/verification/documents", participants, h.Verification.Submit)
		protected.GET("/verification/documents/:userId", middleware.UUIDValidator("userId"), h.Verification.Documents)
		protected.GET("/verification/status/:userId", middleware.UUIDValidator("userId"), h.Verification.Status)

		protected.POST("/reviews", participants, h.Reviews.Create)
		protected.PUT("/reviews/:id", middleware.UUIDValidator("id"), h.Reviews.Update)
		protected.DELETE("/reviews/:id", middleware.UUIDValidator("id"), h.Reviews.Delete)
	}

	payments := api.Group("/payments")
	payments.Use(middleware.AuthMiddleware(tokenManager))
	payments.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		payments.POST("/escrow", clientOnly, h.Payments.Initiate)
		payments.GET("", participants, h.Payments.List)
		payments.GET("/:id", middleware.UUIDValidator("id"), h.Payments.Get)
		payments.PUT("/:id/release", clientOnly, middleware.UUIDValidator("id"), h.Payments.Release)
		payments.POST("/:id/refund", clientOnly, middleware.UUIDValidator("id"), h.Payments.RequestRefund)
	}

	adminOnly := middleware.RequireRoles(valueobject.RoleAdmin)

	verificationAdmin := api.Group("/verification/documents")
	verificationAdmin.Use(middleware.AuthMiddleware(tokenManager), adminOnly)
	{
		verificationAdmin.PUT("/:id/approve", middleware.UUIDValidator("id"), h.Verification.Approve)
		verificationAdmin.PUT("/:id/reject", middleware.UUIDValidator("id"), h.Verification.Reject)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), adminOnly)
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/reports/financial", h.Admin.FinancialReport)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id/block", middleware.UUIDValidator("id"), h.Admin.BlockUser)
		admin.PUT("/users/:id/unblock", middleware.UUIDValidator("id"), h.Admin.UnblockUser)

		admin.GET("/refunds", h.Admin.ListRefunds)
		admin.PUT("/refunds/:id/approve", middleware.UUIDValidator("id"), h.Admin.ApproveRefund)
		admin.PUT("/refunds/:id/reject", middleware.UUIDValidator("id"), h.Admin.RejectRefund)

		admin.POST("/gateway", h.Admin.CreateGateway)
		admin.GET("/gateway", h.Admin.ListGateways)

		admin.GET("/verifications", h.Admin.ListVerifications)

		admin.GET("/categories", h.Categories.ListAll)
		admin.POST("/categories", h.Categories.Create)
		admin.PUT("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Update)
		admin.PUT("/categories/:id/status", middleware.UUIDValidator("id"), h.Categories.SetStatus)
		admin.DELETE("/categories/:id", middleware.UUIDValidator("id"), h.Categories.Delete)
	}

	return r
}
