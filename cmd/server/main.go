package main

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/workmatch/marketplace-backend/docs"
	"github.com/workmatch/marketplace-backend/internal/config"
	"github.com/workmatch/marketplace-backend/internal/db"
	httpRouter "github.com/workmatch/marketplace-backend/internal/http/router"
	"github.com/workmatch/marketplace-backend/internal/infrastructure/deadletter"
	"github.com/workmatch/marketplace-backend/internal/infrastructure/payments"
	"github.com/workmatch/marketplace-backend/internal/infrastructure/persistence"
	"github.com/workmatch/marketplace-backend/internal/interface/http/handler"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/service"
	"github.com/workmatch/marketplace-backend/internal/storage"
	"github.com/workmatch/marketplace-backend/internal/usecase/admin"
	"github.com/workmatch/marketplace-backend/internal/usecase/category"
	"github.com/workmatch/marketplace-backend/internal/usecase/notification"
	"github.com/workmatch/marketplace-backend/internal/usecase/payment"
	"github.com/workmatch/marketplace-backend/internal/usecase/profile"
	"github.com/workmatch/marketplace-backend/internal/usecase/proposal"
	"github.com/workmatch/marketplace-backend/internal/usecase/review"
	serviceuc "github.com/workmatch/marketplace-backend/internal/usecase/service"
	"github.com/workmatch/marketplace-backend/internal/usecase/verification"
	"github.com/workmatch/marketplace-backend/internal/ws"
)

// @title           WorkMatch API
// @version         1.0
// @description     Marketplace of local services: requests, proposals, escrow payments and refunds.
// @BasePath        /api
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.Env == "development")
	log := logger.WithComponent("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("ошибка миграций: %v", err)
	}

	uow := persistence.NewUnitOfWork(dbConn)
	repos := persistence.NewRepositories(dbConn)
	stats := persistence.NewStatsRepositoryAdapter(dbConn)

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	documents, err := storage.NewDocumentStorage(cfg.DocumentStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("не удалось подготовить файловое хранилище: %v", err)
	}

	processor, err := payments.NewRouter(cfg.Payments.Mock, cfg.Payments.MercadoPagoAccessToken)
	if err != nil {
		log.Fatalf("не удалось настроить платёжный процессор: %v", err)
	}

	categories := category.NewCache(repos.Categories, cfg.CategoryCacheTTL)
	categories.RunCleanup(ctx, cfg.CategoryCacheTTL)

	// Вебсокеты и уведомления.
	hub := ws.NewHub()
	go hub.Run(ctx)

	var deadLetters notification.DeadLetterStore = deadletter.NewLogStore()
	if cfg.Notifications.DeadLetterTable != "" {
		ddb, err := deadletter.NewDynamoClient(ctx, cfg.Notifications)
		if err != nil {
			log.Fatalf("не удалось подключить DynamoDB: %v", err)
		}
		deadLetters = deadletter.NewDynamoStore(ddb, cfg.Notifications.DeadLetterTable)
	}
	dispatcher := notification.NewDispatcher(repos.Users, repos.Notifications, hub, deadLetters, notification.RetryPolicy{
		MaxAttempts: cfg.Notifications.MaxAttempts,
		Backoff:     cfg.Notifications.RetryBackoff,
	})

	authService := service.NewAuthService(uow, tokenManager)
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("не удалось создать администратора: %v", err)
	}

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Auth: handler.NewAuthHandler(
			authService,
			profile.NewUpdateProviderProfileUseCase(repos.Providers, categories),
			profile.NewGetProviderUseCase(repos.Providers),
		),
		Services: handler.NewServiceHandler(
			serviceuc.NewCreateServiceUseCase(uow, categories, dispatcher),
			serviceuc.NewUpdateServiceUseCase(uow, categories),
			serviceuc.NewCancelServiceUseCase(uow, dispatcher),
			serviceuc.NewGetServiceUseCase(repos.Services),
			serviceuc.NewSearchServicesUseCase(repos.Services),
		),
		Proposals: handler.NewProposalHandler(
			proposal.NewSubmitProposalUseCase(uow, dispatcher),
			proposal.NewAcceptProposalUseCase(uow, dispatcher),
			proposal.NewRejectProposalUseCase(uow, dispatcher),
			proposal.NewCancelProposalUseCase(uow, dispatcher),
			proposal.NewListServiceProposalsUseCase(repos),
			proposal.NewGetProposalUseCase(repos),
			proposal.NewListMyProposalsUseCase(repos),
		),
		Payments: handler.NewPaymentHandler(
			payment.NewInitiatePaymentUseCase(uow, repos.Gateways, processor, dispatcher),
			payment.NewListPaymentsUseCase(repos),
			payment.NewGetPaymentUseCase(repos),
			payment.NewReleasePaymentUseCase(uow, processor, dispatcher),
			payment.NewRequestRefundUseCase(uow, dispatcher),
		),
		Categories: handler.NewCategoryHandler(
			category.NewListCategoriesUseCase(categories),
			category.NewGetCategoryUseCase(categories),
			category.NewCreateCategoryUseCase(repos.Categories, categories),
			category.NewUpdateCategoryUseCase(repos.Categories, categories),
			category.NewSetCategoryStatusUseCase(repos.Categories, categories),
			category.NewDeleteCategoryUseCase(repos.Categories, categories),
		),
		Notification: handler.NewNotificationHandler(
			notification.NewListNotificationsUseCase(repos.Notifications),
			notification.NewMarkReadUseCase(repos.Notifications),
			notification.NewMarkAllReadUseCase(repos.Notifications),
			notification.NewUnreadCountUseCase(repos.Notifications),
		),
		Verification: handler.NewVerificationHandler(
			verification.NewSubmitVerificationUseCase(uow, documents, dispatcher),
			verification.NewGetStatusUseCase(repos.Verifications),
			verification.NewListDocumentsUseCase(repos.Verifications),
			verification.NewApproveVerificationUseCase(uow, dispatcher),
			verification.NewRejectVerificationUseCase(uow, dispatcher),
		),
		Reviews: handler.NewReviewHandler(
			review.NewCreateReviewUseCase(uow, dispatcher),
			review.NewUpdateReviewUseCase(uow),
			review.NewDeleteReviewUseCase(uow),
			review.NewListServiceReviewsUseCase(repos.Reviews),
			review.NewListUserReviewsUseCase(repos.Reviews),
		),
		Admin: handler.NewAdminHandler(handler.AdminDeps{
			ListUsers:         admin.NewListUsersUseCase(repos.Users),
			BlockUser:         admin.NewBlockUserUseCase(uow),
			UnblockUser:       admin.NewUnblockUserUseCase(repos.Users),
			CreateGateway:     admin.NewCreateGatewayUseCase(uow),
			ListGateways:      admin.NewListGatewaysUseCase(repos.Gateways),
			Dashboard:         admin.NewDashboardUseCase(stats),
			FinancialReport:   admin.NewFinancialReportUseCase(stats),
			ListRefunds:       payment.NewListRefundsUseCase(repos.Refunds),
			ApproveRefund:     payment.NewApproveRefundUseCase(uow, processor, dispatcher),
			RejectRefund:      payment.NewRejectRefundUseCase(uow, dispatcher),
			ListVerifications: verification.NewListVerificationsUseCase(repos.Verifications),
		}),
		WS:     handler.NewWSHandler(hub, tokenManager, nil),
		Health: handler.NewHealthHandler(dbConn),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "env": cfg.Env}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся уведомлений, отправленных до остановки.
	dispatcher.Wait()
	log.Info("сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
