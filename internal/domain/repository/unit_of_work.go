package repository

import "context"

// Repositories набор репозиториев, работающих в одной транзакции.
type Repositories struct {
	Users         UserRepository
	Sessions      SessionRepository
	Clients       ClientRepository
	Providers     ProviderRepository
	Categories    CategoryRepository
	Services      ServiceRepository
	Proposals     ProposalRepository
	Payments      PaymentRepository
	Refunds       RefundRepository
	Gateways      GatewayRepository
	Verifications VerificationRepository
	Reviews       ReviewRepository
	Notifications NotificationRepository
}

// UnitOfWork выполняет fn в одной транзакции. Ошибка из fn откатывает все изменения.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
