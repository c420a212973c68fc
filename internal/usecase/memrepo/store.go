// Package memrepo хранит сущности в памяти и реализует репозитории домена.
// Используется в тестах сценариев.
package memrepo

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
)

type Store struct {
	mu sync.Mutex

	Users         map[uuid.UUID]*entity.User
	Sessions      map[string]*entity.Session
	Clients       map[uuid.UUID]*entity.Client
	Providers     map[uuid.UUID]*entity.Provider
	Categories    map[uuid.UUID]*entity.Category
	Services      map[uuid.UUID]*entity.Service
	Proposals     map[uuid.UUID]*entity.Proposal
	Payments      map[uuid.UUID]*entity.Payment
	Refunds       map[uuid.UUID]*entity.Refund
	Gateways      map[uuid.UUID]*entity.PaymentGateway
	Documents     map[uuid.UUID]*entity.Document
	Verifications map[uuid.UUID]*entity.Verification
	Reviews       map[uuid.UUID]*entity.Review
	Notifications map[uuid.UUID]*entity.Notification
}

func NewStore() *Store {
	return &Store{
		Users:         map[uuid.UUID]*entity.User{},
		Sessions:      map[string]*entity.Session{},
		Clients:       map[uuid.UUID]*entity.Client{},
		Providers:     map[uuid.UUID]*entity.Provider{},
		Categories:    map[uuid.UUID]*entity.Category{},
		Services:      map[uuid.UUID]*entity.Service{},
		Proposals:     map[uuid.UUID]*entity.Proposal{},
		Payments:      map[uuid.UUID]*entity.Payment{},
		Refunds:       map[uuid.UUID]*entity.Refund{},
		Gateways:      map[uuid.UUID]*entity.PaymentGateway{},
		Documents:     map[uuid.UUID]*entity.Document{},
		Verifications: map[uuid.UUID]*entity.Verification{},
		Reviews:       map[uuid.UUID]*entity.Review{},
		Notifications: map[uuid.UUID]*entity.Notification{},
	}
}

// Repositories возвращает набор репозиториев поверх хранилища.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:         &userRepo{s},
		Sessions:      &sessionRepo{s},
		Clients:       &clientRepo{s},
		Providers:     &providerRepo{s},
		Categories:    &categoryRepo{s},
		Services:      &serviceRepo{s},
		Proposals:     &proposalRepo{s},
		Payments:      &paymentRepo{s},
		Refunds:       &refundRepo{s},
		Gateways:      &gatewayRepo{s},
		Verifications: &verificationRepo{s},
		Reviews:       &reviewRepo{s},
		Notifications: &notificationRepo{s},
	}
}

type snapshot struct {
	users         map[uuid.UUID]*entity.User
	sessions      map[string]*entity.Session
	clients       map[uuid.UUID]*entity.Client
	providers     map[uuid.UUID]*entity.Provider
	categories    map[uuid.UUID]*entity.Category
	services      map[uuid.UUID]*entity.Service
	proposals     map[uuid.UUID]*entity.Proposal
	payments      map[uuid.UUID]*entity.Payment
	refunds       map[uuid.UUID]*entity.Refund
	gateways      map[uuid.UUID]*entity.PaymentGateway
	documents     map[uuid.UUID]*entity.Document
	verifications map[uuid.UUID]*entity.Verification
	reviews       map[uuid.UUID]*entity.Review
	notifications map[uuid.UUID]*entity.Notification
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users:         cloneMap(s.Users),
		sessions:      cloneMap(s.Sessions),
		clients:       cloneMap(s.Clients),
		providers:     cloneMap(s.Providers),
		categories:    cloneMap(s.Categories),
		services:      cloneMap(s.Services),
		proposals:     cloneMap(s.Proposals),
		payments:      cloneMap(s.Payments),
		refunds:       cloneMap(s.Refunds),
		gateways:      cloneMap(s.Gateways),
		documents:     cloneMap(s.Documents),
		verifications: cloneMap(s.Verifications),
		reviews:       cloneMap(s.Reviews),
		notifications: cloneMap(s.Notifications),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users = snap.users
	s.Sessions = snap.sessions
	s.Clients = snap.clients
	s.Providers = snap.providers
	s.Categories = snap.categories
	s.Services = snap.services
	s.Proposals = snap.proposals
	s.Payments = snap.payments
	s.Refunds = snap.refunds
	s.Gateways = snap.gateways
	s.Documents = snap.documents
	s.Verifications = snap.verifications
	s.Reviews = snap.reviews
	s.Notifications = snap.notifications
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func clone[V any](v *V) *V {
	c := *v
	return &c
}

// ErrCommitFailed имитирует сбой фиксации транзакции.
var ErrCommitFailed = errors.New("memrepo: commit failed")

// UnitOfWork откатывает хранилище к снимку, если fn вернула ошибку.
type UnitOfWork struct {
	Store *Store
	// FailCommit заставляет следующий Do завершиться ошибкой после fn.
	FailCommit bool
	// FailCall номер вызова Do (с единицы), который завершится ошибкой.
	FailCall int
	Calls    int
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{Store: store}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	u.Calls++
	snap := u.Store.snapshot()
	if err := fn(ctx, u.Store.Repositories()); err != nil {
		u.Store.restore(snap)
		return err
	}
	if u.FailCommit || u.Calls == u.FailCall {
		u.FailCommit = false
		u.Store.restore(snap)
		return ErrCommitFailed
	}
	return nil
}
