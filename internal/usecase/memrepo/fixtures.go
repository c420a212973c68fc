package memrepo

import (
	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

// SeedClient создаёт пользователя-заказчика с профилем.
func (s *Store) SeedClient(name string) (*entity.User, *entity.Client) {
	user := entity.NewUser(name+"@example.com", name, "hash", valueobject.RoleClient)
	client := entity.NewClient(user.ID, name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[user.ID] = clone(user)
	s.Clients[client.ID] = clone(client)
	return user, client
}

// SeedProvider создаёт пользователя-исполнителя, работающего в категориях.
func (s *Store) SeedProvider(name string, categoryIDs ...uuid.UUID) (*entity.User, *entity.Provider) {
	user := entity.NewUser(name+"@example.com", name, "hash", valueobject.RoleProvider)
	provider := entity.NewProvider(user.ID, name)
	provider.CategoryIDs = append(provider.CategoryIDs, categoryIDs...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[user.ID] = clone(user)
	s.Providers[provider.ID] = clone(provider)
	return user, provider
}

func (s *Store) SeedAdmin(name string) *entity.User {
	user := entity.NewUser(name+"@example.com", name, "hash", valueobject.RoleAdmin)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[user.ID] = clone(user)
	return user
}

func (s *Store) SeedCategory(name string) *entity.Category {
	category, _ := entity.NewCategory(name, nil, nil)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Categories[category.ID] = clone(category)
	return category
}

// SeedGateway сохраняет активный шлюз.
func (s *Store) SeedGateway(g *entity.PaymentGateway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gateways[g.ID] = clone(g)
}

// Service возвращает сохранённую услугу вместе с предложениями.
func (s *Store) Service(id uuid.UUID) *entity.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.Services[id]
	if !ok {
		return nil
	}
	return (&serviceRepo{s}).withProposals(svc)
}

func (s *Store) Proposal(id uuid.UUID) *entity.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Proposals[id]; ok {
		return clone(p)
	}
	return nil
}

func (s *Store) Payment(id uuid.UUID) *entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Payments[id]; ok {
		return clone(p)
	}
	return nil
}

func (s *Store) Refund(id uuid.UUID) *entity.Refund {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.Refunds[id]; ok {
		return clone(r)
	}
	return nil
}

// Count возвращает число записей в коллекции по имени.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch collection {
	case "services":
		return len(s.Services)
	case "proposals":
		return len(s.Proposals)
	case "payments":
		return len(s.Payments)
	case "refunds":
		return len(s.Refunds)
	case "notifications":
		return len(s.Notifications)
	case "reviews":
		return len(s.Reviews)
	case "verifications":
		return len(s.Verifications)
	}
	return 0
}
