package memrepo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func conflict(message string) error {
	return apperror.New(apperror.ErrCodeConflict, message)
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Users {
		if existing.Email == u.Email {
			return conflict("пользователь с таким email уже существует")
		}
	}
	r.s.Users[u.ID] = clone(u)
	return nil
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[u.ID]; !ok {
		return apperror.ErrUserNotFound
	}
	r.s.Users[u.ID] = clone(u)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.Users[id]; ok {
		return clone(u), nil
	}
	return nil, apperror.ErrUserNotFound
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *userRepo) ListIDsByRole(_ context.Context, role valueobject.Role) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, u := range r.s.Users {
		if u.Role == role && !u.IsBlocked {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.User
	for _, u := range r.s.Users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Blocked != nil && u.IsBlocked != *filter.Blocked {
			continue
		}
		result = append(result, clone(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, filter.Limit, filter.Offset), len(result), nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.Users[id]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Sessions[session.RefreshToken] = clone(session)
	return nil
}

func (r *sessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.Sessions[token]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return apperror.ErrUnauthorized
	}
	delete(r.s.Sessions, token)
	return nil
}

func (r *sessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for token, session := range r.s.Sessions {
		if session.UserID == userID {
			delete(r.s.Sessions, token)
		}
	}
	return nil
}

type clientRepo struct{ s *Store }

func (r *clientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Clients[c.ID] = clone(c)
	return nil
}

func (r *clientRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.Clients[id]; ok {
		return clone(c), nil
	}
	return nil, apperror.ErrClientNotFound
}

func (r *clientRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Clients {
		if c.UserID == userID {
			return clone(c), nil
		}
	}
	return nil, apperror.ErrClientNotFound
}

type providerRepo struct{ s *Store }

func (r *providerRepo) Create(_ context.Context, p *entity.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Providers[p.ID] = clone(p)
	return nil
}

func (r *providerRepo) Update(_ context.Context, p *entity.Provider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Providers[p.ID]; !ok {
		return apperror.ErrProviderNotFound
	}
	r.s.Providers[p.ID] = clone(p)
	return nil
}

func (r *providerRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Providers[id]; ok {
		return clone(p), nil
	}
	return nil, apperror.ErrProviderNotFound
}

func (r *providerRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.Providers {
		if p.UserID == userID {
			return clone(p), nil
		}
	}
	return nil, apperror.ErrProviderNotFound
}

func (r *providerRepo) ListUserIDsByCategory(_ context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range r.s.Providers {
		if !p.ServesCategory(categoryID) {
			continue
		}
		if u, ok := r.s.Users[p.UserID]; ok && u.IsBlocked {
			continue
		}
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

func (r *providerRepo) UpdateRating(_ context.Context, providerID uuid.UUID, average decimal.Decimal, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Providers[providerID]
	if !ok {
		return apperror.ErrProviderNotFound
	}
	p.RatingAverage = average.Round(2)
	p.RatingCount = count
	return nil
}

func (r *providerRepo) SetVerifiedByUserID(_ context.Context, userID uuid.UUID, verified bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.Providers {
		if p.UserID == userID {
			p.IsVerified = verified
		}
	}
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return conflict("категория с таким названием уже существует")
		}
	}
	r.s.Categories[c.ID] = clone(c)
	return nil
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Categories[c.ID]; !ok {
		return apperror.ErrCategoryNotFound
	}
	r.s.Categories[c.ID] = clone(c)
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Categories[id]; !ok {
		return apperror.ErrCategoryNotFound
	}
	for _, s := range r.s.Services {
		if s.CategoryID == id {
			return conflict("категория используется услугами, деактивируйте её")
		}
	}
	delete(r.s.Categories, id)
	return nil
}

func (r *categoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.Categories[id]; ok {
		return clone(c), nil
	}
	return nil, apperror.ErrCategoryNotFound
}

func (r *categoryRepo) List(_ context.Context, onlyActive bool) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Category
	for _, c := range r.s.Categories {
		if onlyActive && !c.IsActive() {
			continue
		}
		result = append(result, clone(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type serviceRepo struct{ s *Store }

func (r *serviceRepo) Create(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := clone(svc)
	stored.ProposalIDs = nil
	r.s.Services[svc.ID] = stored
	return nil
}

func (r *serviceRepo) Update(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Services[svc.ID]; !ok {
		return apperror.ErrServiceNotFound
	}
	if svc.Status.HasProvider() != (svc.ProviderID != nil) {
		return apperror.New(apperror.ErrCodeDatabaseError, "services_provider_matches_status")
	}
	stored := clone(svc)
	stored.ProposalIDs = nil
	r.s.Services[svc.ID] = stored
	return nil
}

func (r *serviceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.Services[id]
	if !ok {
		return nil, apperror.ErrServiceNotFound
	}
	return r.withProposals(svc), nil
}

func (r *serviceRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return r.FindByID(ctx, id)
}

// withProposals дополняет услугу идентификаторами предложений в порядке подачи.
func (r *serviceRepo) withProposals(svc *entity.Service) *entity.Service {
	out := clone(svc)
	var proposals []*entity.Proposal
	for _, p := range r.s.Proposals {
		if p.ServiceID == svc.ID {
			proposals = append(proposals, p)
		}
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].SubmittedAt.Before(proposals[j].SubmittedAt) })
	out.ProposalIDs = make([]uuid.UUID, 0, len(proposals))
	for _, p := range proposals {
		out.ProposalIDs = append(out.ProposalIDs, p.ID)
	}
	return out
}

func (r *serviceRepo) Search(_ context.Context, f repository.ServiceFilter) ([]*entity.Service, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Service
	for _, svc := range r.s.Services {
		switch {
		case f.CategoryID != nil && svc.CategoryID != *f.CategoryID:
			continue
		case f.Status != nil && svc.Status != *f.Status:
			continue
		case f.ClientID != nil && svc.ClientID != *f.ClientID:
			continue
		case f.ProviderID != nil && !svc.IsAssignedTo(*f.ProviderID):
			continue
		case f.Locality != "" && !containsFold(svc.Location.City(), f.Locality):
			continue
		case f.PriceMin != nil && svc.Budget.Min.LessThan(*f.PriceMin):
			continue
		case f.PriceMax != nil && svc.Budget.Max.GreaterThan(*f.PriceMax):
			continue
		case f.Search != "" && !containsFold(svc.Title, f.Search) && !containsFold(svc.Description, f.Search):
			continue
		}
		result = append(result, r.withProposals(svc))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PublishedAt.After(result[j].PublishedAt) })
	return page(result, f.Limit, f.Offset), len(result), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

type proposalRepo struct{ s *Store }

func (r *proposalRepo) Create(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Proposals {
		if existing.ServiceID == p.ServiceID && existing.ProviderID == p.ProviderID {
			return conflict("вы уже отправили предложение на эту услугу")
		}
	}
	r.s.Proposals[p.ID] = clone(p)
	return nil
}

func (r *proposalRepo) Update(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.Proposals[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	if !stored.IsPending() {
		return apperror.ErrProposalNotPending
	}
	if p.IsAccepted() {
		for _, other := range r.s.Proposals {
			if other.ID != p.ID && other.ServiceID == p.ServiceID && other.IsAccepted() {
				return conflict("у услуги уже есть принятое предложение")
			}
		}
	}
	r.s.Proposals[p.ID] = clone(p)
	return nil
}

func (r *proposalRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Proposals[id]; ok {
		return clone(p), nil
	}
	return nil, apperror.ErrProposalNotFound
}

func (r *proposalRepo) filter(match func(*entity.Proposal) bool) []*entity.Proposal {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Proposal
	for _, p := range r.s.Proposals {
		if match(p) {
			result = append(result, clone(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	return result
}

func (r *proposalRepo) FindByServiceID(_ context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error) {
	return r.filter(func(p *entity.Proposal) bool { return p.ServiceID == serviceID }), nil
}

func (r *proposalRepo) FindByProviderID(_ context.Context, providerID uuid.UUID) ([]*entity.Proposal, error) {
	return r.filter(func(p *entity.Proposal) bool { return p.ProviderID == providerID }), nil
}

func (r *proposalRepo) ExistsForProvider(_ context.Context, serviceID, providerID uuid.UUID) (bool, error) {
	found := r.filter(func(p *entity.Proposal) bool { return p.ServiceID == serviceID && p.ProviderID == providerID })
	return len(found) > 0, nil
}

func (r *proposalRepo) CountByStatus(_ context.Context, serviceID uuid.UUID, status valueobject.ProposalStatus) (int, error) {
	found := r.filter(func(p *entity.Proposal) bool { return p.ServiceID == serviceID && p.Status == status })
	return len(found), nil
}

func (r *proposalRepo) FindAccepted(_ context.Context, serviceID uuid.UUID) ([]*entity.Proposal, error) {
	return r.filter(func(p *entity.Proposal) bool { return p.ServiceID == serviceID && p.IsAccepted() }), nil
}

func (r *proposalRepo) RejectSiblings(_ context.Context, serviceID, acceptedID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.Proposals {
		if p.ServiceID == serviceID && p.ID != acceptedID {
			respondedAt := at
			p.Status = valueobject.ProposalStatusRejected
			p.RespondedAt = &respondedAt
			p.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *proposalRepo) CancelPending(_ context.Context, serviceID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.Proposals {
		if p.ServiceID == serviceID && p.IsPending() {
			respondedAt := at
			p.Status = valueobject.ProposalStatusCanceled
			p.RespondedAt = &respondedAt
			p.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Payments {
		if existing.ServiceID == p.ServiceID && isLivePayment(existing.Status) {
			return conflict("по услуге уже есть действующий платёж")
		}
	}
	stored := clone(p)
	stored.Details.CardToken = nil
	r.s.Payments[p.ID] = stored
	return nil
}

func isLivePayment(status valueobject.PaymentStatus) bool {
	return status == valueobject.PaymentStatusPending ||
		status == valueobject.PaymentStatusProcessing ||
		status == valueobject.PaymentStatusCompleted
}

func (r *paymentRepo) Update(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Payments[p.ID]; !ok {
		return apperror.ErrPaymentNotFound
	}
	stored := clone(p)
	stored.Details.CardToken = nil
	r.s.Payments[p.ID] = stored
	return nil
}

func (r *paymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.Payments[id]; ok {
		return clone(p), nil
	}
	return nil, apperror.ErrPaymentNotFound
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepo) List(_ context.Context, f repository.PaymentFilter) ([]*entity.Payment, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Payment
	for _, p := range r.s.Payments {
		if f.ClientID != nil && p.ClientID != *f.ClientID {
			continue
		}
		if f.ProviderID != nil && p.ProviderID != *f.ProviderID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		result = append(result, clone(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, f.Limit, f.Offset), len(result), nil
}

type refundRepo struct{ s *Store }

func (r *refundRepo) Create(_ context.Context, refund *entity.Refund) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Refunds {
		if existing.PaymentID == refund.PaymentID {
			return conflict("по платежу уже есть заявка на возврат")
		}
	}
	r.s.Refunds[refund.ID] = clone(refund)
	return nil
}

func (r *refundRepo) Update(_ context.Context, refund *entity.Refund) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Refunds[refund.ID]; !ok {
		return apperror.ErrRefundNotFound
	}
	r.s.Refunds[refund.ID] = clone(refund)
	return nil
}

func (r *refundRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if refund, ok := r.s.Refunds[id]; ok {
		return clone(refund), nil
	}
	return nil, apperror.ErrRefundNotFound
}

func (r *refundRepo) FindByPaymentID(_ context.Context, paymentID uuid.UUID) (*entity.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, refund := range r.s.Refunds {
		if refund.PaymentID == paymentID {
			return clone(refund), nil
		}
	}
	return nil, apperror.ErrRefundNotFound
}

func (r *refundRepo) List(_ context.Context, status *valueobject.RefundStatus, limit, offset int) ([]*entity.Refund, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Refund
	for _, refund := range r.s.Refunds {
		if status != nil && refund.Status != *status {
			continue
		}
		result = append(result, clone(refund))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequestedAt.After(result[j].RequestedAt) })
	return page(result, limit, offset), len(result), nil
}

type gatewayRepo struct{ s *Store }

func (r *gatewayRepo) Create(_ context.Context, g *entity.PaymentGateway) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g.IsActive {
		for _, existing := range r.s.Gateways {
			if existing.IsActive {
				return conflict("активный шлюз уже существует")
			}
		}
	}
	r.s.Gateways[g.ID] = clone(g)
	return nil
}

func (r *gatewayRepo) FindActive(_ context.Context) (*entity.PaymentGateway, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.Gateways {
		if g.IsActive {
			return clone(g), nil
		}
	}
	return nil, apperror.ErrGatewayNotFound
}

func (r *gatewayRepo) DeactivateAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.Gateways {
		g.IsActive = false
	}
	return nil
}

func (r *gatewayRepo) List(_ context.Context) ([]*entity.PaymentGateway, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.PaymentGateway
	for _, g := range r.s.Gateways {
		result = append(result, clone(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type verificationRepo struct{ s *Store }

func (r *verificationRepo) CreateDocument(_ context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Documents[d.ID] = clone(d)
	return nil
}

func (r *verificationRepo) FindDocumentsByUser(_ context.Context, userID uuid.UUID) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Document
	for _, d := range r.s.Documents {
		if d.UserID == userID {
			result = append(result, clone(d))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *verificationRepo) Create(_ context.Context, v *entity.Verification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Verifications {
		if existing.UserID == v.UserID && existing.Status == valueobject.VerificationStatusPending {
			return conflict("заявка на верификацию уже ожидает рассмотрения")
		}
	}
	r.s.Verifications[v.ID] = clone(v)
	return nil
}

func (r *verificationRepo) Update(_ context.Context, v *entity.Verification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Verifications[v.ID]; !ok {
		return apperror.ErrVerificationNotFound
	}
	r.s.Verifications[v.ID] = clone(v)
	return nil
}

func (r *verificationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Verification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.Verifications[id]; ok {
		return clone(v), nil
	}
	return nil, apperror.ErrVerificationNotFound
}

func (r *verificationRepo) FindLatestByUser(_ context.Context, userID uuid.UUID) (*entity.Verification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Verification
	for _, v := range r.s.Verifications {
		if v.UserID == userID && (latest == nil || v.SubmittedAt.After(latest.SubmittedAt)) {
			latest = v
		}
	}
	if latest == nil {
		return nil, apperror.ErrVerificationNotFound
	}
	return clone(latest), nil
}

func (r *verificationRepo) HasPending(_ context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.Verifications {
		if v.UserID == userID && v.Status == valueobject.VerificationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *verificationRepo) List(_ context.Context, status *valueobject.VerificationStatus, limit, offset int) ([]*entity.Verification, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Verification
	for _, v := range r.s.Verifications {
		if status != nil && v.Status != *status {
			continue
		}
		result = append(result, clone(v))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmittedAt.Before(result[j].SubmittedAt) })
	return page(result, limit, offset), len(result), nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(_ context.Context, rv *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Reviews {
		if existing.ServiceID == rv.ServiceID && existing.ReviewerID == rv.ReviewerID {
			return conflict("вы уже оставили отзыв по этой услуге")
		}
	}
	r.s.Reviews[rv.ID] = clone(rv)
	return nil
}

func (r *reviewRepo) Update(_ context.Context, rv *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Reviews[rv.ID]; !ok {
		return apperror.ErrReviewNotFound
	}
	r.s.Reviews[rv.ID] = clone(rv)
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Reviews[id]; !ok {
		return apperror.ErrReviewNotFound
	}
	delete(r.s.Reviews, id)
	return nil
}

func (r *reviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv, ok := r.s.Reviews[id]; ok {
		return clone(rv), nil
	}
	return nil, apperror.ErrReviewNotFound
}

func (r *reviewRepo) ExistsForReviewer(_ context.Context, serviceID, reviewerID uuid.UUID) (bool, error) {
	found := r.filter(func(rv *entity.Review) bool { return rv.ServiceID == serviceID && rv.ReviewerID == reviewerID })
	return len(found) > 0, nil
}

func (r *reviewRepo) filter(match func(*entity.Review) bool) []*entity.Review {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Review
	for _, rv := range r.s.Reviews {
		if match(rv) {
			result = append(result, clone(rv))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *reviewRepo) ListByService(_ context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	return r.filter(func(rv *entity.Review) bool { return rv.ServiceID == serviceID }), nil
}

func (r *reviewRepo) ListByReviewee(_ context.Context, userID uuid.UUID) ([]*entity.Review, error) {
	return r.filter(func(rv *entity.Review) bool { return rv.RevieweeID == userID }), nil
}

func (r *reviewRepo) ListByReviewer(_ context.Context, userID uuid.UUID) ([]*entity.Review, error) {
	return r.filter(func(rv *entity.Review) bool { return rv.ReviewerID == userID }), nil
}

func (r *reviewRepo) RatingOf(_ context.Context, userID uuid.UUID) (decimal.Decimal, int, error) {
	reviews := r.filter(func(rv *entity.Review) bool { return rv.RevieweeID == userID })
	if len(reviews) == 0 {
		return decimal.Zero, 0, nil
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	return avg, len(reviews), nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Notifications[n.ID] = clone(n)
	return nil
}

func (r *notificationRepo) List(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Notification
	for _, n := range r.s.Notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		result = append(result, clone(n))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, limit, offset), len(result), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.Notifications[id]
	if !ok || n.UserID != userID {
		return apperror.ErrNotificationNotFound
	}
	if !n.IsRead {
		now := time.Now().UTC()
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	now := time.Now().UTC()
	for _, n := range r.s.Notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.Notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
