package proposal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
	"github.com/workmatch/marketplace-backend/internal/usecase/proposal"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, req entity.NotificationRequest) {
	m.Called(ctx, req)
}

// sent собирает отправленные уведомления по виду.
func (m *notifierMock) sent(kind valueobject.NotificationKind) []entity.NotificationRequest {
	var out []entity.NotificationRequest
	for _, call := range m.Calls {
		req := call.Arguments.Get(1).(entity.NotificationRequest)
		if req.Kind == kind {
			out = append(out, req)
		}
	}
	return out
}

type fixture struct {
	store    *memrepo.Store
	uow      *memrepo.UnitOfWork
	notifier *notifierMock

	ownerUser *entity.User
	owner     *entity.Client
	service   *entity.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.NewStore()
	notifier := &notifierMock{}
	notifier.On("Notify", mock.Anything, mock.Anything).Maybe()

	ownerUser, owner := store.SeedClient("ana")
	category := store.SeedCategory("Elétrica")

	budget, err := valueobject.NewBudget(decimal.NewFromInt(100), decimal.NewFromInt(900))
	require.NoError(t, err)
	location, err := valueobject.NewLocation("remote", nil)
	require.NoError(t, err)
	svc, err := entity.NewService(owner.ID, category.ID, "Trocar tomadas", "Cinco tomadas", budget, location)
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Services.Create(context.Background(), svc))

	return &fixture{
		store:     store,
		uow:       memrepo.NewUnitOfWork(store),
		notifier:  notifier,
		ownerUser: ownerUser,
		owner:     owner,
		service:   svc,
	}
}

func (f *fixture) submit(t *testing.T, providerUserID uuid.UUID, value int64) *entity.Proposal {
	t.Helper()
	uc := proposal.NewSubmitProposalUseCase(f.uow, f.notifier)
	created, err := uc.Execute(context.Background(), proposal.SubmitProposalInput{
		UserID:        providerUserID,
		ServiceID:     f.service.ID,
		Value:         decimal.NewFromInt(value),
		EstimatedDays: 3,
		Description:   "Faço amanhã",
	})
	if err != nil {
		t.Fatalf("подача предложения: %v", err)
	}
	return created
}

func TestSubmitProposalMovesServiceToNegotiating(t *testing.T) {
	f := newFixture(t)
	providerUser, provider := f.store.SeedProvider("bruno")

	created := f.submit(t, providerUser.ID, 450)

	assert.Equal(t, valueobject.ProposalStatusPending, created.Status)
	assert.Equal(t, provider.ID, created.ProviderID)
	assert.Equal(t, valueobject.PaymentFormFull, created.PaymentForm)

	stored := f.store.Service(f.service.ID)
	assert.Equal(t, valueobject.ServiceStatusNegotiating, stored.Status)
	assert.Equal(t, []uuid.UUID{created.ID}, stored.ProposalIDs)

	notes := f.notifier.sent(valueobject.NotificationNewProposal)
	require.Len(t, notes, 1)
	assert.Equal(t, []uuid.UUID{f.ownerUser.ID}, notes[0].Recipients)
}

func TestSubmitProposalTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")
	f.submit(t, providerUser.ID, 450)

	uc := proposal.NewSubmitProposalUseCase(f.uow, f.notifier)
	_, err := uc.Execute(context.Background(), proposal.SubmitProposalInput{
		UserID: providerUser.ID, ServiceID: f.service.ID,
		Value: decimal.NewFromInt(400), EstimatedDays: 2, Description: "De novo",
	})
	if !apperror.IsConflict(err) {
		t.Fatalf("ожидался CONFLICT, получено %v", err)
	}
	if f.store.Count("proposals") != 1 {
		t.Fatalf("ожидалось 1 предложение, получено %d", f.store.Count("proposals"))
	}
}

func TestSubmitProposalByClientIsForbidden(t *testing.T) {
	f := newFixture(t)

	uc := proposal.NewSubmitProposalUseCase(f.uow, f.notifier)
	_, err := uc.Execute(context.Background(), proposal.SubmitProposalInput{
		UserID: f.ownerUser.ID, ServiceID: f.service.ID,
		Value: decimal.NewFromInt(400), EstimatedDays: 2, Description: "x",
	})
	if !apperror.IsForbidden(err) {
		t.Fatalf("ожидалась FORBIDDEN, получено %v", err)
	}
}

func TestSubmitProposalValidation(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")

	uc := proposal.NewSubmitProposalUseCase(f.uow, f.notifier)
	_, err := uc.Execute(context.Background(), proposal.SubmitProposalInput{
		UserID: providerUser.ID, ServiceID: f.service.ID,
		Value: decimal.Zero, EstimatedDays: 0,
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR, получено %v", err)
	}
	assert.Equal(t, valueobject.ServiceStatusOpen, f.store.Service(f.service.ID).Status)
}

func TestAcceptProposalRejectsSiblings(t *testing.T) {
	f := newFixture(t)
	p1User, p1 := f.store.SeedProvider("bruno")
	p2User, _ := f.store.SeedProvider("carla")
	first := f.submit(t, p1User.ID, 450)
	second := f.submit(t, p2User.ID, 380)

	uc := proposal.NewAcceptProposalUseCase(f.uow, f.notifier)
	accepted, err := uc.Execute(context.Background(), first.ID, f.ownerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	assert.Equal(t, valueobject.ProposalStatusAccepted, f.store.Proposal(first.ID).Status)
	assert.Equal(t, valueobject.ProposalStatusRejected, f.store.Proposal(second.ID).Status)

	svc := f.store.Service(f.service.ID)
	assert.Equal(t, valueobject.ServiceStatusConfirmed, svc.Status)
	require.NotNil(t, svc.ProviderID)
	assert.Equal(t, p1.ID, *svc.ProviderID)

	acceptedNotes := f.notifier.sent(valueobject.NotificationProposalAccepted)
	require.Len(t, acceptedNotes, 1)
	assert.Equal(t, []uuid.UUID{p1User.ID}, acceptedNotes[0].Recipients)
	rejectedNotes := f.notifier.sent(valueobject.NotificationProposalRejected)
	require.Len(t, rejectedNotes, 1)
	assert.Equal(t, []uuid.UUID{p2User.ID}, rejectedNotes[0].Recipients)
}

func TestAcceptProposalTwiceIsInvalidState(t *testing.T) {
	f := newFixture(t)
	p1User, _ := f.store.SeedProvider("bruno")
	p2User, _ := f.store.SeedProvider("carla")
	first := f.submit(t, p1User.ID, 450)
	second := f.submit(t, p2User.ID, 380)

	uc := proposal.NewAcceptProposalUseCase(f.uow, f.notifier)
	_, err := uc.Execute(context.Background(), first.ID, f.ownerUser.ID)
	require.NoError(t, err)

	if _, err := uc.Execute(context.Background(), second.ID, f.ownerUser.ID); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE, получено %v", err)
	}
	assert.Equal(t, valueobject.ProposalStatusAccepted, f.store.Proposal(first.ID).Status)
}

// lockHookServices вызывает hook один раз перед взятием блокировки услуги.
type lockHookServices struct {
	repository.ServiceRepository
	hook func()
}

func (s *lockHookServices) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	if s.hook != nil {
		hook := s.hook
		s.hook = nil
		hook()
	}
	return s.ServiceRepository.FindByIDForUpdate(ctx, id)
}

// directUnitOfWork выполняет fn без снимка, чтобы видеть записи конкурирующей транзакции.
type directUnitOfWork struct {
	repos repository.Repositories
}

func (u *directUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return fn(ctx, u.repos)
}

func TestRejectWaitingOnServiceLockSeesConcurrentAccept(t *testing.T) {
	f := newFixture(t)
	p1User, p1 := f.store.SeedProvider("bruno")
	target := f.submit(t, p1User.ID, 450)
	ctx := context.Background()

	repos := f.store.Repositories()
	repos.Services = &lockHookServices{
		ServiceRepository: repos.Services,
		hook: func() {
			_, err := proposal.NewAcceptProposalUseCase(f.uow, f.notifier).Execute(ctx, target.ID, f.ownerUser.ID)
			require.NoError(t, err)
		},
	}

	reject := proposal.NewRejectProposalUseCase(&directUnitOfWork{repos: repos}, f.notifier)
	if _, err := reject.Execute(ctx, target.ID, f.ownerUser.ID, "caro"); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE, получено %v", err)
	}

	stored := f.store.Proposal(target.ID)
	assert.Equal(t, valueobject.ProposalStatusAccepted, stored.Status)
	assert.Nil(t, stored.RejectionReason)
	svc := f.store.Service(f.service.ID)
	assert.Equal(t, valueobject.ServiceStatusConfirmed, svc.Status)
	require.NotNil(t, svc.ProviderID)
	assert.Equal(t, p1.ID, *svc.ProviderID)
	assert.Empty(t, f.notifier.sent(valueobject.NotificationProposalRejected))
}

func TestProposalUpdateRequiresPendingRow(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")
	created := f.submit(t, providerUser.ID, 450)
	ctx := context.Background()
	repos := f.store.Repositories()

	stale, err := repos.Proposals.FindByID(ctx, created.ID)
	require.NoError(t, err)
	_, err = proposal.NewAcceptProposalUseCase(f.uow, f.notifier).Execute(ctx, created.ID, f.ownerUser.ID)
	require.NoError(t, err)

	require.NoError(t, stale.Reject("tarde demais"))
	if err := repos.Proposals.Update(ctx, stale); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE, получено %v", err)
	}
	assert.Equal(t, valueobject.ProposalStatusAccepted, f.store.Proposal(created.ID).Status)
}

func TestAcceptRejectsWithdrawnSiblingWithoutNotice(t *testing.T) {
	f := newFixture(t)
	p1User, _ := f.store.SeedProvider("bruno")
	p2User, _ := f.store.SeedProvider("carla")
	first := f.submit(t, p1User.ID, 450)
	second := f.submit(t, p2User.ID, 380)
	ctx := context.Background()

	_, err := proposal.NewCancelProposalUseCase(f.uow, f.notifier).Execute(ctx, second.ID, p2User.ID)
	require.NoError(t, err)
	_, err = proposal.NewAcceptProposalUseCase(f.uow, f.notifier).Execute(ctx, first.ID, f.ownerUser.ID)
	require.NoError(t, err)

	assert.Equal(t, valueobject.ProposalStatusRejected, f.store.Proposal(second.ID).Status)
	assert.Empty(t, f.notifier.sent(valueobject.NotificationProposalRejected))
}

func TestAcceptProposalByStrangerIsForbidden(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")
	strangerUser, _ := f.store.SeedClient("beto")
	created := f.submit(t, providerUser.ID, 450)

	uc := proposal.NewAcceptProposalUseCase(f.uow, f.notifier)
	if _, err := uc.Execute(context.Background(), created.ID, strangerUser.ID); !apperror.IsForbidden(err) {
		t.Fatalf("ожидалась FORBIDDEN, получено %v", err)
	}
	assert.Equal(t, valueobject.ProposalStatusPending, f.store.Proposal(created.ID).Status)
}

func TestAcceptRollsBackWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")
	created := f.submit(t, providerUser.ID, 450)

	f.uow.FailCommit = true
	uc := proposal.NewAcceptProposalUseCase(f.uow, f.notifier)
	_, err := uc.Execute(context.Background(), created.ID, f.ownerUser.ID)
	require.Error(t, err)

	assert.Equal(t, valueobject.ProposalStatusPending, f.store.Proposal(created.ID).Status)
	assert.Equal(t, valueobject.ServiceStatusNegotiating, f.store.Service(f.service.ID).Status)
	assert.Empty(t, f.notifier.sent(valueobject.NotificationProposalAccepted))
}

func TestRejectLastPendingReopensService(t *testing.T) {
	f := newFixture(t)
	p1User, _ := f.store.SeedProvider("bruno")
	p2User, _ := f.store.SeedProvider("carla")
	first := f.submit(t, p1User.ID, 450)
	second := f.submit(t, p2User.ID, 380)

	uc := proposal.NewRejectProposalUseCase(f.uow, f.notifier)

	rejected, err := uc.Execute(context.Background(), first.ID, f.ownerUser.ID, "Caro demais")
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Caro demais", *rejected.RejectionReason)
	assert.Equal(t, valueobject.ServiceStatusNegotiating, f.store.Service(f.service.ID).Status)

	_, err = uc.Execute(context.Background(), second.ID, f.ownerUser.ID, "")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ServiceStatusOpen, f.store.Service(f.service.ID).Status)
	assert.Len(t, f.notifier.sent(valueobject.NotificationProposalRejected), 2)
}

func TestCancelProposalByProvider(t *testing.T) {
	f := newFixture(t)
	providerUser, _ := f.store.SeedProvider("bruno")
	otherUser, _ := f.store.SeedProvider("carla")
	created := f.submit(t, providerUser.ID, 450)

	uc := proposal.NewCancelProposalUseCase(f.uow, f.notifier)
	if _, err := uc.Execute(context.Background(), created.ID, otherUser.ID); !apperror.IsForbidden(err) {
		t.Fatalf("ожидалась FORBIDDEN, получено %v", err)
	}

	canceled, err := uc.Execute(context.Background(), created.ID, providerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusCanceled, canceled.Status)
	assert.Equal(t, valueobject.ServiceStatusOpen, f.store.Service(f.service.ID).Status)

	if _, err := uc.Execute(context.Background(), created.ID, providerUser.ID); !apperror.IsInvalidState(err) {
		t.Fatalf("повторный отзыв: ожидалась INVALID_STATE, получено %v", err)
	}
}

func TestListAndGetProposalsRespectOwnership(t *testing.T) {
	f := newFixture(t)
	p1User, _ := f.store.SeedProvider("bruno")
	p2User, _ := f.store.SeedProvider("carla")
	strangerUser, _ := f.store.SeedClient("beto")
	first := f.submit(t, p1User.ID, 450)
	f.submit(t, p2User.ID, 380)
	repos := f.store.Repositories()
	ctx := context.Background()

	list, err := proposal.NewListServiceProposalsUseCase(repos).Execute(ctx, f.service.ID, f.ownerUser.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	if _, err := proposal.NewListServiceProposalsUseCase(repos).Execute(ctx, f.service.ID, strangerUser.ID); !apperror.IsForbidden(err) {
		t.Fatalf("ожидалась FORBIDDEN, получено %v", err)
	}

	get := proposal.NewGetProposalUseCase(repos)
	_, err = get.Execute(ctx, first.ID, p1User.ID, valueobject.RoleProvider)
	require.NoError(t, err)
	_, err = get.Execute(ctx, first.ID, f.ownerUser.ID, valueobject.RoleClient)
	require.NoError(t, err)
	if _, err := get.Execute(ctx, first.ID, p2User.ID, valueobject.RoleProvider); !apperror.IsForbidden(err) {
		t.Fatalf("чужое предложение: ожидалась FORBIDDEN, получено %v", err)
	}

	mine, err := proposal.NewListMyProposalsUseCase(repos).Execute(ctx, p2User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "380.00", mine[0].Value.StringFixed(2))
}
