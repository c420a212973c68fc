package verification_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/usecase/memrepo"
	"github.com/workmatch/marketplace-backend/internal/usecase/verification"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, req entity.NotificationRequest) {
	m.Called(ctx, req)
}

// fakeStorage хранит файлы в памяти.
type fakeStorage struct {
	saved   map[string]string
	deleted []string
	failOn  string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string]string{}}
}

func (s *fakeStorage) Save(_ context.Context, userID uuid.UUID, kind, name string, r io.Reader) (*entity.Document, error) {
	if kind == s.failOn {
		return nil, apperror.Validation("не удалось определить тип файла")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := &entity.Document{
		ID:           uuid.New(),
		UserID:       userID,
		Kind:         kind,
		Path:         userID.String() + "/" + kind,
		OriginalName: name,
		MimeType:     "application/pdf",
		SizeBytes:    int64(len(body)),
		CreatedAt:    time.Now().UTC(),
	}
	s.saved[doc.Path] = string(body)
	return doc, nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	if _, ok := s.saved[path]; !ok {
		return errors.New("missing")
	}
	delete(s.saved, path)
	s.deleted = append(s.deleted, path)
	return nil
}

type fixture struct {
	store    *memrepo.Store
	uow      *memrepo.UnitOfWork
	storage  *fakeStorage
	notifier *notifierMock
	sent     []entity.NotificationRequest
}

func newFixture() *fixture {
	store := memrepo.NewStore()
	f := &fixture{
		store:    store,
		uow:      memrepo.NewUnitOfWork(store),
		storage:  newFakeStorage(),
		notifier: &notifierMock{},
	}
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("entity.NotificationRequest")).
		Run(func(args mock.Arguments) { f.sent = append(f.sent, args.Get(1).(entity.NotificationRequest)) }).
		Maybe()
	return f
}

func (f *fixture) submit(userID uuid.UUID) (*entity.Verification, error) {
	uc := verification.NewSubmitVerificationUseCase(f.uow, f.storage, f.notifier)
	return uc.Execute(context.Background(), verification.SubmitVerificationInput{
		UserID:         userID,
		Identity:       verification.Upload{Name: "rg.pdf", Reader: strings.NewReader("%PDF identity")},
		ProofOfAddress: verification.Upload{Name: "conta.pdf", Reader: strings.NewReader("%PDF address")},
	})
}

func TestSubmitCreatesPendingVerificationAndNotifiesAdmins(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedProvider("bruno")

	v, err := f.submit(user.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusPending, v.Status)
	assert.Len(t, f.storage.saved, 2)
	assert.Equal(t, 1, f.store.Count("verifications"))

	require.Len(t, f.sent, 1)
	assert.Equal(t, valueobject.RoleAdmin, f.sent[0].Role)
	assert.Equal(t, valueobject.NotificationVerificationSent, f.sent[0].Kind)

	docs, err := verification.NewListDocumentsUseCase(f.store.Repositories().Verifications).
		Execute(context.Background(), user.ID, user.ID, valueobject.RoleProvider)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSubmitWhilePendingConflictsWithoutStoringFiles(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")
	_, err := f.submit(user.ID)
	require.NoError(t, err)

	_, err = f.submit(user.ID)
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	assert.Len(t, f.storage.saved, 2)
}

func TestSubmitRequiresBothDocuments(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")

	_, err := verification.NewSubmitVerificationUseCase(f.uow, f.storage, f.notifier).Execute(context.Background(),
		verification.SubmitVerificationInput{
			UserID:   user.ID,
			Identity: verification.Upload{Name: "rg.pdf", Reader: strings.NewReader("%PDF")},
		})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitRemovesFilesWhenSecondUploadFails(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")
	f.storage.failOn = entity.DocumentProofOfAddress

	_, err := f.submit(user.ID)
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assert.Empty(t, f.storage.saved)
	assert.Equal(t, 0, f.store.Count("verifications"))
}

func TestSubmitRemovesFilesWhenCommitFails(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")
	f.uow.FailCall = 2

	_, err := f.submit(user.ID)
	require.Error(t, err)
	assert.Empty(t, f.storage.saved)
	assert.Len(t, f.storage.deleted, 2)
	assert.Equal(t, 0, f.store.Count("verifications"))
	assert.Empty(t, f.sent)
}

func TestApproveMarksProviderVerified(t *testing.T) {
	f := newFixture()
	user, provider := f.store.SeedProvider("bruno")
	admin := f.store.SeedAdmin("root")
	v, err := f.submit(user.ID)
	require.NoError(t, err)
	f.sent = nil

	approved, err := verification.NewApproveVerificationUseCase(f.uow, f.notifier).Execute(context.Background(), v.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, admin.ID, *approved.ReviewedBy)

	stored, err := f.store.Repositories().Providers.FindByID(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	require.Len(t, f.sent, 1)
	assert.Equal(t, []uuid.UUID{user.ID}, f.sent[0].Recipients)
	assert.Equal(t, valueobject.NotificationVerificationApproved, f.sent[0].Kind)

	_, err = verification.NewApproveVerificationUseCase(f.uow, f.notifier).Execute(context.Background(), v.ID, admin.ID)
	if !apperror.IsInvalidState(err) {
		t.Fatalf("expected invalid state on second review, got %v", err)
	}

	_, err = f.submit(user.ID)
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict for verified user, got %v", err)
	}
}

func TestRejectNeedsReasonAndAllowsResubmission(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")
	admin := f.store.SeedAdmin("root")
	v, err := f.submit(user.ID)
	require.NoError(t, err)
	f.sent = nil

	reject := verification.NewRejectVerificationUseCase(f.uow, f.notifier)
	_, err = reject.Execute(context.Background(), v.ID, admin.ID, "  ")
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	rejected, err := reject.Execute(context.Background(), v.ID, admin.ID, "documento ilegível")
	require.NoError(t, err)
	assert.Equal(t, valueobject.VerificationStatusRejected, rejected.Status)
	require.Len(t, f.sent, 1)
	assert.Equal(t, "documento ilegível", f.sent[0].Message)

	_, err = f.submit(user.ID)
	require.NoError(t, err)
}

func TestStatusVisibility(t *testing.T) {
	f := newFixture()
	user, _ := f.store.SeedClient("ana")
	other, _ := f.store.SeedClient("beto")
	admin := f.store.SeedAdmin("root")
	uc := verification.NewGetStatusUseCase(f.store.Repositories().Verifications)
	ctx := context.Background()

	st, err := uc.Execute(ctx, user.ID, user.ID, valueobject.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, verification.StatusNone, st.Status)
	assert.Nil(t, st.Verification)

	_, err = f.submit(user.ID)
	require.NoError(t, err)

	st, err = uc.Execute(ctx, user.ID, admin.ID, valueobject.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "pending", st.Status)

	_, err = uc.Execute(ctx, user.ID, other.ID, valueobject.RoleClient)
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListVerificationsFiltersByStatus(t *testing.T) {
	f := newFixture()
	a, _ := f.store.SeedClient("ana")
	b, _ := f.store.SeedClient("beto")
	admin := f.store.SeedAdmin("root")
	va, err := f.submit(a.ID)
	require.NoError(t, err)
	_, err = f.submit(b.ID)
	require.NoError(t, err)
	_, err = verification.NewApproveVerificationUseCase(f.uow, f.notifier).Execute(context.Background(), va.ID, admin.ID)
	require.NoError(t, err)

	uc := verification.NewListVerificationsUseCase(f.store.Repositories().Verifications)
	pending, err := uc.Execute(context.Background(), verification.ListVerificationsInput{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)
	assert.Equal(t, b.ID, pending.Items[0].UserID)

	_, err = uc.Execute(context.Background(), verification.ListVerificationsInput{Status: "lost"})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
