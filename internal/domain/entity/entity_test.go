package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	budget, err := valueobject.NewBudget(decimal.NewFromInt(500), decimal.NewFromInt(1500))
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	loc, err := valueobject.NewLocation("remote", nil)
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	s, err := NewService(uuid.New(), uuid.New(), "Pintura", "Pintar sala", budget, loc)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func assertProviderInvariant(t *testing.T, s *Service) {
	t.Helper()
	if s.Status.HasProvider() != (s.ProviderID != nil) {
		t.Fatalf("нарушен инвариант исполнителя: статус %s, provider=%v", s.Status, s.ProviderID)
	}
}

func TestServiceLifecycleKeepsProviderInvariant(t *testing.T) {
	s := newTestService(t)
	assertProviderInvariant(t, s)

	if err := s.AddProposal(uuid.New()); err != nil {
		t.Fatalf("AddProposal: %v", err)
	}
	assertProviderInvariant(t, s)

	if err := s.Confirm(uuid.New()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	assertProviderInvariant(t, s)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	assertProviderInvariant(t, s)

	if err := s.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	assertProviderInvariant(t, s)
	if s.CompletedAt == nil {
		t.Fatal("CompletedAt должен быть заполнен")
	}
}

func TestServiceCancelOnlyBeforeConfirmation(t *testing.T) {
	s := newTestService(t)
	_ = s.AddProposal(uuid.New())
	_ = s.Confirm(uuid.New())

	err := s.Cancel()
	if !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE, получено %v", err)
	}
}

func TestServiceCancelAfterRefundClearsProvider(t *testing.T) {
	s := newTestService(t)
	_ = s.AddProposal(uuid.New())
	_ = s.Confirm(uuid.New())
	_ = s.Start()

	if err := s.CancelAfterRefund(); err != nil {
		t.Fatalf("CancelAfterRefund: %v", err)
	}
	if s.Status != valueobject.ServiceStatusCanceled {
		t.Fatalf("ожидался canceled, получено %s", s.Status)
	}
	assertProviderInvariant(t, s)
}

func TestServiceApplyOnlyWhenOpen(t *testing.T) {
	s := newTestService(t)
	title := "Nova"
	if err := s.Apply(ServiceChanges{Title: &title}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	_ = s.AddProposal(uuid.New())

	if err := s.Apply(ServiceChanges{Title: &title}); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE после начала переговоров, получено %v", err)
	}
}

func TestProposalRespondOnlyFromPending(t *testing.T) {
	p, err := NewProposal(uuid.New(), uuid.New(), ProposalTerms{
		Value:         decimal.NewFromInt(1000),
		EstimatedDays: 5,
		Description:   "faço em 5 dias",
	})
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	if p.PaymentForm != valueobject.PaymentFormFull {
		t.Fatalf("форма оплаты по умолчанию должна быть full, получено %s", p.PaymentForm)
	}

	if err := p.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if p.RespondedAt == nil {
		t.Fatal("RespondedAt должен быть заполнен")
	}
	if err := p.Reject("tarde"); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE, получено %v", err)
	}
}

func TestNewProposalValidation(t *testing.T) {
	_, err := NewProposal(uuid.New(), uuid.New(), ProposalTerms{Value: decimal.Zero})
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR, получено %v", err)
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("ожидалась *apperror.AppError, получено %T", err)
	}
	if len(appErr.Details) != 3 {
		t.Fatalf("ожидалось 3 ошибки полей, получено %d", len(appErr.Details))
	}
}

func TestPaymentFlow(t *testing.T) {
	s := newTestService(t)
	providerID := uuid.New()
	_ = s.AddProposal(uuid.New())
	_ = s.Confirm(providerID)

	accepted := &Proposal{ID: uuid.New(), Value: decimal.RequireFromString("1000"), Status: valueobject.ProposalStatusAccepted}
	p, err := NewEscrowPayment(s, accepted, valueobject.PaymentMethodPix, PaymentDetails{}, 0, valueobject.DefaultFeePolicy())
	if err != nil {
		t.Fatalf("NewEscrowPayment: %v", err)
	}
	if p.ServiceFee.StringFixed(2) != "100.00" {
		t.Fatalf("ожидалась комиссия 100.00, получено %s", p.ServiceFee.StringFixed(2))
	}
	if p.ProviderID != providerID {
		t.Fatal("исполнитель платежа должен совпадать с исполнителем услуги")
	}

	if err := p.Release(); !apperror.IsInvalidState(err) {
		t.Fatalf("release из pending должен быть INVALID_STATE, получено %v", err)
	}
	if err := p.MarkProcessing("tx-1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if p.ProcessedAt == nil {
		t.Fatal("ProcessedAt должен быть заполнен")
	}
	if err := p.MarkRefunded(); err != nil {
		t.Fatalf("возврат завершённого платежа должен быть допустим: %v", err)
	}
}

func TestInstallmentsOnlyForCard(t *testing.T) {
	s := newTestService(t)
	_ = s.AddProposal(uuid.New())
	_ = s.Confirm(uuid.New())
	accepted := &Proposal{Value: decimal.NewFromInt(900)}

	if _, err := NewEscrowPayment(s, accepted, valueobject.PaymentMethodBoleto, PaymentDetails{}, 3, valueobject.DefaultFeePolicy()); !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR, получено %v", err)
	}

	p, err := NewEscrowPayment(s, accepted, valueobject.PaymentMethodCard, PaymentDetails{}, 3, valueobject.DefaultFeePolicy())
	if err != nil {
		t.Fatalf("NewEscrowPayment: %v", err)
	}
	if p.InstallmentValue.StringFixed(2) != "300.00" {
		t.Fatalf("ожидалось 300.00 за платёж, получено %s", p.InstallmentValue.StringFixed(2))
	}
}

func TestRefundRequiresReason(t *testing.T) {
	payment := &Payment{ID: uuid.New(), ServiceID: uuid.New(), Amount: decimal.NewFromInt(10)}
	if _, err := NewRefund(payment, uuid.New(), "   "); !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR, получено %v", err)
	}

	r, err := NewRefund(payment, uuid.New(), "serviço não prestado")
	if err != nil {
		t.Fatalf("NewRefund: %v", err)
	}
	if err := r.Reject(uuid.New(), ""); !apperror.IsValidation(err) {
		t.Fatalf("отказ без причины должен быть VALIDATION_ERROR, получено %v", err)
	}
	if err := r.Complete(uuid.New(), ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := r.Complete(uuid.New(), ""); !apperror.IsInvalidState(err) {
		t.Fatalf("повторное одобрение должно быть INVALID_STATE, получено %v", err)
	}
}

func TestGatewayLimits(t *testing.T) {
	gw, err := NewPaymentGateway(GatewaySettings{
		Name:       "mercadopago",
		FeePercent: decimal.NewFromInt(10),
		MinAmount:  decimal.NewFromInt(5),
		MaxAmount:  decimal.NewFromInt(10000),
		Methods:    []valueobject.PaymentMethod{valueobject.PaymentMethodPix},
	})
	if err != nil {
		t.Fatalf("NewPaymentGateway: %v", err)
	}
	if err := gw.CheckAmount(decimal.NewFromInt(1000), valueobject.PaymentMethodPix); err != nil {
		t.Fatalf("1000 в пределах лимитов: %v", err)
	}
	if err := gw.CheckAmount(decimal.NewFromInt(20000), valueobject.PaymentMethodPix); !apperror.IsInvalidState(err) {
		t.Fatalf("ожидалась INVALID_STATE для суммы вне лимита, получено %v", err)
	}
	if err := gw.CheckAmount(decimal.NewFromInt(1000), valueobject.PaymentMethodCard); !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR для карты, получено %v", err)
	}
}

func TestDefaultGatewayHasNoAmountLimits(t *testing.T) {
	gw := DefaultPaymentGateway()
	if err := gw.CheckAmount(decimal.NewFromInt(20000), valueobject.PaymentMethodPix); err != nil {
		t.Fatalf("шлюз по умолчанию не ограничивает сумму: %v", err)
	}
	if err := gw.CheckAmount(decimal.NewFromInt(20000), "cash"); !apperror.IsValidation(err) {
		t.Fatalf("ожидалась VALIDATION_ERROR для cash, получено %v", err)
	}
}

func TestReviewEditWindow(t *testing.T) {
	author := uuid.New()
	r, err := NewReview(uuid.New(), author, uuid.New(), 5, "ótimo")
	if err != nil {
		t.Fatalf("NewReview: %v", err)
	}
	if err := r.CanEdit(uuid.New(), time.Now()); !apperror.IsForbidden(err) {
		t.Fatalf("чужой отзыв: ожидалась FORBIDDEN, получено %v", err)
	}
	if err := r.CanEdit(author, r.CreatedAt.Add(25*time.Hour)); !apperror.IsInvalidState(err) {
		t.Fatalf("после 24 часов: ожидалась INVALID_STATE, получено %v", err)
	}
	if _, err := NewReview(uuid.New(), author, uuid.New(), 6, ""); !apperror.IsValidation(err) {
		t.Fatalf("оценка 6: ожидалась VALIDATION_ERROR, получено %v", err)
	}
}
