package valueobject

import "github.com/workmatch/marketplace-backend/internal/pkg/apperror"

type ServiceStatus string

const (
	ServiceStatusOpen        ServiceStatus = "open"
	ServiceStatusNegotiating ServiceStatus = "negotiating"
	ServiceStatusConfirmed   ServiceStatus = "confirmed"
	ServiceStatusInProgress  ServiceStatus = "in_progress"
	ServiceStatusCompleted   ServiceStatus = "completed"
	ServiceStatusCanceled    ServiceStatus = "canceled"
)

var serviceTransitions = map[ServiceStatus][]ServiceStatus{
	ServiceStatusOpen:        {ServiceStatusNegotiating, ServiceStatusCanceled},
	ServiceStatusNegotiating: {ServiceStatusConfirmed, ServiceStatusOpen, ServiceStatusCanceled},
	ServiceStatusConfirmed:   {ServiceStatusInProgress},
	ServiceStatusInProgress:  {ServiceStatusCompleted},
	ServiceStatusCompleted:   {},
	ServiceStatusCanceled:    {},
}

func (s ServiceStatus) IsValid() bool {
	_, ok := serviceTransitions[s]
	return ok
}

func (s ServiceStatus) CanTransitionTo(next ServiceStatus) bool {
	return contains(serviceTransitions[s], next)
}

// HasProvider сообщает, должен ли в этом статусе быть назначен исполнитель.
func (s ServiceStatus) HasProvider() bool {
	switch s {
	case ServiceStatusConfirmed, ServiceStatusInProgress, ServiceStatusCompleted:
		return true
	}
	return false
}

func NewServiceStatus(status string) (ServiceStatus, error) {
	s := ServiceStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус услуги")
	}
	return s, nil
}

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusCanceled ProposalStatus = "canceled"
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending:  {ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusCanceled},
	ProposalStatusAccepted: {},
	ProposalStatusRejected: {},
	ProposalStatusCanceled: {},
}

func (s ProposalStatus) IsValid() bool {
	_, ok := proposalTransitions[s]
	return ok
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	return contains(proposalTransitions[s], next)
}

func NewProposalStatus(status string) (ProposalStatus, error) {
	s := ProposalStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус предложения")
	}
	return s, nil
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Возврат завершённого платежа допустим: это единственное изменение после completed.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusFailed},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusRefunded, PaymentStatusFailed},
	PaymentStatusCompleted:  {PaymentStatusRefunded},
	PaymentStatusFailed:     {},
	PaymentStatusRefunded:   {},
}

func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return contains(paymentTransitions[s], next)
}

func NewPaymentStatus(status string) (PaymentStatus, error) {
	s := PaymentStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус платежа")
	}
	return s, nil
}

type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusInReview   RefundStatus = "in_review"
	RefundStatusApproved   RefundStatus = "approved"
	RefundStatusRejected   RefundStatus = "rejected"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusCompleted  RefundStatus = "completed"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundStatusPending:    {RefundStatusInReview, RefundStatusApproved, RefundStatusRejected},
	RefundStatusInReview:   {RefundStatusApproved, RefundStatusRejected},
	RefundStatusApproved:   {RefundStatusProcessing, RefundStatusCompleted},
	RefundStatusProcessing: {RefundStatusCompleted},
	RefundStatusRejected:   {},
	RefundStatusCompleted:  {},
}

func (s RefundStatus) IsValid() bool {
	_, ok := refundTransitions[s]
	return ok
}

func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	return contains(refundTransitions[s], next)
}

// IsOpen сообщает, ждёт ли возврат решения администратора.
func (s RefundStatus) IsOpen() bool {
	return s == RefundStatusPending || s == RefundStatusInReview
}

func NewRefundStatus(status string) (RefundStatus, error) {
	s := RefundStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус возврата")
	}
	return s, nil
}

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusApproved, VerificationStatusRejected:
		return true
	}
	return false
}

type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

func NewCategoryStatus(status string) (CategoryStatus, error) {
	s := CategoryStatus(status)
	if s != CategoryStatusActive && s != CategoryStatusInactive {
		return "", apperror.Validation("некорректный статус категории")
	}
	return s, nil
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
