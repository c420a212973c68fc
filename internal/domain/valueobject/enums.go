package valueobject

import "github.com/workmatch/marketplace-backend/internal/pkg/apperror"

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleProvider || r == RoleAdmin
}

// NewSignupRole допускает только роли, доступные при самостоятельной регистрации.
func NewSignupRole(role string) (Role, error) {
	r := Role(role)
	if r != RoleClient && r != RoleProvider {
		return "", apperror.Validation("роль должна быть client или provider",
			apperror.FieldError{Field: "role", Message: "допустимые значения: client, provider"})
	}
	return r, nil
}

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
)

func NewPaymentMethod(method string) (PaymentMethod, error) {
	m := PaymentMethod(method)
	switch m {
	case PaymentMethodCard, PaymentMethodPix, PaymentMethodBoleto:
		return m, nil
	}
	return "", apperror.Validation("некорректный способ оплаты",
		apperror.FieldError{Field: "method", Message: "допустимые значения: card, pix, boleto"})
}

type PaymentForm string

const (
	PaymentFormFull         PaymentForm = "full"
	PaymentFormInstallments PaymentForm = "installments"
)

func NewPaymentForm(form string) (PaymentForm, error) {
	if form == "" {
		return PaymentFormFull, nil
	}
	f := PaymentForm(form)
	if f != PaymentFormFull && f != PaymentFormInstallments {
		return "", apperror.Validation("некорректная форма оплаты",
			apperror.FieldError{Field: "payment_form", Message: "допустимые значения: full, installments"})
	}
	return f, nil
}

type NotificationKind string

const (
	NotificationNewService           NotificationKind = "new_service"
	NotificationNewProposal          NotificationKind = "new_proposal"
	NotificationProposalAccepted     NotificationKind = "proposal_accepted"
	NotificationProposalRejected     NotificationKind = "proposal_rejected"
	NotificationProposalCanceled     NotificationKind = "proposal_canceled"
	NotificationServiceCanceled      NotificationKind = "service_canceled"
	NotificationPaymentReceived      NotificationKind = "payment_received"
	NotificationPaymentReleased      NotificationKind = "payment_released"
	NotificationRefundRequested      NotificationKind = "refund_requested"
	NotificationRefundApproved       NotificationKind = "refund_approved"
	NotificationRefundRejected       NotificationKind = "refund_rejected"
	NotificationVerificationSent     NotificationKind = "verification_submitted"
	NotificationVerificationApproved NotificationKind = "verification_approved"
	NotificationVerificationRejected NotificationKind = "verification_rejected"
	NotificationNewReview            NotificationKind = "new_review"
)

type GatewayEnvironment string

const (
	GatewayEnvironmentSandbox    GatewayEnvironment = "sandbox"
	GatewayEnvironmentProduction GatewayEnvironment = "production"
)

func NewGatewayEnvironment(env string) (GatewayEnvironment, error) {
	if env == "" {
		return GatewayEnvironmentSandbox, nil
	}
	e := GatewayEnvironment(env)
	if e != GatewayEnvironmentSandbox && e != GatewayEnvironmentProduction {
		return "", apperror.Validation("некорректное окружение шлюза",
			apperror.FieldError{Field: "environment", Message: "допустимые значения: sandbox, production"})
	}
	return e, nil
}
