package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Типы документов, принимаемых на верификацию.
const (
	DocumentIdentity       = "identity"
	DocumentProofOfAddress = "proof_of_address"
)

// Document загруженный файл, хранится на диске.
type Document struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Kind         string
	Path         string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	CreatedAt    time.Time
}

// Verification заявка пользователя на подтверждение личности.
type Verification struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	IdentityDocID   uuid.UUID
	AddressDocID    uuid.UUID
	Status          valueobject.VerificationStatus
	ReviewedBy      *uuid.UUID
	RejectionReason *string
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
}

func NewVerification(userID, identityDocID, addressDocID uuid.UUID) *Verification {
	return &Verification{
		ID:            uuid.New(),
		UserID:        userID,
		IdentityDocID: identityDocID,
		AddressDocID:  addressDocID,
		Status:        valueobject.VerificationStatusPending,
		SubmittedAt:   time.Now().UTC(),
	}
}

func (v *Verification) Approve(adminID uuid.UUID) error {
	if v.Status != valueobject.VerificationStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
	}
	now := time.Now().UTC()
	v.Status = valueobject.VerificationStatusApproved
	v.ReviewedBy = &adminID
	v.ReviewedAt = &now
	return nil
}

func (v *Verification) Reject(adminID uuid.UUID, reason string) error {
	if v.Status != valueobject.VerificationStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже рассмотрена")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("причина отказа обязательна",
			apperror.FieldError{Field: "reason", Message: "обязательное поле"})
	}
	now := time.Now().UTC()
	v.Status = valueobject.VerificationStatusRejected
	v.ReviewedBy = &adminID
	v.RejectionReason = &reason
	v.ReviewedAt = &now
	return nil
}
