package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/usecase/verification"
)

type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

type VerificationResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	IdentityDocID   uuid.UUID  `json:"identity_document_id"`
	AddressDocID    uuid.UUID  `json:"address_document_id"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

type VerificationStatusResponse struct {
	UserID       uuid.UUID             `json:"user_id"`
	Status       string                `json:"status"`
	Verification *VerificationResponse `json:"verification,omitempty"`
}

func ToDocumentResponse(d *entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:           d.ID,
		Kind:         d.Kind,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		SizeBytes:    d.SizeBytes,
		CreatedAt:    d.CreatedAt,
	}
}

func ToDocumentResponses(docs []*entity.Document) []DocumentResponse {
	return convertAll(docs, ToDocumentResponse)
}

func ToVerificationResponse(v *entity.Verification) VerificationResponse {
	return VerificationResponse{
		ID:              v.ID,
		UserID:          v.UserID,
		IdentityDocID:   v.IdentityDocID,
		AddressDocID:    v.AddressDocID,
		Status:          string(v.Status),
		RejectionReason: v.RejectionReason,
		SubmittedAt:     v.SubmittedAt,
		ReviewedAt:      v.ReviewedAt,
	}
}

func ToVerificationStatusResponse(s *verification.Status) VerificationStatusResponse {
	resp := VerificationStatusResponse{UserID: s.UserID, Status: s.Status}
	if s.Verification != nil {
		v := ToVerificationResponse(s.Verification)
		resp.Verification = &v
	}
	return resp
}
