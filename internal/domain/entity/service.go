package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// Service заявка клиента на выполнение работы.
// Исполнитель назначен тогда и только тогда, когда статус confirmed, in_progress или completed.
type Service struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	ProviderID  *uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	Description string
	Status      valueobject.ServiceStatus
	Budget      valueobject.Budget
	Location    valueobject.Location
	PublishedAt time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ProposalIDs в порядке подачи.
	ProposalIDs []uuid.UUID
}

// ServiceChanges частичное обновление услуги; nil означает «не менять».
type ServiceChanges struct {
	Title       *string
	Description *string
	CategoryID  *uuid.UUID
	Budget      *valueobject.Budget
	Location    *valueobject.Location
}

func NewService(clientID, categoryID uuid.UUID, title, description string, budget valueobject.Budget, location valueobject.Location) (*Service, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	var details []apperror.FieldError
	if title == "" {
		details = append(details, apperror.FieldError{Field: "title", Message: "обязательное поле"})
	}
	if description == "" {
		details = append(details, apperror.FieldError{Field: "description", Message: "обязательное поле"})
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные услуги", details...)
	}

	now := time.Now().UTC()
	return &Service{
		ID:          uuid.New(),
		ClientID:    clientID,
		CategoryID:  categoryID,
		Title:       title,
		Description: description,
		Status:      valueobject.ServiceStatusOpen,
		Budget:      budget,
		Location:    location,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) IsOwnedBy(clientID uuid.UUID) bool {
	return s.ClientID == clientID
}

func (s *Service) IsAssignedTo(providerID uuid.UUID) bool {
	return s.ProviderID != nil && *s.ProviderID == providerID
}

// IsParticipant проверяет, является ли профиль клиентом или исполнителем услуги.
func (s *Service) IsParticipant(profileID uuid.UUID) bool {
	return s.IsOwnedBy(profileID) || s.IsAssignedTo(profileID)
}

func (s *Service) Apply(changes ServiceChanges) error {
	if s.Status != valueobject.ServiceStatusOpen {
		return apperror.New(apperror.ErrCodeInvalidState, "услугу можно изменить только до начала переговоров")
	}
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return apperror.Validation("название не может быть пустым", apperror.FieldError{Field: "title", Message: "обязательное поле"})
		}
		s.Title = title
	}
	if changes.Description != nil {
		description := strings.TrimSpace(*changes.Description)
		if description == "" {
			return apperror.Validation("описание не может быть пустым", apperror.FieldError{Field: "description", Message: "обязательное поле"})
		}
		s.Description = description
	}
	if changes.CategoryID != nil {
		s.CategoryID = *changes.CategoryID
	}
	if changes.Budget != nil {
		s.Budget = *changes.Budget
	}
	if changes.Location != nil {
		s.Location = *changes.Location
	}
	s.touch()
	return nil
}

// AcceptsProposals сообщает, открыт ли приём предложений.
func (s *Service) AcceptsProposals() bool {
	return s.Status == valueobject.ServiceStatusOpen || s.Status == valueobject.ServiceStatusNegotiating
}

// AddProposal регистрирует новое предложение и переводит услугу в negotiating.
func (s *Service) AddProposal(proposalID uuid.UUID) error {
	if !s.AcceptsProposals() {
		return apperror.New(apperror.ErrCodeInvalidState, "услуга больше не принимает предложения")
	}
	s.Status = valueobject.ServiceStatusNegotiating
	s.ProposalIDs = append(s.ProposalIDs, proposalID)
	s.touch()
	return nil
}

// Confirm фиксирует выбранного исполнителя.
func (s *Service) Confirm(providerID uuid.UUID) error {
	if err := s.transition(valueobject.ServiceStatusConfirmed, "невозможно подтвердить услугу в текущем статусе"); err != nil {
		return err
	}
	s.ProviderID = &providerID
	return nil
}

// Reopen возвращает услугу в open, когда не осталось ожидающих предложений.
func (s *Service) Reopen() error {
	return s.transition(valueobject.ServiceStatusOpen, "невозможно вернуть услугу в статус open")
}

func (s *Service) Start() error {
	return s.transition(valueobject.ServiceStatusInProgress, "услуга не готова к оплате")
}

func (s *Service) Complete() error {
	if err := s.transition(valueobject.ServiceStatusCompleted, "невозможно завершить услугу в текущем статусе"); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.CompletedAt = &now
	return nil
}

func (s *Service) Cancel() error {
	return s.transition(valueobject.ServiceStatusCanceled, "услугу можно отменить только в статусах open или negotiating")
}

// CancelAfterRefund отменяет оплаченную, но не завершённую услугу после возврата средств.
// Исполнитель снимается вместе со статусом.
func (s *Service) CancelAfterRefund() error {
	if s.Status != valueobject.ServiceStatusInProgress {
		return apperror.New(apperror.ErrCodeInvalidState, "отменить после возврата можно только услугу в работе")
	}
	s.Status = valueobject.ServiceStatusCanceled
	s.ProviderID = nil
	s.touch()
	return nil
}

func (s *Service) transition(next valueobject.ServiceStatus, message string) error {
	if !s.Status.CanTransitionTo(next) {
		return apperror.New(apperror.ErrCodeInvalidState, message)
	}
	s.Status = next
	s.touch()
	return nil
}

func (s *Service) touch() {
	s.UpdatedAt = time.Now().UTC()
}
