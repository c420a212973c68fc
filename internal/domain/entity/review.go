package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

// ReviewEditWindow время, в течение которого автор может изменить или удалить отзыв.
const ReviewEditWindow = 24 * time.Hour

type Review struct {
	ID         uuid.UUID
	ServiceID  uuid.UUID
	ReviewerID uuid.UUID
	RevieweeID uuid.UUID
	Rating     int
	Comment    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewReview(serviceID, reviewerID, revieweeID uuid.UUID, rating int, comment string) (*Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r := &Review{
		ID:         uuid.New(),
		ServiceID:  serviceID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.setComment(comment)
	return r, nil
}

// CanEdit проверяет авторство и окно редактирования.
func (r *Review) CanEdit(userID uuid.UUID, now time.Time) error {
	if r.ReviewerID != userID {
		return apperror.New(apperror.ErrCodeForbidden, "изменять отзыв может только автор")
	}
	if now.Sub(r.CreatedAt) > ReviewEditWindow {
		return apperror.New(apperror.ErrCodeInvalidState, "отзыв можно изменить только в течение 24 часов")
	}
	return nil
}

func (r *Review) Update(rating int, comment string) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	r.setComment(comment)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Review) setComment(comment string) {
	if comment = strings.TrimSpace(comment); comment != "" {
		r.Comment = &comment
		return
	}
	r.Comment = nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperror.Validation("оценка должна быть от 1 до 5",
			apperror.FieldError{Field: "rating", Message: "допустимо от 1 до 5"})
	}
	return nil
}
