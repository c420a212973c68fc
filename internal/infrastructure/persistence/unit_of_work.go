package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
)

const pqUniqueViolation = "23505"

// UnitOfWork открывает транзакцию и выдаёт репозитории, привязанные к ней.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			}).Error("persistence: не удалось откатить транзакцию")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// NewRepositories собирает репозитории поверх пула или транзакции.
func NewRepositories(db sqlx.ExtContext) repository.Repositories {
	return repository.Repositories{
		Users:         NewUserRepositoryAdapter(db),
		Sessions:      NewSessionRepositoryAdapter(db),
		Clients:       NewClientRepositoryAdapter(db),
		Providers:     NewProviderRepositoryAdapter(db),
		Categories:    NewCategoryRepositoryAdapter(db),
		Services:      NewServiceRepositoryAdapter(db),
		Proposals:     NewProposalRepositoryAdapter(db),
		Payments:      NewPaymentRepositoryAdapter(db),
		Refunds:       NewRefundRepositoryAdapter(db),
		Gateways:      NewGatewayRepositoryAdapter(db),
		Verifications: NewVerificationRepositoryAdapter(db),
		Reviews:       NewReviewRepositoryAdapter(db),
		Notifications: NewNotificationRepositoryAdapter(db),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// writeError превращает ошибку записи в AppError; нарушение уникальности становится CONFLICT.
func writeError(err error, message, conflictMessage string) error {
	if isUniqueViolation(err) {
		return apperror.Wrap(err, apperror.ErrCodeConflict, conflictMessage)
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// readError подменяет sql.ErrNoRows на сентинел NotFound.
func readError(err error, notFound *apperror.AppError, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// expectAffected возвращает notFound, если UPDATE не затронул ни одной строки.
func expectAffected(res sql.Result, notFound *apperror.AppError) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить число изменённых строк")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern строит шаблон ILIKE для поиска подстроки. Спецсимволы
// экранируются, запрос должен указывать ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func pageArgs(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
