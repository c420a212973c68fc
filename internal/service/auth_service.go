package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
	"github.com/workmatch/marketplace-backend/internal/logger"
	"github.com/workmatch/marketplace-backend/internal/pkg/apperror"
	"github.com/workmatch/marketplace-backend/internal/validation"
)

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	uow          repository.UnitOfWork
	tokenManager *TokenManager
	hashCost     int
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Role     string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// SessionMeta сведения о клиенте, сохраняемые вместе с refresh токеном.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// Account пользователь вместе с профилем его роли.
type Account struct {
	User     *entity.User
	Client   *entity.Client
	Provider *entity.Provider
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	Account
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(uow repository.UnitOfWork, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		uow:          uow,
		tokenManager: tokenManager,
		hashCost:     bcrypt.DefaultCost,
	}
}

// Register создаёт пользователя, профиль его роли и первую сессию в одной транзакции.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	role, err := valueobject.NewSignupRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := entity.NewUser(in.Email, in.Name, string(passHash), role)
	user.Phone = in.Phone
	result := &AuthResult{Account: Account{User: user}}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.FindByEmail(ctx, user.Email); err == nil {
			return apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
		} else if !apperror.IsNotFound(err) {
			return err
		}

		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}

		switch role {
		case valueobject.RoleClient:
			client := entity.NewClient(user.ID, user.Name)
			client.Phone = user.Phone
			if err := repos.Clients.Create(ctx, client); err != nil {
				return err
			}
			result.Client = client
		case valueobject.RoleProvider:
			provider := entity.NewProvider(user.ID, user.Name)
			if err := repos.Providers.Create(ctx, provider); err != nil {
				return err
			}
			result.Provider = provider
		}

		pair, err := s.openSession(ctx, repos, user, meta)
		if err != nil {
			return err
		}
		result.TokenPair = pair
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("auth").WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("зарегистрирован пользователь")
	return result, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	var result *AuthResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByEmail(ctx, email)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.ErrInvalidCredentials
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
			return apperror.ErrInvalidCredentials
		}
		if user.IsBlocked {
			return apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
		}

		account, err := loadAccount(ctx, repos, user)
		if err != nil {
			return err
		}
		pair, err := s.openSession(ctx, repos, user, meta)
		if err != nil {
			return err
		}
		result = &AuthResult{Account: *account, TokenPair: pair}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Время последнего входа вне транзакции: сбой не должен мешать входу.
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Users.TouchLastLogin(ctx, result.User.ID)
	})
	if err != nil {
		logger.WithComponent("auth").WithFields(map[string]interface{}{
			"user_id": result.User.ID,
			"error":   err.Error(),
		}).Warn("не удалось обновить last_login_at")
	}

	return result, nil
}

// Refresh обменивает действующий refresh токен на новую пару. Старый токен удаляется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (*TokenPair, error) {
	userID, err := s.tokenManager.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "недействительный refresh токен")
	}

	var pair *TokenPair
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Sessions.DeleteByToken(ctx, refreshToken); err != nil {
			return err
		}

		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.ErrUnauthorized
			}
			return err
		}
		if user.IsBlocked {
			return apperror.New(apperror.ErrCodeForbidden, "аккаунт заблокирован")
		}

		pair, err = s.openSession(ctx, repos, user, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout удаляет сессию. Неизвестный токен считается уже вышедшим.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Sessions.DeleteByToken(ctx, refreshToken)
	})
	if apperror.IsUnauthorized(err) {
		return nil
	}
	return err
}

// Me возвращает пользователя и профиль его роли.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*Account, error) {
	var account *Account
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		account, err = loadAccount(ctx, repos, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// EnsureAdmin создаёт администратора при первом запуске. Существующий пользователь не меняется.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if err := validation.ValidateEmail(email); err != nil {
		return apperror.Validation(err.Error(), apperror.FieldError{Field: "email", Message: err.Error()})
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	created := false
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Users.FindByEmail(ctx, email)
		if err == nil {
			if existing.Role != valueobject.RoleAdmin {
				logger.WithComponent("auth").WithField("email", email).
					Warn("email администратора занят пользователем с другой ролью")
			}
			return nil
		}
		if !apperror.IsNotFound(err) {
			return err
		}
		created = true
		return repos.Users.Create(ctx, entity.NewUser(email, "Administrador", string(passHash), valueobject.RoleAdmin))
	})
	if err != nil {
		return err
	}
	if created {
		logger.WithComponent("auth").WithField("email", email).Info("создан администратор")
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, repos repository.Repositories, user *entity.User, meta SessionMeta) (*TokenPair, error) {
	pair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	session := &entity.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
		CreatedAt:    s.tokenManager.now().UTC(),
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		session.UserAgent = &ua
	}
	if meta.IP != "" {
		ip := meta.IP
		session.IPAddress = &ip
	}

	if err := repos.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return pair, nil
}

func loadAccount(ctx context.Context, repos repository.Repositories, user *entity.User) (*Account, error) {
	account := &Account{User: user}
	switch user.Role {
	case valueobject.RoleClient:
		client, err := repos.Clients.FindByUserID(ctx, user.ID)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
		account.Client = client
	case valueobject.RoleProvider:
		provider, err := repos.Providers.FindByUserID(ctx, user.ID)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
		account.Provider = provider
	}
	return account, nil
}

func validateRegistration(in RegisterInput) error {
	var details []apperror.FieldError
	if err := validation.ValidateEmail(in.Email); err != nil {
		details = append(details, apperror.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		details = append(details, apperror.FieldError{Field: "password", Message: err.Error()})
	}
	if err := validation.ValidateName(in.Name); err != nil {
		details = append(details, apperror.FieldError{Field: "name", Message: err.Error()})
	}
	if in.Phone != nil {
		if err := validation.ValidatePhone(*in.Phone); err != nil {
			details = append(details, apperror.FieldError{Field: "phone", Message: err.Error()})
		}
	}
	if len(details) > 0 {
		return apperror.Validation("некорректные данные регистрации", details...)
	}
	return nil
}
