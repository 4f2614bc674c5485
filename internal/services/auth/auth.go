// Package auth содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WarmUp-AI/WebDev/internal/lib/jwt"
	"github.com/WarmUp-AI/WebDev/internal/lib/password"
	"github.com/WarmUp-AI/WebDev/internal/models"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAdminProtected     = errors.New("cannot delete admin users")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int, error)
	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, userID int) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateUserPassword меняет хэш пароля.
	UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error
	// DeleteUserCascade удаляет пользователя вместе с заказами и аккаунтами.
	DeleteUserCascade(ctx context.Context, userID int) error
}

// AuthService отвечает за регистрацию, авторизацию и администрирование пользователей.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с ролью client и сразу выпускает токен.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", nil, err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", nil, err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleClient,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", nil, err
	}

	created, err := s.users.GetUser(ctx, id)
	if err != nil {
		return "", nil, err
	}
	token, err := s.jwtMaker.GenerateToken(created.ID, created.Email, created.Role)
	if err != nil {
		return "", nil, err
	}
	return token, created, nil
}

// Login проверяет пароль пользователя и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Me возвращает пользователя по ID из токена.
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers возвращает всех пользователей, доступно только админу.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// ChangePassword меняет пароль пользователя.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, newPassword string) error {
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, userID, hashed)
}

// CreateAdmin создает пользователя с административной ролью.
func (s *AuthService) CreateAdmin(ctx context.Context, email, rawPassword string) (*models.User, error) {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	id, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, id)
}

// DeleteUser удаляет пользователя и каскадно его заказы и аккаунты.
// Админов удалять нельзя.
func (s *AuthService) DeleteUser(ctx context.Context, userID int) error {
	const op = "auth.DeleteUser"
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsAdmin() {
		return ErrAdminProtected
	}
	return s.users.DeleteUserCascade(ctx, userID)
}
