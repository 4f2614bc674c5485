// Package account содержит бизнес-логику выдачи и прогрева аккаунтов.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/storage/repository"
)

// Ошибки бизнес-уровня.
var (
	ErrNoPaidOrder      = errors.New("no paid order")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmptyUsername    = errors.New("username is empty")
)

// AccountRepository описывает контракт для работы с аккаунтами в базе данных.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account models.Account) (int, error)
	GetAccount(ctx context.Context, accountID int) (*models.Account, error)
	FindAccountByUsername(ctx context.Context, userID int, username string) (*models.Account, error)
	ListAccounts(ctx context.Context, userID int) ([]*models.Account, error)
	ListAllAccounts(ctx context.Context) ([]*models.AccountWithEmail, error)
	UpdateAccountFields(ctx context.Context, accountID int, update models.AccountUpdate) (int, error)
	DeleteAccount(ctx context.Context, accountID int) (int, error)
}

// OrderRepository описывает минимум операций с заказами, нужный аккаунтам.
type OrderRepository interface {
	FindPaidOrder(ctx context.Context, userID int) (*models.Order, error)
}

// Cipher шифрует пароль от аккаунта перед записью в базу.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
}

// AdminCreateRequest — параметры создания аккаунта админом, без проверки оплаты.
// Статус — произвольная строка, счётчики прогресса принимаются как есть.
type AdminCreateRequest struct {
	UserID             int
	Username           string
	Password           string
	Niche              string
	Status             string
	CurrentDay         int
	ProgressPercentage int
}

// AccountService отвечает за создание аккаунтов и отслеживание прогресса прогрева.
type AccountService struct {
	accounts AccountRepository
	orders   OrderRepository
	cipher   Cipher
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(accounts AccountRepository, orders OrderRepository, cipher Cipher) *AccountService {
	return &AccountService{
		accounts: accounts,
		orders:   orders,
		cipher:   cipher,
	}
}

// CreateForClient создает аккаунт для клиента. Требуется хотя бы один
// оплаченный заказ, его ID привязывается к аккаунту.
func (s *AccountService) CreateForClient(ctx context.Context, userID int, username, niche string) (*models.Account, error) {
	const op = "account.CreateForClient"

	username = models.NormalizeUsername(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	paid, err := s.orders.FindPaidOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paid == nil {
		return nil, ErrNoPaidOrder
	}

	if existing, err := s.accounts.FindAccountByUsername(ctx, userID, username); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	} else if existing != nil {
		return nil, ErrDuplicateAccount
	}

	id, err := s.accounts.CreateAccount(ctx, models.Account{
		UserID:   userID,
		OrderID:  &paid.ID,
		Username: username,
		Niche:    niche,
		Status:   models.AccountStatusPending,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.accounts.GetAccount(ctx, id)
}

// AdminCreate создает аккаунт от имени админа, без проверки оплаты.
// Пароль, если передан, шифруется перед записью.
func (s *AccountService) AdminCreate(ctx context.Context, req AdminCreateRequest) (*models.Account, error) {
	const op = "account.AdminCreate"

	username := models.NormalizeUsername(req.Username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	niche := req.Niche
	if niche == "" {
		niche = "general"
	}
	status := req.Status
	if status == "" {
		status = models.AccountStatusPending
	}

	account := models.Account{
		UserID:             req.UserID,
		Username:           username,
		Niche:              niche,
		Status:             status,
		CurrentDay:         req.CurrentDay,
		ProgressPercentage: req.ProgressPercentage,
	}
	if req.Password != "" {
		encrypted, err := s.cipher.Encrypt(req.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		account.EncryptedPassword = &encrypted
	}

	id, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.accounts.GetAccount(ctx, id)
}

// UpdateFields частично обновляет аккаунт по белому списку полей.
func (s *AccountService) UpdateFields(ctx context.Context, accountID int, update models.AccountUpdate) (*models.Account, error) {
	const op = "account.UpdateFields"
	rows, err := s.accounts.UpdateAccountFields(ctx, accountID, update)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return nil, ErrAccountNotFound
	}
	return s.accounts.GetAccount(ctx, accountID)
}

// Delete удаляет аккаунт.
func (s *AccountService) Delete(ctx context.Context, accountID int) error {
	const op = "account.Delete"
	rows, err := s.accounts.DeleteAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Get возвращает аккаунт по ID.
func (s *AccountService) Get(ctx context.Context, accountID int) (*models.Account, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListForUser возвращает аккаунты пользователя.
func (s *AccountService) ListForUser(ctx context.Context, userID int) ([]*models.Account, error) {
	return s.accounts.ListAccounts(ctx, userID)
}

// ListAll возвращает все аккаунты вместе с почтой владельца.
func (s *AccountService) ListAll(ctx context.Context) ([]*models.AccountWithEmail, error) {
	return s.accounts.ListAllAccounts(ctx)
}
