package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/services/account"
)

// Мок для AccountRepository
type AccountRepoMock struct {
	mock.Mock
}

func (m *AccountRepoMock) CreateAccount(ctx context.Context, a models.Account) (int, error) {
	args := m.Called(ctx, a)
	return args.Int(0), args.Error(1)
}

func (m *AccountRepoMock) GetAccount(ctx context.Context, accountID int) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *AccountRepoMock) FindAccountByUsername(ctx context.Context, userID int, username string) (*models.Account, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *AccountRepoMock) ListAccounts(ctx context.Context, userID int) ([]*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *AccountRepoMock) ListAllAccounts(ctx context.Context) ([]*models.AccountWithEmail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AccountWithEmail), args.Error(1)
}

func (m *AccountRepoMock) UpdateAccountFields(ctx context.Context, accountID int, update models.AccountUpdate) (int, error) {
	args := m.Called(ctx, accountID, update)
	return args.Int(0), args.Error(1)
}

func (m *AccountRepoMock) DeleteAccount(ctx context.Context, accountID int) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

// Мок для OrderRepository
type OrderRepoMock struct {
	mock.Mock
}

func (m *OrderRepoMock) FindPaidOrder(ctx context.Context, userID int) (*models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// Мок для Cipher
type CipherMock struct {
	mock.Mock
}

func (m *CipherMock) Encrypt(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func TestAccountService_CreateForClient(t *testing.T) {
	paidOrder := &models.Order{ID: 15, UserID: 3, Status: models.OrderStatusPaid}

	tests := []struct {
		name       string
		username   string
		niche      string
		setupMocks func(a *AccountRepoMock, o *OrderRepoMock)
		wantErr    error
	}{
		{
			name:     "creates account bound to the paid order",
			username: "@Shop.Owner ",
			niche:    "fitness",
			setupMocks: func(a *AccountRepoMock, o *OrderRepoMock) {
				o.On("FindPaidOrder", mock.Anything, 3).Return(paidOrder, nil).Once()
				a.On("FindAccountByUsername", mock.Anything, 3, "Shop.Owner").
					Return(nil, nil).Once()
				a.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
					return acc.UserID == 3 &&
						acc.Username == "Shop.Owner" &&
						acc.OrderID != nil && *acc.OrderID == 15 &&
						acc.Niche == "fitness" &&
						acc.Status == models.AccountStatusPending
				})).Return(31, nil).Once()
				a.On("GetAccount", mock.Anything, 31).Return(&models.Account{
					ID:       31,
					Username: "Shop.Owner",
				}, nil).Once()
			},
		},
		{
			name:     "no paid order means forbidden",
			username: "someuser",
			setupMocks: func(a *AccountRepoMock, o *OrderRepoMock) {
				o.On("FindPaidOrder", mock.Anything, 3).Return(nil, nil).Once()
			},
			wantErr: account.ErrNoPaidOrder,
		},
		{
			name:     "duplicate username",
			username: "taken",
			setupMocks: func(a *AccountRepoMock, o *OrderRepoMock) {
				o.On("FindPaidOrder", mock.Anything, 3).Return(paidOrder, nil).Once()
				a.On("FindAccountByUsername", mock.Anything, 3, "taken").
					Return(&models.Account{ID: 2, Username: "taken"}, nil).Once()
			},
			wantErr: account.ErrDuplicateAccount,
		},
		{
			name:       "empty after normalization",
			username:   " @ ",
			setupMocks: func(a *AccountRepoMock, o *OrderRepoMock) {},
			wantErr:    account.ErrEmptyUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(AccountRepoMock)
			orders := new(OrderRepoMock)
			svc := account.NewAccountService(accounts, orders, new(CipherMock))

			tt.setupMocks(accounts, orders)

			got, err := svc.CreateForClient(context.Background(), 3, tt.username, tt.niche)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Shop.Owner", got.Username)
			}

			accounts.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestAccountService_AdminCreate(t *testing.T) {
	t.Run("fills defaults and encrypts password", func(t *testing.T) {
		accounts := new(AccountRepoMock)
		cipher := new(CipherMock)
		svc := account.NewAccountService(accounts, new(OrderRepoMock), cipher)

		cipher.On("Encrypt", "insta-secret").Return("enc:abc", nil).Once()
		accounts.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
			return acc.UserID == 7 &&
				acc.Username == "warm.target" &&
				acc.Niche == "general" &&
				acc.Status == models.AccountStatusPending &&
				acc.OrderID == nil &&
				acc.EncryptedPassword != nil && *acc.EncryptedPassword == "enc:abc"
		})).Return(40, nil).Once()
		accounts.On("GetAccount", mock.Anything, 40).Return(&models.Account{ID: 40}, nil).Once()

		_, err := svc.AdminCreate(context.Background(), account.AdminCreateRequest{
			UserID:   7,
			Username: "@warm.target",
			Password: "insta-secret",
		})
		require.NoError(t, err)
		cipher.AssertExpectations(t)
		accounts.AssertExpectations(t)
	})

	t.Run("no password means nothing to encrypt", func(t *testing.T) {
		accounts := new(AccountRepoMock)
		cipher := new(CipherMock)
		svc := account.NewAccountService(accounts, new(OrderRepoMock), cipher)

		accounts.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
			return acc.EncryptedPassword == nil && acc.Status == models.AccountStatusWarming
		})).Return(41, nil).Once()
		accounts.On("GetAccount", mock.Anything, 41).Return(&models.Account{ID: 41}, nil).Once()

		_, err := svc.AdminCreate(context.Background(), account.AdminCreateRequest{
			UserID:   7,
			Username: "bare",
			Status:   models.AccountStatusWarming,
		})
		require.NoError(t, err)
		cipher.AssertNotCalled(t, "Encrypt", mock.Anything)
	})

	t.Run("free-form status and counters are stored as given", func(t *testing.T) {
		accounts := new(AccountRepoMock)
		svc := account.NewAccountService(accounts, new(OrderRepoMock), new(CipherMock))

		accounts.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
			return acc.Status == "on_hold" &&
				acc.CurrentDay == 12 &&
				acc.ProgressPercentage == 150
		})).Return(42, nil).Once()
		accounts.On("GetAccount", mock.Anything, 42).Return(&models.Account{ID: 42}, nil).Once()

		_, err := svc.AdminCreate(context.Background(), account.AdminCreateRequest{
			UserID:             7,
			Username:           "paused",
			Status:             "on_hold",
			CurrentDay:         12,
			ProgressPercentage: 150,
		})
		require.NoError(t, err)
		accounts.AssertExpectations(t)
	})
}

func TestAccountService_UpdateFields(t *testing.T) {
	day := 5
	progress := 35

	t.Run("partial update", func(t *testing.T) {
		accounts := new(AccountRepoMock)
		svc := account.NewAccountService(accounts, new(OrderRepoMock), new(CipherMock))

		update := models.AccountUpdate{CurrentDay: &day, ProgressPercentage: &progress}
		accounts.On("UpdateAccountFields", mock.Anything, 31, update).Return(1, nil).Once()
		accounts.On("GetAccount", mock.Anything, 31).Return(&models.Account{
			ID:                 31,
			CurrentDay:         day,
			ProgressPercentage: progress,
		}, nil).Once()

		got, err := svc.UpdateFields(context.Background(), 31, update)
		require.NoError(t, err)
		assert.Equal(t, 5, got.CurrentDay)
		assert.Equal(t, 35, got.ProgressPercentage)
	})

	t.Run("missing account", func(t *testing.T) {
		accounts := new(AccountRepoMock)
		svc := account.NewAccountService(accounts, new(OrderRepoMock), new(CipherMock))

		accounts.On("UpdateAccountFields", mock.Anything, 404, mock.Anything).Return(0, nil).Once()

		_, err := svc.UpdateFields(context.Background(), 404, models.AccountUpdate{CurrentDay: &day})
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
	})
}

func TestAccountService_Delete(t *testing.T) {
	accounts := new(AccountRepoMock)
	svc := account.NewAccountService(accounts, new(OrderRepoMock), new(CipherMock))

	accounts.On("DeleteAccount", mock.Anything, 31).Return(1, nil).Once()
	assert.NoError(t, svc.Delete(context.Background(), 31))

	accounts.On("DeleteAccount", mock.Anything, 404).Return(0, nil).Once()
	assert.ErrorIs(t, svc.Delete(context.Background(), 404), account.ErrAccountNotFound)
}
