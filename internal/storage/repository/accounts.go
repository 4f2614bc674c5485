package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/WarmUp-AI/WebDev/internal/models"
)

// CreateAccount вставляет новый аккаунт на прогрев и возвращает его ID.
// Пара (user_id, username) уникальна на уровне БД.
func (s *Storage) CreateAccount(ctx context.Context, account models.Account) (int, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO accounts (user_id, order_id, username, encrypted_password, niche,
			      status, current_day, progress_percentage)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		account.UserID, account.OrderID, account.Username, account.EncryptedPassword,
		account.Niche, account.Status, account.CurrentDay, account.ProgressPercentage).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanAccount(row interface{ Scan(...any) error }, a *models.Account, email *string) error {
	var orderID sql.NullInt64
	var encryptedPassword, proxyID sql.NullString
	var startedAt, completedAt sql.NullTime

	dest := []any{&a.ID, &a.UserID, &orderID, &a.Username, &encryptedPassword, &a.Niche,
		&a.Status, &a.CurrentDay, &a.ProgressPercentage, &a.ReelsViewed, &a.AccountsFollowed,
		&a.CommentsLeft, &proxyID, &a.CreatedAt, &startedAt, &completedAt}
	if email != nil {
		dest = append(dest, email)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}

	if orderID.Valid {
		v := int(orderID.Int64)
		a.OrderID = &v
	}
	if encryptedPassword.Valid {
		a.EncryptedPassword = &encryptedPassword.String
	}
	if proxyID.Valid {
		a.ProxyID = &proxyID.String
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return nil
}

const accountColumns = `id, user_id, order_id, username, encrypted_password, niche,
			      status, current_day, progress_percentage, reels_viewed, accounts_followed,
			      comments_left, proxy_id, created_at, started_at, completed_at`

// GetAccount возвращает аккаунт по его ID.
func (s *Storage) GetAccount(ctx context.Context, id int) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE id = $1`
	var a models.Account
	if err := scanAccount(s.DB.QueryRowContext(ctx, query, id), &a, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// FindAccountByUsername ищет аккаунт пользователя по нормализованному хэндлу.
// Возвращает nil без ошибки, если аккаунт не найден.
func (s *Storage) FindAccountByUsername(ctx context.Context, userID int, username string) (*models.Account, error) {
	const op = "storage.FindAccountByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE user_id = $1 AND username = $2`
	var a models.Account
	err := scanAccount(s.DB.QueryRowContext(ctx, query, userID, username), &a, nil)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// ListAccounts возвращает список аккаунтов пользователя.
func (s *Storage) ListAccounts(ctx context.Context, userID int) ([]*models.Account, error) {
	const op = "storage.ListAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE user_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Account
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllAccounts возвращает все аккаунты вместе с почтой владельца.
func (s *Storage) ListAllAccounts(ctx context.Context) ([]*models.AccountWithEmail, error) {
	const op = "storage.ListAllAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.user_id, a.order_id, a.username, a.encrypted_password, a.niche,
			      a.status, a.current_day, a.progress_percentage, a.reels_viewed, a.accounts_followed,
			      a.comments_left, a.proxy_id, a.created_at, a.started_at, a.completed_at, u.email
			  FROM accounts a
			  JOIN users u ON a.user_id = u.id
			  ORDER BY a.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccountWithEmail
	for rows.Next() {
		var a models.AccountWithEmail
		if err := scanAccount(rows, &a.Account, &a.UserEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAccountFields обновляет разрешённый набор полей аккаунта.
// Nil-поля не трогаются. Возвращает количество затронутых строк.
func (s *Storage) UpdateAccountFields(ctx context.Context, id int, upd models.AccountUpdate) (int, error) {
	const op = "storage.UpdateAccountFields"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET status = COALESCE($1, status),
			      current_day = COALESCE($2, current_day),
			      progress_percentage = COALESCE($3, progress_percentage),
			      proxy_id = COALESCE($4, proxy_id)
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		upd.Status, upd.CurrentDay, upd.ProgressPercentage, upd.ProxyID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteAccount удаляет аккаунт по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteAccount(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM accounts WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
