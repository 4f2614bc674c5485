package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/WarmUp-AI/WebDev/internal/models"
)

// CreateOrder вставляет новый заказ и возвращает его ID.
// Уникальность session_id обеспечивается ограничением БД.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (int, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO orders (user_id, session_id, plan, amount, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		order.UserID, order.SessionID, order.Plan, order.Amount, order.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// MarkOrderPaid переводит заказ в статус paid по session_id и записывает
// платёжную ссылку шлюза. Возвращает количество затронутых строк: 0 означает,
// что заказ с такой сессией хранилищу неизвестен. Повторный вызов с теми же
// аргументами переписывает те же значения, поэтому операция идемпотентна.
func (s *Storage) MarkOrderPaid(ctx context.Context, sessionID, paymentID string) (int, error) {
	const op = "storage.MarkOrderPaid"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders
			  SET status = $1, payment_id = $2
			  WHERE session_id = $3`
	result, err := s.DB.ExecContext(ctx, query, models.OrderStatusPaid, paymentID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetOrder возвращает заказ по его ID.
func (s *Storage) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	const op = "storage.GetOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, session_id, payment_id, plan, amount, status, created_at
			  FROM orders
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var o models.Order
	var paymentID sql.NullString
	if err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &paymentID,
		&o.Plan, &o.Amount, &o.Status, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	return &o, nil
}

// GetOrderBySession возвращает заказ по ссылке на checkout-сессию.
func (s *Storage) GetOrderBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	const op = "storage.GetOrderBySession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, session_id, payment_id, plan, amount, status, created_at
			  FROM orders
			  WHERE session_id = $1`
	row := s.DB.QueryRowContext(ctx, query, sessionID)

	var o models.Order
	var paymentID sql.NullString
	if err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &paymentID,
		&o.Plan, &o.Amount, &o.Status, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	return &o, nil
}

// FindPaidOrder находит первый оплаченный заказ пользователя.
// Используется как допуск к созданию аккаунтов на прогрев.
func (s *Storage) FindPaidOrder(ctx context.Context, userID int) (*models.Order, error) {
	const op = "storage.FindPaidOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, session_id, payment_id, plan, amount, status, created_at
			  FROM orders
			  WHERE user_id = $1 AND status = $2
			  ORDER BY id
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userID, models.OrderStatusPaid)

	var o models.Order
	var paymentID sql.NullString
	err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &paymentID,
		&o.Plan, &o.Amount, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paymentID.Valid {
		o.PaymentID = &paymentID.String
	}
	return &o, nil
}

// ListOrders возвращает список заказов пользователя.
func (s *Storage) ListOrders(ctx context.Context, userID int) ([]*models.Order, error) {
	const op = "storage.ListOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, session_id, payment_id, plan, amount, status, created_at
			  FROM orders
			  WHERE user_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		var o models.Order
		var paymentID sql.NullString
		if err := rows.Scan(&o.ID, &o.UserID, &o.SessionID, &paymentID,
			&o.Plan, &o.Amount, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if paymentID.Valid {
			o.PaymentID = &paymentID.String
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllOrders возвращает все заказы вместе с почтой владельца.
func (s *Storage) ListAllOrders(ctx context.Context) ([]*models.OrderWithEmail, error) {
	const op = "storage.ListAllOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT o.id, o.user_id, o.session_id, o.payment_id, o.plan, o.amount,
			      o.status, o.created_at, u.email
			  FROM orders o
			  JOIN users u ON o.user_id = u.id
			  ORDER BY o.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.OrderWithEmail
	for rows.Next() {
		var o models.OrderWithEmail
		var paymentID sql.NullString
		if err := rows.Scan(&o.ID, &o.UserID, &o.SessionID, &paymentID,
			&o.Plan, &o.Amount, &o.Status, &o.CreatedAt, &o.UserEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if paymentID.Valid {
			o.PaymentID = &paymentID.String
		}
		result = append(result, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrderStatus пишет произвольный статус заказа. Значение не проверяется,
// это ручной админский люк для нестандартных ситуаций.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID int, status string) (int, error) {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders
			  SET status = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, orderID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
