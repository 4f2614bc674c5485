// Package order содержит бизнес-логику жизненного цикла заказов: от чекаута до вебхука оплаты.
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/WarmUp-AI/WebDev/internal/lib/password"
	"github.com/WarmUp-AI/WebDev/internal/lib/rabbitmq"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/paymentgateway"
)

// Ошибки бизнес-уровня.
var (
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrOrderNotFound = errors.New("order not found")
	ErrEmailTaken    = errors.New("user already exists")
)

var ordersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "orders_paid_total",
	Help: "Total number of orders marked as paid via webhook",
})

// Gateway описывает платежный шлюз, умеющий создавать checkout-сессии.
type Gateway interface {
	CreateCheckoutSession(plan, userEmail string) (*paymentgateway.Session, error)
}

// OrderRepository описывает контракт для работы с заказами в базе данных.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order models.Order) (int, error)
	GetOrder(ctx context.Context, orderID int) (*models.Order, error)
	GetOrderBySession(ctx context.Context, sessionID string) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, sessionID, paymentID string) (int, error)
	ListOrders(ctx context.Context, userID int) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.OrderWithEmail, error)
	UpdateOrderStatus(ctx context.Context, orderID int, status string) (int, error)
}

// UserRepository описывает минимум операций с пользователями, нужный заказам.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// EventPublisher отправляет события в брокер сообщений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// PaidEvent уходит в очередь после подтверждения оплаты.
type PaidEvent struct {
	OrderID   int    `json:"order_id"`
	UserID    int    `json:"user_id"`
	Plan      string `json:"plan"`
	Amount    int    `json:"amount"`
	PaymentID string `json:"payment_id"`
}

// ManualOrderRequest — параметры ручного создания оплаченного заказа админом.
type ManualOrderRequest struct {
	UserID        int
	CreateNewUser bool
	Email         string
	Password      string
	Plan          string
	PaymentMethod string
}

// OrderService отвечает за создание заказов, чекаут и обработку вебхуков оплаты.
type OrderService struct {
	log       *slog.Logger
	orders    OrderRepository
	users     UserRepository
	gateway   Gateway
	publisher EventPublisher
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(log *slog.Logger, orders OrderRepository, users UserRepository,
	gateway Gateway, publisher EventPublisher) *OrderService {
	return &OrderService{
		log:       log,
		orders:    orders,
		users:     users,
		gateway:   gateway,
		publisher: publisher,
	}
}

// CreateCheckout создает checkout-сессию для авторизованного пользователя
// и заказ в статусе pending.
func (s *OrderService) CreateCheckout(ctx context.Context, userID int, plan string) (*paymentgateway.Session, error) {
	const op = "order.CreateCheckout"
	if !models.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.startCheckout(ctx, user, plan)
}

// CreateGuestCheckout создает checkout-сессию по одной почте: пользователь
// заводится на лету со случайным паролем, если его еще нет.
func (s *OrderService) CreateGuestCheckout(ctx context.Context, email, plan string) (*paymentgateway.Session, error) {
	const op = "order.CreateGuestCheckout"
	if !models.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		hashed, err := password.GetHash(uuid.NewString())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		id, err := s.users.CreateUser(ctx, models.User{
			Email:        email,
			PasswordHash: hashed,
			Role:         models.RoleClient,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user, err = s.users.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s.startCheckout(ctx, user, plan)
}

func (s *OrderService) startCheckout(ctx context.Context, user *models.User, plan string) (*paymentgateway.Session, error) {
	const op = "order.startCheckout"
	session, err := s.gateway.CreateCheckoutSession(plan, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.orders.CreateOrder(ctx, models.Order{
		UserID:    user.ID,
		SessionID: session.ID,
		Plan:      plan,
		Amount:    models.PlanAmounts[plan],
		Status:    models.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// HandleCheckoutCompleted обрабатывает подтверждение оплаты из вебхука.
// Сессии, которых нет в базе, молча игнорируются. Повторная доставка
// перезаписывает те же значения и не порождает повторных событий.
func (s *OrderService) HandleCheckoutCompleted(ctx context.Context, sessionID, paymentID string) error {
	const op = "order.HandleCheckoutCompleted"
	existing, err := s.orders.GetOrderBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info("webhook for unknown session ignored", slog.String("session_id", sessionID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	wasPaid := existing.Status == models.OrderStatusPaid

	if _, err := s.orders.MarkOrderPaid(ctx, sessionID, paymentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if wasPaid {
		return nil
	}

	ordersPaidTotal.Inc()
	event := PaidEvent{
		OrderID:   existing.ID,
		UserID:    existing.UserID,
		Plan:      existing.Plan,
		Amount:    existing.Amount,
		PaymentID: paymentID,
	}
	if err := s.publisher.Publish(rabbitmq.OrderPaidRoutingKey, event); err != nil {
		// Оплата уже зафиксирована, сбой брокера заказ не ломает.
		s.log.Warn("failed to publish order paid event", sl.Err(err),
			slog.Int("order_id", existing.ID))
	}
	return nil
}

// CreateManualOrder создает заказ в статусе paid минуя платежный шлюз.
// При необходимости заводится и новый пользователь.
func (s *OrderService) CreateManualOrder(ctx context.Context, req ManualOrderRequest) (*models.Order, error) {
	const op = "order.CreateManualOrder"
	if !models.ValidPlan(req.Plan) {
		return nil, ErrInvalidPlan
	}

	userID := req.UserID
	if req.CreateNewUser {
		if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		hashed, err := password.GetHash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		userID, err = s.users.CreateUser(ctx, models.User{
			Email:        req.Email,
			PasswordHash: hashed,
			Role:         models.RoleClient,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	sessionID := fmt.Sprintf("manual_%s_%s", req.PaymentMethod, suffix)

	id, err := s.orders.CreateOrder(ctx, models.Order{
		UserID:    userID,
		SessionID: sessionID,
		Plan:      req.Plan,
		Amount:    models.PlanAmounts[req.Plan],
		Status:    models.OrderStatusPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.orders.GetOrder(ctx, id)
}

// AdminForceStatus принудительно выставляет заказу произвольный статус.
func (s *OrderService) AdminForceStatus(ctx context.Context, orderID int, status string) (*models.Order, error) {
	const op = "order.AdminForceStatus"
	rows, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return nil, ErrOrderNotFound
	}
	return s.orders.GetOrder(ctx, orderID)
}

// ListForUser возвращает заказы пользователя.
func (s *OrderService) ListForUser(ctx context.Context, userID int) ([]*models.Order, error) {
	return s.orders.ListOrders(ctx, userID)
}

// ListAll возвращает все заказы вместе с почтой владельца.
func (s *OrderService) ListAll(ctx context.Context) ([]*models.OrderWithEmail, error) {
	return s.orders.ListAllOrders(ctx)
}
