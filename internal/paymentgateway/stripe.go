// Package paymentgateway оборачивает Stripe: создание checkout-сессий и
// проверку подписи вебхуков. Всё взаимодействие с платёжным провайдером
// проходит только через этот пакет.
package paymentgateway

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/WarmUp-AI/WebDev/internal/config"
	"github.com/WarmUp-AI/WebDev/internal/models"
)

// Session результат создания checkout-сессии: идентификатор для привязки
// заказа и URL, на который уходит покупатель.
type Session struct {
	ID  string
	URL string
}

// Client клиент Stripe с ключами и прайсами из конфига.
type Client struct {
	cfg config.Stripe
}

// NewClient создаёт клиент Stripe и выставляет глобальный секретный ключ SDK.
func NewClient(cfg config.Stripe) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// CreateCheckoutSession создаёт checkout-сессию для тарифа и почты покупателя.
// Разовый тариф уходит в режим payment, остальные — в subscription.
func (c *Client) CreateCheckoutSession(plan, userEmail string) (*Session, error) {
	const op = "paymentgateway.CreateCheckoutSession"

	priceID := c.cfg.PriceID(plan)
	if priceID == "" {
		return nil, fmt.Errorf("%s: unknown plan %q", op, plan)
	}

	mode := string(stripe.CheckoutSessionModeSubscription)
	if plan == models.PlanOneTime {
		mode = string(stripe.CheckoutSessionModePayment)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(mode),
		SuccessURL:    stripe.String(c.cfg.FrontendURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(c.cfg.FrontendURL + "/signup?cancelled=true"),
		CustomerEmail: stripe.String(userEmail),
	}
	params.AddMetadata("plan", plan)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook проверяет подпись сырого payload вебхука по общему секрету.
// Любая ошибка проверки означает, что payload нельзя трогать.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	const op = "paymentgateway.VerifyWebhook"
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.cfg.WebhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
