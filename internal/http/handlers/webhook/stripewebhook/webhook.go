// Package stripewebhook содержит HTTP-обработчик вебхуков Stripe.
//
// Подпись запроса проверяется до разбора тела. Обрабатывается только
// событие checkout.session.completed, остальные игнорируются с ответом 200,
// чтобы Stripe не ретраил их бесконечно.
package stripewebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	stripe "github.com/stripe/stripe-go/v72"

	"github.com/WarmUp-AI/WebDev/internal/http/response"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
)

const eventCheckoutCompleted = "checkout.session.completed"

type Service interface {
	HandleCheckoutCompleted(ctx context.Context, sessionID, paymentID string) error
}

// Verifier проверяет подпись вебхука и возвращает разобранное событие.
type Verifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	verifier Verifier
}

func New(log *slog.Logger, service Service, verifier Verifier) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		verifier: verifier,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.stripe"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	event, err := h.verifier.VerifyWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("invalid webhook signature", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	if event.Type != eventCheckoutCompleted {
		log.Info("ignored webhook event", slog.String("event", string(event.Type)))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{"success": true}))
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("failed to unmarshal checkout session", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid event payload"))
		return
	}

	var paymentID string
	if session.PaymentIntent != nil {
		paymentID = session.PaymentIntent.ID
	}

	if err := h.service.HandleCheckoutCompleted(r.Context(), session.ID, paymentID); err != nil {
		log.Error("failed to process checkout completion", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	log.Info("webhook processed successfully",
		slog.String("event", string(event.Type)),
		slog.String("session_id", session.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"success": true}))
}
