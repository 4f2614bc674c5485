// Package list содержит HTTP-обработчик списка аккаунтов клиента.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/WarmUp-AI/WebDev/internal/http/middlewarectx"
	"github.com/WarmUp-AI/WebDev/internal/http/response"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/models"
)

type Service interface {
	ListForUser(ctx context.Context, userID int) ([]*models.Account, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает GET /api/accounts.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	accounts, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to list accounts", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list accounts"))
		return
	}

	log.Info("accounts listed", "count", len(accounts))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(accounts),
		"accounts":   accounts,
	}))
}
