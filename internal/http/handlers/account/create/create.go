// Package create содержит HTTP-обработчик создания аккаунта на прогрев клиентом.
//
// Создание доступно только после хотя бы одного оплаченного заказа.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/WarmUp-AI/WebDev/internal/http/middlewarectx"
	"github.com/WarmUp-AI/WebDev/internal/http/response"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/services/account"
)

// Request — входные данные для создания аккаунта
type Request struct {
	Username string `json:"username" validate:"required"`
	Niche    string `json:"niche" validate:"required"`
}

type Service interface {
	CreateForClient(ctx context.Context, userID int, username, niche string) (*models.Account, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает POST /api/accounts.
//
// @Summary Отдать аккаунт на прогрев
// @Tags accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Имя аккаунта и ниша"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/accounts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.create"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	created, err := h.service.CreateForClient(r.Context(), userID, req.Username, req.Niche)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNoPaidOrder):
			log.Error("no paid order", slog.Int("user_id", userID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("payment required before adding accounts"))
		case errors.Is(err, account.ErrDuplicateAccount):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("account already exists"))
		case errors.Is(err, account.ErrEmptyUsername):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("username is empty"))
		default:
			log.Error("failed to create account", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create account"))
		}
		return
	}

	log.Info("account created", slog.Int("account_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created))
}
