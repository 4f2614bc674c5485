// Package accounts содержит административные HTTP-обработчики управления аккаунтами.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/WarmUp-AI/WebDev/internal/http/response"
	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/services/account"
)

type Service interface {
	ListAll(ctx context.Context) ([]*models.AccountWithEmail, error)
	AdminCreate(ctx context.Context, req account.AdminCreateRequest) (*models.Account, error)
	UpdateFields(ctx context.Context, accountID int, update models.AccountUpdate) (*models.Account, error)
	Delete(ctx context.Context, accountID int) error
}

// ListHandler обрабатывает GET /api/admin/accounts.
type ListHandler struct {
	log     *slog.Logger
	service Service
}

func NewList(log *slog.Logger, service Service) *ListHandler {
	return &ListHandler{log: log, service: service}
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accounts.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	accounts, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list accounts", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list accounts"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(accounts),
		"accounts":   accounts,
	}))
}

// CreateRequest — входные данные для создания аккаунта админом.
// Статус и счётчики прогресса принимаются как есть: админ может выставить
// произвольную строку статуса и любые значения дней/процентов.
type CreateRequest struct {
	UserID             int    `json:"user_id" validate:"required"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password"`
	Niche              string `json:"niche"`
	Status             string `json:"status"`
	CurrentDay         int    `json:"current_day"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// CreateHandler обрабатывает POST /api/admin/accounts.
//
// В отличие от клиентского создания оплаченный заказ не требуется.
type CreateHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func NewCreate(log *slog.Logger, service Service) *CreateHandler {
	return &CreateHandler{log: log, service: service, validate: validator.New()}
}

func (h *CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accounts.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req CreateRequest
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

	created, err := h.service.AdminCreate(r.Context(), account.AdminCreateRequest{
		UserID:             req.UserID,
		Username:           req.Username,
		Password:           req.Password,
		Niche:              req.Niche,
		Status:             req.Status,
		CurrentDay:         req.CurrentDay,
		ProgressPercentage: req.ProgressPercentage,
	})
	if err != nil {
		switch {
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

	log.Info("account created by admin", slog.Int("account_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created))
}

// UpdateRequest — входные данные для частичного обновления аккаунта.
// Обновляются только присланные поля. Значения не ограничиваются:
// статус может быть произвольной строкой, проценты и дни не зажимаются
// в диапазоны, это административный рычаг.
type UpdateRequest struct {
	Status             *string `json:"status"`
	CurrentDay         *int    `json:"current_day"`
	ProgressPercentage *int    `json:"progress_percentage"`
	ProxyID            *string `json:"proxy_id"`
}

// UpdateHandler обрабатывает PATCH /api/admin/accounts/{id}.
type UpdateHandler struct {
	log     *slog.Logger
	service Service
}

func NewUpdate(log *slog.Logger, service Service) *UpdateHandler {
	return &UpdateHandler{log: log, service: service}
}

func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accounts.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.UpdateFields(r.Context(), id, models.AccountUpdate{
		Status:             req.Status,
		CurrentDay:         req.CurrentDay,
		ProgressPercentage: req.ProgressPercentage,
		ProxyID:            req.ProxyID,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to update account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update account"))
		return
	}

	log.Info("account updated", slog.Int("account_id", id))
	render.JSON(w, r, response.StatusOKWithData(updated))
}

// DeleteHandler обрабатывает DELETE /api/admin/accounts/{id}.
type DeleteHandler struct {
	log     *slog.Logger
	service Service
}

func NewDelete(log *slog.Logger, service Service) *DeleteHandler {
	return &DeleteHandler{log: log, service: service}
}

func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accounts.delete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to delete account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete account"))
		return
	}

	log.Info("account deleted", slog.Int("account_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_id": id,
	}))
}
