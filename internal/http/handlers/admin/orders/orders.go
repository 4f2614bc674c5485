// Package orders содержит административные HTTP-обработчики управления заказами.
package orders

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
	"github.com/WarmUp-AI/WebDev/internal/services/order"
)

type Service interface {
	ListAll(ctx context.Context) ([]*models.OrderWithEmail, error)
	CreateManualOrder(ctx context.Context, req order.ManualOrderRequest) (*models.Order, error)
	AdminForceStatus(ctx context.Context, orderID int, status string) (*models.Order, error)
}

// ListHandler обрабатывает GET /api/admin/orders.
type ListHandler struct {
	log     *slog.Logger
	service Service
}

func NewList(log *slog.Logger, service Service) *ListHandler {
	return &ListHandler{log: log, service: service}
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.orders.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list orders"))
		return
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		view := o.View()
		view.UserEmail = o.UserEmail
		views = append(views, view)
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(views),
		"orders":     views,
	}))
}

// ManualRequest — входные данные для ручного создания оплаченного заказа
type ManualRequest struct {
	UserID        int    `json:"user_id"`
	CreateNewUser bool   `json:"create_new_user"`
	Email         string `json:"email" validate:"omitempty,email"`
	Password      string `json:"password" validate:"omitempty,min=6"`
	Plan          string `json:"plan" validate:"required,oneof=one_time starter growth"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// ManualHandler обрабатывает POST /api/admin/orders/manual.
type ManualHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func NewManual(log *slog.Logger, service Service) *ManualHandler {
	return &ManualHandler{log: log, service: service, validate: validator.New()}
}

func (h *ManualHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.orders.manual"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req ManualRequest
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
	if req.CreateNewUser && (req.Email == "" || req.Password == "") {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("email and password are required for a new user"))
		return
	}
	if !req.CreateNewUser && req.UserID == 0 {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field UserID is a required field"))
		return
	}

	created, err := h.service.CreateManualOrder(r.Context(), order.ManualOrderRequest{
		UserID:        req.UserID,
		CreateNewUser: req.CreateNewUser,
		Email:         req.Email,
		Password:      req.Password,
		Plan:          req.Plan,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidPlan):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid plan"))
		case errors.Is(err, order.ErrEmailTaken):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("user already exists"))
		default:
			log.Error("failed to create manual order", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create manual order"))
		}
		return
	}

	log.Info("manual order created", slog.Int("order_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created.View()))
}

// ForceStatusRequest — входные данные для смены статуса заказа
type ForceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ForceStatusHandler обрабатывает PATCH /api/admin/orders/{id}.
type ForceStatusHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func NewForceStatus(log *slog.Logger, service Service) *ForceStatusHandler {
	return &ForceStatusHandler{log: log, service: service, validate: validator.New()}
}

func (h *ForceStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.orders.forcestatus"

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

	var req ForceStatusRequest
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

	updated, err := h.service.AdminForceStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
			return
		}
		log.Error("failed to update order status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update order status"))
		return
	}

	log.Info("order status updated", slog.Int("order_id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(updated.View()))
}
