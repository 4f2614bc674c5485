// Package warmup предоставляет маршруты для основного приложения.
package warmup

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	accountcreate "github.com/WarmUp-AI/WebDev/internal/http/handlers/account/create"
	accountlist "github.com/WarmUp-AI/WebDev/internal/http/handlers/account/list"
	adminaccounts "github.com/WarmUp-AI/WebDev/internal/http/handlers/admin/accounts"
	adminorders "github.com/WarmUp-AI/WebDev/internal/http/handlers/admin/orders"
	adminstats "github.com/WarmUp-AI/WebDev/internal/http/handlers/admin/stats"
	adminusers "github.com/WarmUp-AI/WebDev/internal/http/handlers/admin/users"
	"github.com/WarmUp-AI/WebDev/internal/http/handlers/auth/login"
	"github.com/WarmUp-AI/WebDev/internal/http/handlers/auth/me"
	"github.com/WarmUp-AI/WebDev/internal/http/handlers/auth/register"
	checkoutcreate "github.com/WarmUp-AI/WebDev/internal/http/handlers/checkout/create"
	checkoutguest "github.com/WarmUp-AI/WebDev/internal/http/handlers/checkout/guest"
	"github.com/WarmUp-AI/WebDev/internal/http/handlers/health"
	orderlist "github.com/WarmUp-AI/WebDev/internal/http/handlers/order/list"
	"github.com/WarmUp-AI/WebDev/internal/http/handlers/webhook/stripewebhook"
	"github.com/WarmUp-AI/WebDev/internal/http/middlewarectx"
	"github.com/WarmUp-AI/WebDev/internal/lib/jwt"
	"github.com/WarmUp-AI/WebDev/internal/paymentgateway"
	accountservice "github.com/WarmUp-AI/WebDev/internal/services/account"
	authservice "github.com/WarmUp-AI/WebDev/internal/services/auth"
	orderservice "github.com/WarmUp-AI/WebDev/internal/services/order"
	statsservice "github.com/WarmUp-AI/WebDev/internal/services/stats"
	"github.com/WarmUp-AI/WebDev/internal/storage/repository"
)

// Services собирает сервисы, которые нужны маршрутам.
type Services struct {
	Auth    *authservice.AuthService
	Order   *orderservice.OrderService
	Account *accountservice.AccountService
	Stats   *statsservice.StatsService
	Gateway *paymentgateway.Client
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, db *repository.Storage, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/checkout/create-guest", checkoutguest.New(logger, svc.Order).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись проверяется внутри)
		r.Post("/webhook/stripe", stripewebhook.New(logger, svc.Order, svc.Gateway).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/auth/me", me.New(logger, svc.Auth).ServeHTTP)
			r.Post("/checkout/create", checkoutcreate.New(logger, svc.Order).ServeHTTP)
			r.Post("/accounts", accountcreate.New(logger, svc.Account).ServeHTTP)
			r.Get("/accounts", accountlist.New(logger, svc.Account).ServeHTTP)
			r.Get("/orders", orderlist.New(logger, svc.Order).ServeHTTP)
		})

		// Административная группа
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Get("/users", adminusers.NewList(logger, svc.Auth).ServeHTTP)
			r.Delete("/users/{id}", adminusers.NewDelete(logger, svc.Auth).ServeHTTP)
			r.Post("/users/create-admin", adminusers.NewCreateAdmin(logger, svc.Auth).ServeHTTP)
			r.Post("/change-password", adminusers.NewChangePassword(logger, svc.Auth).ServeHTTP)

			r.Get("/orders", adminorders.NewList(logger, svc.Order).ServeHTTP)
			r.Post("/orders/manual", adminorders.NewManual(logger, svc.Order).ServeHTTP)
			r.Patch("/orders/{id}", adminorders.NewForceStatus(logger, svc.Order).ServeHTTP)

			r.Get("/accounts", adminaccounts.NewList(logger, svc.Account).ServeHTTP)
			r.Post("/accounts", adminaccounts.NewCreate(logger, svc.Account).ServeHTTP)
			r.Patch("/accounts/{id}", adminaccounts.NewUpdate(logger, svc.Account).ServeHTTP)
			r.Delete("/accounts/{id}", adminaccounts.NewDelete(logger, svc.Account).ServeHTTP)

			r.Get("/stats", adminstats.New(logger, svc.Stats).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
