package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/WarmUp-AI/WebDev/internal/http/middlewarectx"
	"github.com/WarmUp-AI/WebDev/internal/paymentgateway"
)

// Мок сервиса с методом CreateCheckout
type OrderServiceMock struct {
	mock.Mock
}

func (m *OrderServiceMock) CreateCheckout(ctx context.Context, userID int, plan string) (*paymentgateway.Session, error) {
	args := m.Called(ctx, userID, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.Session), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	session := &paymentgateway.Session{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}

	tests := []struct {
		name           string
		requestBody    any
		userID         int
		setupMock      func(s *OrderServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "successful checkout",
			requestBody: Request{Plan: "starter"},
			userID:      3,
			setupMock: func(s *OrderServiceMock) {
				s.On("CreateCheckout", mock.Anything, 3, "starter").
					Return(session, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown plan rejected by validation",
			requestBody:    Request{Plan: "platinum"},
			userID:         3,
			setupMock:      func(s *OrderServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Plan has an unsupported value",
		},
		{
			name:           "missing user in context",
			requestBody:    Request{Plan: "starter"},
			userID:         0,
			setupMock:      func(s *OrderServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "user identification missing",
		},
		{
			name:           "invalid json body",
			requestBody:    "{oops",
			userID:         3,
			setupMock:      func(s *OrderServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(OrderServiceMock)
			tt.setupMock(svc)
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/checkout/create", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.userID > 0 {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.userID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, "cs_test_123", data["session_id"])
				assert.Equal(t, session.URL, data["checkout_url"])
			}

			svc.AssertExpectations(t)
		})
	}
}
