package users

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/WarmUp-AI/WebDev/internal/http/middlewarectx"
	"github.com/WarmUp-AI/WebDev/internal/models"
	"github.com/WarmUp-AI/WebDev/internal/services/auth"
)

// Мок для Service
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *ServiceMock) DeleteUser(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *ServiceMock) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *ServiceMock) ChangePassword(ctx context.Context, userID int, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func deleteRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDeleteHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(s *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "deletes client cascade",
			id:   "5",
			setupMock: func(s *ServiceMock) {
				s.On("DeleteUser", mock.Anything, 5).Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "admin target is protected",
			id:   "1",
			setupMock: func(s *ServiceMock) {
				s.On("DeleteUser", mock.Anything, 1).Return(auth.ErrAdminProtected).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "cannot delete admin users",
		},
		{
			name: "missing user",
			id:   "404",
			setupMock: func(s *ServiceMock) {
				s.On("DeleteUser", mock.Anything, 404).Return(auth.ErrUserNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
		{
			name:           "non-numeric id",
			id:             "abc",
			setupMock:      func(s *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := NewDelete(newNoopLogger(), svc)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, deleteRequest(tt.id))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestChangePasswordHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		userID         int
		noContext      bool
		requestBody    any
		setupMock      func(s *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "changes own password",
			userID:      1,
			requestBody: ChangePasswordRequest{NewPassword: "newsecret123"},
			setupMock: func(s *ServiceMock) {
				s.On("ChangePassword", mock.Anything, 1, "newsecret123").Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "too short password",
			userID:         1,
			requestBody:    ChangePasswordRequest{NewPassword: "short"},
			setupMock:      func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field NewPassword is too short",
		},
		{
			name:           "no user in context",
			noContext:      true,
			requestBody:    ChangePasswordRequest{NewPassword: "newsecret123"},
			setupMock:      func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := NewChangePassword(newNoopLogger(), svc)

			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/admin/change-password", bytes.NewReader(body))
			if !tt.noContext {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestCreateAdminHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(s *ServiceMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "creates admin",
			requestBody: CreateAdminRequest{Email: "boss@example.com", Password: "longenough"},
			setupMock: func(s *ServiceMock) {
				s.On("CreateAdmin", mock.Anything, "boss@example.com", "longenough").
					Return(&models.User{ID: 2, Email: "boss@example.com", Role: models.RoleAdmin}, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "password too short",
			requestBody:    CreateAdminRequest{Email: "boss@example.com", Password: "short"},
			setupMock:      func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
		},
		{
			name:        "duplicate email",
			requestBody: CreateAdminRequest{Email: "boss@example.com", Password: "longenough"},
			setupMock: func(s *ServiceMock) {
				s.On("CreateAdmin", mock.Anything, "boss@example.com", "longenough").
					Return(nil, auth.ErrEmailTaken).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantError:      "user already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := NewCreateAdmin(newNoopLogger(), svc)

			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/admin/users/create-admin", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			svc.AssertExpectations(t)
		})
	}
}
