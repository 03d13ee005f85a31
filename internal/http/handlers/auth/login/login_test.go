package login

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
	authsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, email, password string) (*authsvc.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authsvc.LoginResult), args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	successResult := &authsvc.LoginResult{
		Token:             "signed-token",
		Role:              "user",
		MustResetPassword: false,
		User:              &models.User{ID: 10, Email: "vet@example.com"},
	}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
		expectCookie   bool
	}{
		{
			name:        "успешный вход ставит cookie",
			requestBody: Request{Email: "vet@example.com", Password: "secret123"},
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "vet@example.com", "secret123").
					Return(successResult, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"login successful"`,
			expectCookie:   true,
		},
		{
			name:        "первый вход требует смены пароля",
			requestBody: Request{Email: "vet@example.com", Password: "secret123"},
			setupMock: func(m *MockService) {
				result := *successResult
				result.MustResetPassword = true
				m.On("Login", mock.Anything, "vet@example.com", "secret123").
					Return(&result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"mustResetPassword":true`,
			expectCookie:   true,
		},
		{
			name:        "неверные учетные данные",
			requestBody: Request{Email: "vet@example.com", Password: "wrong-pass"},
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "vet@example.com", "wrong-pass").
					Return(nil, models.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid credentials"`,
		},
		{
			name:        "истёкшая подписка",
			requestBody: Request{Email: "vet@example.com", Password: "secret123"},
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "vet@example.com", "secret123").
					Return(nil, models.ErrSubscriptionExpired)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"subscription expired"`,
		},
		{
			name:           "невалидные данные",
			requestBody:    Request{Email: "not-an-email", Password: "123"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMock(service)

			handler := New(logger, service, 168*time.Hour)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/login", &body)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)

			cookies := rr.Result().Cookies()
			if tt.expectCookie {
				require.Len(t, cookies, 1)
				cookie := cookies[0]
				assert.Equal(t, "access_token", cookie.Name)
				assert.Equal(t, "signed-token", cookie.Value)
				assert.True(t, cookie.HttpOnly)
				assert.Equal(t, int((168 * time.Hour).Seconds()), cookie.MaxAge)
				assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
			} else {
				assert.Empty(t, cookies)
			}
			service.AssertExpectations(t)
		})
	}
}
