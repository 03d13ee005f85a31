package createfromdemande

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// MockService реализует интерфейс createfromdemande.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateFromRequest(ctx context.Context, accessRequestID int64, subscriptionType string) (*models.User, error) {
	args := m.Called(ctx, accessRequestID, subscriptionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestCreateFromDemandeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "пользователь создан",
			target: "/api/users/create-from-demande/5?subscriptionType=SIX_MONTHS",
			setupMock: func(m *MockService) {
				m.On("CreateFromRequest", mock.Anything, int64(5), "SIX_MONTHS").
					Return(&models.User{ID: 10, Email: "vet@example.com", IsFirstLogin: true}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"isFirstLogin":true`,
		},
		{
			name:   "заявка не найдена",
			target: "/api/users/create-from-demande/99?subscriptionType=SIX_MONTHS",
			setupMock: func(m *MockService) {
				m.On("CreateFromRequest", mock.Anything, int64(99), "SIX_MONTHS").
					Return(nil, models.ErrAccessRequestNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"access request not found"`,
		},
		{
			name:   "пользователь уже существует",
			target: "/api/users/create-from-demande/5?subscriptionType=SIX_MONTHS",
			setupMock: func(m *MockService) {
				m.On("CreateFromRequest", mock.Anything, int64(5), "SIX_MONTHS").
					Return(nil, models.ErrUserAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"user already exists"`,
		},
		{
			name:   "неизвестный тип подписки",
			target: "/api/users/create-from-demande/5?subscriptionType=WEEKLY",
			setupMock: func(m *MockService) {
				m.On("CreateFromRequest", mock.Anything, int64(5), "WEEKLY").
					Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to create user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMock(service)

			router := chi.NewRouter()
			router.Post("/api/users/create-from-demande/{demandeId}", New(logger, service).ServeHTTP)

			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			service.AssertExpectations(t)
		})
	}
}
