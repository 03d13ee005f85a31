package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// MockService реализует интерфейс submit.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, req models.DummyAccessRequest) (*models.AccessRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccessRequest), args.Error(1)
}

func TestSubmitHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validRequest := models.DummyAccessRequest{
		Nom:            "Trabelsi",
		Prenom:         "Sami",
		Email:          "vet@example.com",
		Telephone:      "+216 20 123 456",
		AdresseCabinet: "12 Avenue Habib Bourguiba, Tunis",
		NumVeterinaire: "VT-1234",
	}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "заявка принята",
			requestBody: validRequest,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, validRequest).
					Return(&models.AccessRequest{ID: 5, Email: "vet@example.com"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"email":"vet@example.com"`,
		},
		{
			name:        "повторная заявка отклоняется",
			requestBody: validRequest,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, validRequest).
					Return(nil, models.ErrDuplicateAccessRequest)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"access request already submitted"`,
		},
		{
			name:           "невалидные данные",
			requestBody:    models.DummyAccessRequest{Email: "not-an-email"},
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

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/access-requests", &body)
			rr := httptest.NewRecorder()
			New(logger, service).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			service.AssertExpectations(t)
		})
	}
}
