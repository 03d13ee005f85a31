package sender

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// expectEmail настраивает полный успешный SMTP-сценарий до получателя rcpt
// и возвращает writer для проверки содержимого письма.
func expectEmail(transport *MockTransport, rcpt string) *MockSMTPWriter {
	client := new(MockSMTPClient)
	writer := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@vitalfeed.tn")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@vitalfeed.tn").Return(nil).Once()
	client.On("Rcpt", rcpt).Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	writer.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
	writer.On("Close").Return(nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
	return writer
}

func writtenBody(writer *MockSMTPWriter) string {
	for _, call := range writer.Calls {
		if call.Method == "Write" {
			return string(call.Arguments.Get(0).([]byte))
		}
	}
	return ""
}

func TestSenderService_SendReminder(t *testing.T) {
	t.Run("success - reminder email", func(t *testing.T) {
		transport := new(MockTransport)
		writer := expectEmail(transport, "vet@example.com")

		service := New(transport, newNoopLogger())
		err := service.SendReminder([]byte(`{"email":"vet@example.com","prenom":"Sami","subscription_id":3,"end_date":"2026-09-07T00:00:00Z"}`))

		assert.NoError(t, err)
		body := writtenBody(writer)
		assert.Contains(t, body, "Bonjour Sami")
		assert.Contains(t, body, "07/09/2026")
		transport.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		transport := new(MockTransport)
		service := New(transport, newNoopLogger())

		err := service.SendReminder([]byte(`invalid json`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "error unmarshalling message")
		transport.AssertNotCalled(t, "Connect")
	})

	t.Run("SMTP connection error", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("GetSMTPUser").Return("noreply@vitalfeed.tn")
		transport.On("Connect").Return(nil, errors.New("connection error")).Once()

		service := New(transport, newNoopLogger())
		err := service.SendReminder([]byte(`{"email":"vet@example.com","prenom":"Sami","subscription_id":3,"end_date":"2026-09-07T00:00:00Z"}`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection error")
		transport.AssertExpectations(t)
	})
}

func TestSenderService_SendWelcome(t *testing.T) {
	transport := new(MockTransport)
	writer := expectEmail(transport, "vet@example.com")

	service := New(transport, newNoopLogger())
	err := service.SendWelcome([]byte(`{"email":"vet@example.com","prenom":"Sami","temporary_password":"AB12CD34"}`))

	assert.NoError(t, err)
	body := writtenBody(writer)
	assert.Contains(t, body, "Mot de passe temporaire : AB12CD34")
	assert.Contains(t, body, "première connexion")
	transport.AssertExpectations(t)
}

func TestSenderService_SendAccessConfirmation(t *testing.T) {
	transport := new(MockTransport)
	writer := expectEmail(transport, "vet@example.com")

	service := New(transport, newNoopLogger())
	err := service.SendAccessConfirmation([]byte(`{"email":"vet@example.com","prenom":"Sami"}`))

	assert.NoError(t, err)
	assert.Contains(t, writtenBody(writer), "demande d'accès")
	transport.AssertExpectations(t)
}

func TestSenderService_SendSubscriptionInfo(t *testing.T) {
	t.Run("назначение подписки", func(t *testing.T) {
		transport := new(MockTransport)
		writer := expectEmail(transport, "vet@example.com")

		service := New(transport, newNoopLogger())
		err := service.SendSubscriptionInfo([]byte(`{"email":"vet@example.com","prenom":"Sami","subscription_type":"SIX_MONTHS","start_date":"2026-08-31T00:00:00Z","end_date":"2027-02-28T00:00:00Z","updated":false}`))

		assert.NoError(t, err)
		assert.Contains(t, writtenBody(writer), "activé")
		transport.AssertExpectations(t)
	})

	t.Run("продление подписки", func(t *testing.T) {
		transport := new(MockTransport)
		writer := expectEmail(transport, "vet@example.com")

		service := New(transport, newNoopLogger())
		err := service.SendSubscriptionInfo([]byte(`{"email":"vet@example.com","prenom":"Sami","subscription_type":"ONE_YEAR","start_date":"2026-08-31T00:00:00Z","end_date":"2027-08-31T00:00:00Z","updated":true}`))

		assert.NoError(t, err)
		assert.Contains(t, writtenBody(writer), "renouvelé")
		transport.AssertExpectations(t)
	})
}

func TestSenderService_SendOrderConfirmation(t *testing.T) {
	transport := new(MockTransport)
	writer := expectEmail(transport, "finance@vitalfeed.tn")

	service := New(transport, newNoopLogger())
	err := service.SendOrderConfirmation([]byte(`{
		"email":"finance@vitalfeed.tn",
		"nom":"Sami Trabelsi",
		"order_number":"ORD-AB12CD34",
		"confirmed_at":"2026-08-31T14:30:00Z",
		"total_amount":71.0,
		"items":[{"product_name":"Croquettes chiot 10kg","quantity":2,"price":35.5,"sub_total":71.0}]
	}`))

	assert.NoError(t, err)
	body := writtenBody(writer)
	assert.Contains(t, body, "ORD-AB12CD34")
	assert.Contains(t, body, "Croquettes chiot 10kg x2 : 71.00 TND")
	assert.Contains(t, body, "Total : 71.00 TND")
	transport.AssertExpectations(t)
}
