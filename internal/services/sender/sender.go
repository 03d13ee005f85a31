// Package sender содержит сервис отправки писем из очередей уведомлений.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitalfeed/vitalfeed-backend/internal/lib/sl"
	smtptransport "github.com/vitalfeed/vitalfeed-backend/internal/lib/smtp"
	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

// Service потребляет уведомления из RabbitMQ и отправляет письма по SMTP.
// Ошибка обработчика приводит к nack с повторной постановкой в очередь.
type Service struct {
	transport smtptransport.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtptransport.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendReminder отправляет напоминание о скором окончании подписки.
func (s *Service) SendReminder(body []byte) error {
	var message models.ReminderNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal reminder notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Votre abonnement VitalFeed expire bientôt"
	bodyText := fmt.Sprintf(`Bonjour %s,

Votre abonnement VitalFeed expire le %s.

Pour continuer à accéder à la plateforme, veuillez contacter notre équipe afin de le renouveler.

Cordialement,
L'équipe VitalFeed`, message.Prenom, message.EndDate.Format("02/01/2006"))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendAccessConfirmation отправляет подтверждение приёма заявки на доступ.
func (s *Service) SendAccessConfirmation(body []byte) error {
	var message models.AccessNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal access notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Votre demande d'accès a bien été reçue"
	bodyText := fmt.Sprintf(`Bonjour %s,

Nous avons bien reçu votre demande d'accès à la plateforme VitalFeed.

Notre équipe va l'examiner et reviendra vers vous dans les plus brefs délais.

Cordialement,
L'équipe VitalFeed`, message.Prenom)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendWelcome отправляет новому пользователю письмо с временным паролем.
func (s *Service) SendWelcome(body []byte) error {
	var message models.WelcomeNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal welcome notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Bienvenue sur VitalFeed — vos identifiants de connexion"
	bodyText := fmt.Sprintf(`Bonjour %s,

Votre compte VitalFeed a été créé.

Identifiant : %s
Mot de passe temporaire : %s

Vous devrez changer ce mot de passe lors de votre première connexion.

Cordialement,
L'équipe VitalFeed`, message.Prenom, message.Email, message.TemporaryPassword)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendSubscriptionInfo отправляет уведомление о назначении или продлении
// подписки.
func (s *Service) SendSubscriptionInfo(body []byte) error {
	var message models.SubscriptionNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal subscription notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Votre abonnement VitalFeed est actif"
	action := "activé"
	if message.Updated {
		subject = "Votre abonnement VitalFeed a été renouvelé"
		action = "renouvelé"
	}
	bodyText := fmt.Sprintf(`Bonjour %s,

Votre abonnement VitalFeed (%s) a été %s.

Début : %s
Fin : %s

Cordialement,
L'équipe VitalFeed`, message.Prenom, message.Type, action,
		message.StartDate.Format("02/01/2006"), message.EndDate.Format("02/01/2006"))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendOrderConfirmation отправляет подтверждение заказа в финансовый отдел.
func (s *Service) SendOrderConfirmation(body []byte) error {
	var message models.OrderNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal order notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	var items strings.Builder
	for _, item := range message.Items {
		fmt.Fprintf(&items, "- %s x%d : %.2f TND\n", item.ProductName, item.Quantity, item.SubTotal)
	}

	subject := fmt.Sprintf("Nouvelle commande %s", message.OrderNumber)
	bodyText := fmt.Sprintf(`Nouvelle commande confirmée.

Numéro : %s
Client : %s
Date : %s

Articles :
%s
Total : %.2f TND`, message.OrderNumber, message.Nom,
		message.ConfirmedAt.Format("02/01/2006 15:04"), items.String(), message.TotalAmount)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message body", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP session", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.String("subject", subject), slog.String("to", strings.Join(to, ";")))
	return nil
}
