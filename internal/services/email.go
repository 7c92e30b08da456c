package services

import (
	"context"
	"fmt"
	"log"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendRegistrationConfirmation sends the registration confirmation email
// using the "registration_confirmation" template.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render registration_confirmation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation email: %w", err)
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", data.Email)
	return nil
}

// SendEventCancelled sends the event cancellation email using the "event_cancelled" template.
func (s *emailService) SendEventCancelled(ctx context.Context, data *domain.EventCancelledEmailData) error {
	if data == nil {
		return fmt.Errorf("event cancelled email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_cancelled", data)
	if err != nil {
		return fmt.Errorf("failed to render event_cancelled template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event cancelled email: %w", err)
	}
	log.Printf("[EMAIL] Event cancelled email sent to %s", data.Email)
	return nil
}

// SendTicketPurchaseReceipt sends the purchase receipt using the "ticket_purchase" template.
func (s *emailService) SendTicketPurchaseReceipt(ctx context.Context, data *domain.TicketPurchaseEmailData) error {
	if data == nil {
		return fmt.Errorf("ticket purchase email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("ticket_purchase", data)
	if err != nil {
		return fmt.Errorf("failed to render ticket_purchase template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send ticket purchase email: %w", err)
	}
	log.Printf("[EMAIL] Ticket purchase receipt sent to %s", data.Email)
	return nil
}
