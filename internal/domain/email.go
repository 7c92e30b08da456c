package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmationEmailData holds data for the registration confirmation email.
type RegistrationConfirmationEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	EventDate  string
	Location   string
}

// EventCancelledEmailData holds data for the event cancellation email.
type EventCancelledEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
}

// TicketPurchaseEmailData holds data for the ticket purchase receipt email.
type TicketPurchaseEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	TypeName   string
	Quantity   int
	Total      float64
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
	SendEventCancelled(ctx context.Context, data *EventCancelledEmailData) error
	SendTicketPurchaseReceipt(ctx context.Context, data *TicketPurchaseEmailData) error
}
