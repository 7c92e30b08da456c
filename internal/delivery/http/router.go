package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
	Ticket       *controllers.TicketController
	Report       *controllers.ReportController
	Notification *controllers.NotificationController
	Chat         *controllers.ChatController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", c.Event.ListEvents)
	mux.HandleFunc("GET /events/me", auth(c.Event.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(c.Event.PublishEvent))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(c.Event.CancelEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Registration.Register))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Registration.ListParticipants))
	mux.HandleFunc("DELETE /events/{eventID}/registrations/me", auth(c.Registration.Cancel))
	mux.HandleFunc("POST /events/{eventID}/registrations/{userID}/approve", auth(c.Registration.Approve))
	mux.HandleFunc("POST /events/{eventID}/registrations/{userID}/reject", auth(c.Registration.Reject))
	mux.HandleFunc("GET /events/{eventID}/capacity", c.Registration.Capacity)
	mux.HandleFunc("GET /registrations/me", auth(c.Registration.ListMine))

	// Tickets
	mux.HandleFunc("POST /events/{eventID}/tickets", auth(c.Ticket.Purchase))
	mux.HandleFunc("GET /events/{eventID}/tickets/stats", auth(c.Ticket.Stats))
	mux.HandleFunc("GET /tickets/me", auth(c.Ticket.ListMine))
	mux.HandleFunc("POST /tickets/{ticketID}/validate", auth(c.Ticket.Validate))
	mux.HandleFunc("POST /tickets/{ticketID}/refund", auth(c.Ticket.Refund))

	// Reports
	mux.HandleFunc("POST /events/{eventID}/reports", auth(c.Report.Create))
	mux.HandleFunc("GET /admin/reports", admin(c.Report.List))
	mux.HandleFunc("GET /admin/reports/{reportID}", admin(c.Report.Get))
	mux.HandleFunc("POST /admin/reports/{reportID}/review", admin(c.Report.Review))
	mux.HandleFunc("POST /admin/events/{eventID}/moderate", admin(c.Event.ModerateEvent))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notification.List))
	mux.HandleFunc("GET /notifications/stream", auth(c.Notification.Stream))
	mux.HandleFunc("GET /notifications/unread-count", auth(c.Notification.UnreadCount))
	mux.HandleFunc("POST /notifications/read-all", auth(c.Notification.MarkAllRead))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(c.Notification.MarkRead))

	// Chat
	mux.HandleFunc("POST /events/{eventID}/messages", auth(c.Chat.Post))
	mux.HandleFunc("GET /events/{eventID}/messages", auth(c.Chat.List))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
