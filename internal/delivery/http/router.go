package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	favoriteController *controllers.FavoriteController,
	notificationController *controllers.NotificationController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.List)
	mux.HandleFunc("GET /events/{eventID}", eventController.Get)
	mux.Handle("POST /events", auth(eventController.Create))
	mux.Handle("PATCH /events/{eventID}", auth(eventController.Update))
	mux.Handle("POST /events/{eventID}/status", auth(eventController.ChangeStatus))
	mux.Handle("DELETE /events/{eventID}", auth(eventController.Delete))

	// Registrations
	mux.Handle("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.Handle("DELETE /events/{eventID}/registrations", auth(registrationController.Cancel))

	// Favorites
	mux.Handle("POST /events/{eventID}/favorite", auth(favoriteController.Toggle))

	// Current user
	mux.Handle("GET /me/events", auth(eventController.ListMine))
	mux.Handle("GET /me/registrations", auth(registrationController.ListMyRegistrations))
	mux.Handle("GET /me/favorites", auth(favoriteController.ListMyFavorites))
	mux.Handle("GET /me/notifications", auth(notificationController.ListMyNotifications))
	mux.Handle("POST /me/notifications/{notificationID}/read", auth(notificationController.MarkRead))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
