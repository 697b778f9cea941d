package routes

import (
	"github.com/glossahub/glossahub-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes. State-changing actions are POST-only so a plain GET
	// gets a 405 instead of a side effect.
	r.Get("/api/auth/login", handlers.LoginPage)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Get("/api/auth/register", handlers.RegisterPage)
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/email", handlers.EmailLogin)
	r.Post("/api/auth/reset", handlers.ResetPassword)
	r.Get("/api/auth/email-sent", handlers.EmailSent)

	// Profile routes
	r.Get("/api/profile", handlers.GetProfile)
	r.Post("/api/profile", handlers.UpdateProfile)
	r.Post("/api/profile/avatar", handlers.UploadAvatar)
	r.Post("/api/profile/password", handlers.ChangePassword)
	r.Post("/api/profile/apikey/reset", handlers.ResetAPIKey)
	r.Post("/api/profile/remove", handlers.RemoveAccount)
	r.Post("/api/watch/{project}", handlers.Watch)
	r.Post("/api/unwatch/{project}", handlers.Unwatch)

	// Contact and hosting relays
	r.Get("/api/contact", handlers.ContactPage)
	r.Post("/api/contact", handlers.Contact)
	r.Get("/api/hosting", handlers.HostingPage)
	r.Post("/api/hosting", handlers.Hosting)

	// Public user routes
	r.Get("/api/users/{username}", handlers.UserPage)
	r.Get("/api/users/{username}/avatar/{size}", handlers.UserAvatar)
	r.Get("/api/users/{username}/suggestions", handlers.UserSuggestions)
}
