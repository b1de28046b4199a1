package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/therapease/therapease-backend/internal/handlers"
	"github.com/therapease/therapease-backend/internal/middleware"
	"github.com/therapease/therapease-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, tokens *services.TokenService) {
	// Public auth routes
	r.Post("/api/users/register", handlers.Register)
	r.Post("/api/users/login", handlers.Login)

	// Authenticated routes: the middleware resolves the caller once and
	// passes it to handlers through the request context
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))

		r.Post("/api/users/logout", handlers.Logout)

		// Journal routes
		r.Get("/api/patients/journals", handlers.ListJournals)
		r.Post("/api/patients/journals", handlers.CreateJournal)
		r.Get("/api/patients/journal/{id}", handlers.GetJournal)
		r.Put("/api/patients/journal/{id}", handlers.UpdateJournal)
		r.Delete("/api/patients/journal/{id}", handlers.DeleteJournal)

		// Therapist roster routes
		r.Get("/api/therapists", handlers.ListPatients)
		r.Post("/api/therapists", handlers.AddPatient)
		r.Get("/api/therapists/patient/{id}", handlers.GetPatientDetail)
		r.Delete("/api/therapists/patient/{id}", handlers.RemovePatient)

		// Account routes
		r.Get("/api/users/account", handlers.GetAccount)
		r.Put("/api/users/account", handlers.UpdateAccount)
		r.Put("/api/users/account/password", handlers.ChangePassword)
		r.Post("/api/users/account/picture", handlers.UploadProfilePicture)
	})
}
