package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRouter настраивает маршруты для API
func SetupRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Публичные маршруты (без аутентификации)
		r.Get("/token-info", h.TokenInfo)

		// Защищенные маршруты (с аутентификацией)
		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Post("/calculate", h.Calculate)

			r.Route("/calculator", func(r chi.Router) {
				r.Get("/", h.CalculatorState)
				r.Post("/keys", h.PressKeys)
				r.Post("/backspace", h.Backspace)
				r.Post("/submit", h.Submit)
				r.Post("/clear", h.ClearCalculator)
			})

			r.Route("/history", func(r chi.Router) {
				r.Get("/", h.ListHistory)
				r.Delete("/", h.ClearHistory)
				r.Delete("/{id}", h.RemoveHistoryEntry)
			})

			r.Route("/timer", func(r chi.Router) {
				r.Get("/", h.TimerState)
				r.Post("/start", h.StartTimer)
				r.Post("/pause", h.PauseTimer)
				r.Post("/resume", h.ResumeTimer)
				r.Post("/reset", h.ResetTimer)
			})

			r.Get("/notification", h.Notification)
			r.Post("/notification/dismiss", h.DismissNotification)

			r.Post("/convert", h.Convert)
			r.Post("/parts", h.Parts)

			r.Route("/ingredients", func(r chi.Router) {
				r.Get("/", h.ListIngredients)
				r.Get("/{id}", h.GetIngredient)
				r.Put("/{id}/override", h.SetOverride)
				r.Delete("/{id}/override", h.RemoveOverride)
			})
		})
	})

	return r
}
