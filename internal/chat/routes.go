package chat

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(h.methodNotAllowed)
		r.Post("/chat", h.HandleChat)
		r.Get("/ping", h.HandlePing)
	})
}
