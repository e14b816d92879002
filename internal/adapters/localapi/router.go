package localapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the local control surface the presentation layer drives.
// This is intentionally a thin adapter: handlers decode, delegate to the app
// layer, and encode snapshots.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Route("/session", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/draft", func(r chi.Router) {
			r.Post("/origin/query", s.handleQuery(originField))
			r.Get("/origin/suggestions", s.handleSuggestions(originField))
			r.Post("/origin/select", s.handleSelect(originField))

			r.Post("/destination/query", s.handleQuery(destinationField))
			r.Get("/destination/suggestions", s.handleSuggestions(destinationField))
			r.Post("/destination/select", s.handleSelect(destinationField))
		})

		r.Route("/trip", func(r chi.Router) {
			r.Post("/submit", s.handleSubmit)
			r.Post("/cancel", s.handleCancel)
			r.Post("/join", s.handleJoin)
			r.Post("/new-draft", s.handleNewDraft)
		})
	})

	return r
}
