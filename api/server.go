/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*   Employee, balance, history, evaluation, commit
  /api/history       Global request history
  /api/blackouts/*   Blackout calendar management
  /api/emails/*      Email drafting
  /api/admin/*       Seed and reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/history", h.GetHistory)
			r.Post("/{id}/requests/evaluate", h.EvaluateRequest)
			r.Post("/{id}/requests", h.CommitRequest)
		})

		// Global history
		r.Get("/history", h.GlobalHistory)

		// Blackout routes
		r.Route("/blackouts", func(r chi.Router) {
			r.Get("/", h.ListBlackouts)
			r.Post("/", h.CreateBlackout)
			r.Post("/defaults", h.SeedDefaultBlackouts)
			r.Delete("/{id}", h.DeleteBlackout)
		})

		// Email drafting
		r.Post("/emails/draft", h.DraftEmail)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.SeedSampleData)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Landing page for humans poking the API directly.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Leave Policy Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Leave Policy Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/blackouts">/api/blackouts</a> - List blackout periods</li>
<li><a href="/api/history">/api/history</a> - Request history</li>
</ul>
</body>
</html>`))
	})

	return r
}
