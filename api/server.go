/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/tenancies/*      Tenancy lifecycle, payments, funds, notices
  /api/admin/*          Admin operations (manual sweep)
  /api/scenarios/*      Demo scenarios

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
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/tenancies", func(r chi.Router) {
			r.Get("/", h.ListTenancies)
			r.Post("/", h.CreateTenancy)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTenancy)
				r.Post("/activate", h.ActivateTenancy)
				r.Post("/cancel", h.CancelTenancy)

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", h.ListPayments)
					r.Get("/summary", h.GetPaymentSummary)
					r.Post("/{number}/submit", h.SubmitPayment)
					r.Post("/{number}/confirm", h.ConfirmPayment)
				})

				r.Get("/funds", h.GetFunds)
				r.Post("/deductions", h.RecordDeduction)

				r.Route("/notices", func(r chi.Router) {
					r.Get("/", h.ListNotices)
					r.Post("/termination", h.GiveNotice)
					r.Post("/breach", h.IssueBreachNotice)
					r.Post("/breach/{noticeId}/remedy", h.RemedyBreach)
					r.Post("/breach/{noticeId}/escalate", h.EscalateBreach)
					r.Post("/extension", h.OfferExtension)
					r.Post("/extension/{noticeId}/respond", h.RespondToExtension)
				})
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", h.TriggerSweep)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Lodger Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Lodger Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><code>POST /api/tenancies</code> - Create draft tenancy</li>
<li><code>GET /api/tenancies?landlord_id=X</code> - List tenancies</li>
<li><code>GET /api/scenarios</code> - List demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
