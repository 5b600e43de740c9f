package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/campaign"
	"github.com/hopebridge/donation-management/internal/donation"
	"github.com/hopebridge/donation-management/internal/member"
	"github.com/hopebridge/donation-management/internal/newsletter"
	"github.com/hopebridge/donation-management/internal/transport/middleware"
	"github.com/hopebridge/donation-management/internal/transport/swagger"
)

type Handlers struct {
	Donation   *donation.Handler
	Webhook    *donation.WebhookHandler
	Newsletter *newsletter.Handler
	Campaign   *campaign.Handler
	Member     *member.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, security internal.SecurityConfig, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Gateway webhook: called by the payment processor, not a user
		if handlers.Webhook != nil {
			r.Post("/payments/webhook", handlers.Webhook.HandleGatewayWebhook)
		}

		// Public donation flow
		if handlers.Donation != nil {
			r.Route("/donations", func(dr chi.Router) {
				dr.Post("/", handlers.Donation.CreateDonation)
				dr.Get("/{id}", handlers.Donation.GetDonation)
			})
		}

		// Public newsletter signup
		if handlers.Newsletter != nil {
			r.Post("/newsletter/subscribe", handlers.Newsletter.Subscribe)
		}

		// Public membership application
		if handlers.Member != nil {
			r.Post("/members", handlers.Member.Apply)
		}

		// Admin routes: token verified against the external auth
		// provider's signing key, role claim must match
		r.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireRole(security.JWTSigningSecret, security.AdminRole, logger))

			if handlers.Campaign != nil {
				ar.Post("/admin/campaigns", handlers.Campaign.SendCampaign)
			}
			if handlers.Member != nil {
				ar.Patch("/admin/members/{id}/status", handlers.Member.SetStatus)
			}
		})
	})
}
