package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/importops-backend/api/controllers"
	dispatchcontrollers "github.com/angelmondragon/importops-backend/api/controllers/dispatch"
	ledgercontrollers "github.com/angelmondragon/importops-backend/api/controllers/ledger"
	opscontrollers "github.com/angelmondragon/importops-backend/api/controllers/ops"
	paymentcontrollers "github.com/angelmondragon/importops-backend/api/controllers/payments"
	"github.com/angelmondragon/importops-backend/api/middleware"
	"github.com/angelmondragon/importops-backend/internal/dispatch"
	"github.com/angelmondragon/importops-backend/internal/ledger"
	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/redis"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Dispatch dispatch.Service
	Ledger   ledger.Service
	Payments payments.Service
	// DeadLetters is optional; the ops routes are skipped when nil.
	DeadLetters opscontrollers.DeadLetterService
}

// Dependencies are the infrastructure handles the router needs.
type Dependencies struct {
	Health      map[string]controllers.Pinger
	Idempotency redis.IdempotencyStore
	Metrics     prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg, deps.HTTPMetrics),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleStaff))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Get("/dispatch-orders", dispatchcontrollers.List(svc.Dispatch, logg))
		r.Route("/dispatch-orders/{orderId}", func(r chi.Router) {
			r.Get("/", dispatchcontrollers.Detail(svc.Dispatch, logg))
			r.Patch("/", dispatchcontrollers.SaveDraft(svc.Dispatch, logg))
			r.Post("/submit-approval", dispatchcontrollers.SubmitApproval(svc.Dispatch, logg))
			r.Post("/confirm/validate", dispatchcontrollers.ValidateConfirm(svc.Dispatch, logg))
			r.Post("/returns", dispatchcontrollers.AppendReturns(svc.Dispatch, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
				r.Post("/revert", dispatchcontrollers.Revert(svc.Dispatch, logg))
				r.Post("/confirm", dispatchcontrollers.Confirm(svc.Dispatch, logg))
				r.Post("/cancel", dispatchcontrollers.Cancel(svc.Dispatch, logg))
				r.Delete("/", dispatchcontrollers.Delete(svc.Dispatch, logg))
			})
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/{entityModel}/{entityId}/balance", ledgercontrollers.Balance(svc.Ledger, logg))
			r.Get("/{entityModel}/{entityId}/entries", ledgercontrollers.Entries(svc.Ledger, logg))
			r.Get("/{entityModel}/{entityId}/statement.xlsx", ledgercontrollers.StatementXLSX(svc.Ledger, logg))
			r.With(middleware.RequireRole(logg, enums.RoleAdmin)).Post("/entries", ledgercontrollers.RecordEntry(svc.Ledger, logg))
		})

		r.Post("/payments/{entityModel}/{entityId}", paymentcontrollers.Distribute(svc.Payments, logg))

		if svc.DeadLetters != nil {
			r.Route("/ops/outbox/dead-letters", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
				r.Get("/", opscontrollers.DeadLetters(svc.DeadLetters, logg))
				r.Post("/{dlqId}/redrive", opscontrollers.RedriveDeadLetter(svc.DeadLetters, logg))
			})
		}
	})

	return r
}
