package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmoralesdev/brickvest-backend/api/controllers"
	"github.com/rmoralesdev/brickvest-backend/api/middleware"
	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/distributions"
	"github.com/rmoralesdev/brickvest-backend/internal/documents"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/internal/ledger"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	inventoryService inventory.Service,
	feeService fees.Service,
	investmentService investments.Service,
	activityService activity.Service,
	documentService documents.Service,
	distributionService distributions.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/properties/{propertyId}", func(r chi.Router) {
		r.Get("/availability", controllers.PropertyAvailability(inventoryService, logg))
		r.Get("/quote", controllers.PropertyQuote(feeService, logg))
		r.Post("/distributions", controllers.PropertyDistribute(distributionService, logg))
	})

	r.Route("/api/v1/investments", func(r chi.Router) {
		r.Post("/", controllers.CreateInvestment(investmentService, logg))
		r.Route("/{transactionId}", func(r chi.Router) {
			r.Get("/", controllers.GetInvestment(investmentService, logg))
			r.Post("/reserve", controllers.ReserveInvestment(investmentService, logg))
			r.Post("/payment", controllers.MarkInvestmentPaid(investmentService, logg))
			r.Post("/complete", controllers.CompleteInvestment(investmentService, logg))
			r.Post("/cancel", controllers.CancelInvestment(investmentService, logg))
			r.Get("/activities", controllers.ListInvestmentActivities(activityService, logg))
			r.Post("/documents", controllers.AttachDocument(documentService, logg))
			r.Get("/documents", controllers.ListDocuments(documentService, logg))
		})
	})

	r.Route("/api/v1/documents/{documentId}", func(r chi.Router) {
		r.Post("/sign", controllers.SignDocument(documentService, logg))
	})

	r.Route("/api/v1/users/{userId}", func(r chi.Router) {
		r.Get("/ledger", controllers.UserLedger(ledgerService, logg))
		r.Get("/distributions", controllers.UserDistributions(distributionService, logg))
	})

	r.Route("/api/v1/distributions/{distributionId}", func(r chi.Router) {
		r.Post("/processed", controllers.MarkDistributionProcessed(distributionService, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/sweep-expired", controllers.SweepExpiredReservations(investmentService, logg))
	})

	return r
}
