package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dispatchline/delivery-console/api/controllers"
	"github.com/dispatchline/delivery-console/api/middleware"
	"github.com/dispatchline/delivery-console/internal/assignments"
	"github.com/dispatchline/delivery-console/internal/orders"
	"github.com/dispatchline/delivery-console/internal/partners"
	"github.com/dispatchline/delivery-console/pkg/config"
	"github.com/dispatchline/delivery-console/pkg/db"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/metrics"
	pkgredis "github.com/dispatchline/delivery-console/pkg/redis"
)

// NewRouter mounts the dashboard API. idempotencyStore may be nil, in which
// case Idempotency-Key headers are ignored.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP db.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	partnerService partners.Service,
	orderService orders.Service,
	assignmentService assignments.Service,
) http.Handler {
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.ClientOrigin),
	)

	r.Get("/", controllers.Welcome(cfg))
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Route("/partner", func(r chi.Router) {
			r.Post("/addPartner", controllers.AddPartner(partnerService, logg))
			r.Get("/getAllPartners", controllers.GetAllPartners(partnerService, logg))
			r.Get("/getPartnerDetails/{partnerId}", controllers.GetPartnerDetails(partnerService, logg))
			r.Post("/updatePartner", controllers.UpdatePartner(partnerService, logg))
		})

		r.Route("/order", func(r chi.Router) {
			r.Post("/createOrder", controllers.CreateOrder(orderService, logg))
			r.Get("/getAllOrders", controllers.GetAllOrders(orderService, logg))
			r.Post("/getSpecificOrderDetails", controllers.GetSpecificOrderDetails(orderService, logg))
			r.Post("/updateOrder/{orderId}", controllers.UpdateOrder(orderService, logg))

			r.Get("/getAllAssignmentsDetails", controllers.GetAllAssignmentsDetails(assignmentService, logg))
			r.Post("/getSpecificAssignmentDetails", controllers.GetSpecificAssignmentDetails(assignmentService, logg))
			r.Post("/updateAssignment/{assignmentId}", controllers.UpdateAssignment(assignmentService, logg))
		})
	})

	return r
}
