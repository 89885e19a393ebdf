package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/horizoncoop/coopadmin-backend/api/controllers"
	branchcontrollers "github.com/horizoncoop/coopadmin-backend/api/controllers/branches"
	tagcontrollers "github.com/horizoncoop/coopadmin-backend/api/controllers/tags"
	vouchercontrollers "github.com/horizoncoop/coopadmin-backend/api/controllers/vouchers"
	"github.com/horizoncoop/coopadmin-backend/api/middleware"
	"github.com/horizoncoop/coopadmin-backend/internal/authz"
	"github.com/horizoncoop/coopadmin-backend/internal/branches"
	"github.com/horizoncoop/coopadmin-backend/internal/tags"
	"github.com/horizoncoop/coopadmin-backend/internal/vouchers"
	"github.com/horizoncoop/coopadmin-backend/pkg/config"
	"github.com/horizoncoop/coopadmin-backend/pkg/db"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
	"github.com/horizoncoop/coopadmin-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	voucherService vouchers.Service,
	tagService tags.Service,
	branchService branches.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/vouchers", func(r chi.Router) {
			r.With(middleware.RequireAction(authz.ActionVoucherWrite, logg)).Post("/", vouchercontrollers.Create(voucherService, logg))
			r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", vouchercontrollers.List(voucherService, logg))
			r.Route("/{voucherId}", func(r chi.Router) {
				r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", vouchercontrollers.Detail(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherWrite, logg)).Patch("/", vouchercontrollers.UpdateHeader(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherWrite, logg)).Post("/entries", vouchercontrollers.UpdateEntries(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherPrint, logg)).Post("/print", vouchercontrollers.Print(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherApprove, logg)).Post("/approve", vouchercontrollers.Approve(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherRelease, logg)).Post("/release", vouchercontrollers.Release(voucherService, logg))
				r.With(middleware.RequireAction(authz.ActionVoucherWrite, logg)).Put("/tags", vouchercontrollers.ReplaceTags(voucherService, logg))
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", tagcontrollers.List(tagService, logg))
			r.With(middleware.RequireAction(authz.ActionTagManage, logg)).Post("/", tagcontrollers.Create(tagService, logg))
			r.Route("/{tagId}", func(r chi.Router) {
				r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", tagcontrollers.Detail(tagService, logg))
				r.With(middleware.RequireAction(authz.ActionTagManage, logg)).Patch("/", tagcontrollers.Update(tagService, logg))
				r.With(middleware.RequireAction(authz.ActionTagManage, logg)).Delete("/", tagcontrollers.Delete(tagService, logg))
			})
		})

		r.Route("/branches", func(r chi.Router) {
			r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", branchcontrollers.List(branchService, logg))
			r.Route("/{branchId}", func(r chi.Router) {
				r.With(middleware.RequireAction(authz.ActionVoucherRead, logg)).Get("/", branchcontrollers.Detail(branchService, logg))
				r.Route("/settings", func(r chi.Router) {
					r.With(middleware.RequireAction(authz.ActionSettingsManage, logg)).Get("/", branchcontrollers.GetSettings(branchService, logg))
					r.With(middleware.RequireAction(authz.ActionSettingsManage, logg)).Put("/", branchcontrollers.UpdateSettings(branchService, logg))
				})
			})
		})
	})

	return r
}
