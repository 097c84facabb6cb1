package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuspool/campuspool-backend/api/controllers"
	"github.com/campuspool/campuspool-backend/api/middleware"
	"github.com/campuspool/campuspool-backend/internal/auth"
	"github.com/campuspool/campuspool-backend/internal/dashboard"
	"github.com/campuspool/campuspool-backend/internal/listings"
	"github.com/campuspool/campuspool-backend/internal/users"
	"github.com/campuspool/campuspool-backend/pkg/auth/session"
	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/campuspool/campuspool-backend/pkg/logger"
	"github.com/campuspool/campuspool-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               pinger
	Redis            *redis.Client
	Metrics          prometheus.Gatherer
	SessionManager   sessionManager
	AuthService      auth.Service
	RegisterService  auth.RegisterService
	ListingsService  listings.Service
	UsersService     users.Service
	DashboardService *dashboard.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var cache pinger
	var rateStore middleware.RateLimiterStore
	if p.Redis != nil {
		cache = p.Redis
		rateStore = p.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, cache, logg))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Route("/rides", listingRoutes(p.ListingsService, enums.ListingKindRide, logg, controllers.RideCreate))
		r.Route("/food", listingRoutes(p.ListingsService, enums.ListingKindFood, logg, controllers.FoodCreate))

		r.Get("/profile", controllers.ProfileMe(p.UsersService, logg))
		r.Get("/dashboard", controllers.DashboardStats(p.DashboardService, logg))
	})

	return r
}

// listingRoutes mounts the per-kind listing tree. Rides and food orders share
// every membership route; only the create payload differs.
func listingRoutes(
	svc listings.Service,
	kind enums.ListingKind,
	logg *logger.Logger,
	create func(listings.Service, *logger.Logger) http.HandlerFunc,
) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", controllers.ListingsFeed(svc, kind, logg))
		r.Post("/", create(svc, logg))
		r.Route("/{listingId}", func(r chi.Router) {
			r.Post("/join", controllers.ListingJoin(svc, kind, logg))
			r.Post("/leave", controllers.ListingLeave(svc, kind, logg))
			r.Post("/leave-owner", controllers.ListingLeaveOwner(svc, kind, logg))
			r.Delete("/", controllers.ListingDelete(svc, kind, logg))
		})
	}
}
