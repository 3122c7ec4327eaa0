package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nishantvt5/merch-app/api/controllers"
	authcontrollers "github.com/Nishantvt5/merch-app/api/controllers/auth"
	cartcontrollers "github.com/Nishantvt5/merch-app/api/controllers/cart"
	catalogcontrollers "github.com/Nishantvt5/merch-app/api/controllers/catalog"
	"github.com/Nishantvt5/merch-app/api/middleware"
	"github.com/Nishantvt5/merch-app/internal/auth"
	"github.com/Nishantvt5/merch-app/internal/cart"
	"github.com/Nishantvt5/merch-app/internal/catalog"
	"github.com/Nishantvt5/merch-app/pkg/auth/session"
	"github.com/Nishantvt5/merch-app/pkg/config"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	"github.com/Nishantvt5/merch-app/pkg/logger"
	"github.com/Nishantvt5/merch-app/pkg/metrics"
	"github.com/Nishantvt5/merch-app/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// redisStore is the redis surface used by throttling and idempotency.
type redisStore interface {
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

// Params gathers everything the HTTP surface is wired from. Nil services
// answer with INTERNAL_ERROR.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    redisStore
	Sessions sessionManager
	Registry *prometheus.Registry
	Limiter  *middleware.IPRateLimiter

	Auth          auth.Service
	Signup        auth.SignupService
	AdminRegister auth.AdminRegisterService
	Catalog       catalog.Service
	CatalogAdmin  catalog.AdminService
	Cart          cart.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        interface {
			IncrWithTTL(context.Context, string, time.Duration) (int64, error)
			RateLimitKey(string) string
		}
		sessions session.AccessSessionChecker
	)
	pingers := map[string]controllers.Pinger{}
	if p.DB != nil {
		pingers["database"] = p.DB
	}
	if p.Redis != nil {
		idempotencyStore = p.Redis
		rateStore = p.Redis
		pingers["redis"] = p.Redis
	}
	if p.Sessions != nil {
		sessions = p.Sessions
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if p.Registry != nil {
		r.Use(middleware.Metrics(metrics.NewHTTPMetrics(p.Registry)))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	idempotent := middleware.Idempotency(idempotencyStore, logg)
	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(p.Limiter, logg))
			r.Get("/categories", catalogcontrollers.ListCategories(p.Catalog, logg))
			r.Get("/products", catalogcontrollers.ListProducts(p.Catalog, logg))
			r.Get("/products/{categorySlug}/{productSlug}", catalogcontrollers.ProductDetail(p.Catalog, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
				Post("/login", authcontrollers.AuthLogin(p.Auth, logg))
			r.With(middleware.AuthRateLimit(signupPolicy, rateStore, logg), idempotent).
				Post("/signup", authcontrollers.AuthSignup(p.Signup, p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/cart", cartcontrollers.CartFetch(p.Cart, logg))
			r.With(idempotent).Post("/cart/items", cartcontrollers.CartAddItem(p.Cart, logg))
			r.Patch("/cart/items/{itemID}", cartcontrollers.CartSetQuantity(p.Cart, logg))
			r.Delete("/cart/items/{itemID}", cartcontrollers.CartRemoveItem(p.Cart, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !cfg.App.IsProd() {
				r.Post("/register", authcontrollers.AdminAuthRegister(p.AdminRegister, p.Auth, cfg, logg))
			}
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
				Post("/login", authcontrollers.AdminAuthLogin(p.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireRole(enums.RoleAdmin, logg))

			r.Post("/categories", catalogcontrollers.AdminCreateCategory(p.CatalogAdmin, logg))
			r.Patch("/categories/{categoryID}", catalogcontrollers.AdminUpdateCategory(p.CatalogAdmin, logg))
			r.Delete("/categories/{categoryID}", catalogcontrollers.AdminDeleteCategory(p.CatalogAdmin, logg))

			r.Post("/products", catalogcontrollers.AdminCreateProduct(p.CatalogAdmin, logg))
			r.Get("/products/{productID}", catalogcontrollers.AdminGetProduct(p.CatalogAdmin, logg))
			r.Patch("/products/{productID}", catalogcontrollers.AdminUpdateProduct(p.CatalogAdmin, logg))
			r.Delete("/products/{productID}", catalogcontrollers.AdminDeleteProduct(p.CatalogAdmin, logg))

			r.Get("/attributes", catalogcontrollers.AdminListAttributes(p.CatalogAdmin, logg))
			r.Post("/attributes", catalogcontrollers.AdminCreateAttribute(p.CatalogAdmin, logg))
			r.Put("/products/{productID}/attributes/{attributeID}", catalogcontrollers.AdminSetAttributeValue(p.CatalogAdmin, logg))
			r.Delete("/products/{productID}/attributes/{attributeID}", catalogcontrollers.AdminDeleteAttributeValue(p.CatalogAdmin, logg))

			r.Post("/products/{productID}/images", catalogcontrollers.AdminAddImage(p.CatalogAdmin, logg))
			r.Post("/images/{imageID}/main", catalogcontrollers.AdminSetMainImage(p.CatalogAdmin, logg))
			r.Delete("/images/{imageID}", catalogcontrollers.AdminDeleteImage(p.CatalogAdmin, logg))
		})
	})

	return r
}
