package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/controllers"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/middleware"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/auth"
	cartsvc "github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	checkoutsvc "github.com/garcialeonbrayanacbtis272-beep/six/internal/checkout"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/orders"
	product "github.com/garcialeonbrayanacbtis272-beep/six/internal/products"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/restriction"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/auth/session"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/config"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	productService product.Service,
	restrictionPolicy *restriction.Policy,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/recover", controllers.AuthRecover(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, restrictionPolicy, logg))
		r.Get("/categories", controllers.ProductCategories(productService, logg))
		r.Get("/{id}", controllers.ProductGet(productService, restrictionPolicy, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{id}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutState(checkoutService, logg))
			r.Post("/pay", controllers.CheckoutPay(checkoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/latest", controllers.OrderLatest(ordersService, logg))
			r.Get("/{reference}", controllers.OrderGet(ordersService, logg))
		})
	})

	return r
}
