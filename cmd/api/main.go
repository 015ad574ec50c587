package main

import (
	"context"
	"net/http"
	"os"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/routes"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/auth"
	cartsvc "github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	checkoutsvc "github.com/garcialeonbrayanacbtis272-beep/six/internal/checkout"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/orders"
	product "github.com/garcialeonbrayanacbtis272-beep/six/internal/products"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/restriction"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/users"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/auth/session"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/config"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/metrics"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.AutoMigrate {
		if err := dbClient.DB().AutoMigrate(
			&models.User{},
			&models.Product{},
			&models.Order{},
			&models.OrderLine{},
		); err != nil {
			logg.Error(context.Background(), "failed to run migrations", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewSessionStore(redisClient, cfg.Checkout.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	restrictionPolicy := restriction.NewPolicy()
	cartService, err := cartsvc.NewService(cartStore, productRepo, restrictionPolicy, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	stateStore, err := checkoutsvc.NewStateStore(redisClient, cfg.Checkout.StateTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout state store", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Config{
		Carts:            cartStore,
		States:           stateStore,
		Validator:        checkoutsvc.NewValidator(),
		Factory:          orders.NewFactory(),
		Orders:           ordersRepo,
		Tx:               dbClient,
		Metrics:          metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
		Logger:           logg,
		ReferenceRetries: cfg.Checkout.ReferenceRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			productService,
			restrictionPolicy,
			cartService,
			checkoutService,
			ordersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
